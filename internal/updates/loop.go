// Package updates runs the long-polling consumer that feeds inbound events
// to the dispatcher.
package updates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/user/tubefetch/internal/metrics"
	"github.com/user/tubefetch/internal/types"
)

// State is the loop's position in its Polling/Backoff cycle.
type State int32

const (
	Polling State = iota
	Backoff
)

func (s State) String() string {
	switch s {
	case Polling:
		return "polling"
	case Backoff:
		return "backoff"
	}
	return "unknown"
}

// Handler receives each update exactly once per delivery, in arrival order.
type Handler func(ctx context.Context, u types.Update)

// Config controls polling. Zero values take the defaults.
type Config struct {
	TimeoutSeconds int           // long-poll wait, default 30
	Limit          int           // batch size, default 100
	Backoff        time.Duration // sleep after a transport error, default 5s
}

// Loop owns the cursor. It advances only after the handler has returned for
// an update and never moves backwards.
type Loop struct {
	source  types.UpdateSource
	handler Handler
	cursors types.CursorStore
	cfg     Config

	cursor atomic.Int64
	state  atomic.Int32
}

// New creates a Loop. cursors may be nil, in which case the cursor starts at
// zero and is not persisted.
func New(source types.UpdateSource, handler Handler, cursors types.CursorStore, cfg Config) *Loop {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 5 * time.Second
	}
	return &Loop{source: source, handler: handler, cursors: cursors, cfg: cfg}
}

// Cursor returns the next sequence number the loop will request.
func (l *Loop) Cursor() int64 {
	return l.cursor.Load()
}

func (l *Loop) State() State {
	return State(l.state.Load())
}

// Run polls until ctx is cancelled, which returns nil. The only error it
// returns is a wrapped types.ErrUnauthorized: rejected credentials cannot be
// fixed by retrying.
func (l *Loop) Run(ctx context.Context) error {
	if l.cursors != nil {
		saved, err := l.cursors.Load(ctx)
		if err != nil {
			slog.Warn("could not load saved cursor, starting from zero", "error", err)
		} else if saved > l.cursor.Load() {
			l.cursor.Store(saved)
		}
	}
	metrics.SetCursor(l.cursor.Load())
	slog.Info("update loop started", "cursor", l.cursor.Load())

	for {
		if ctx.Err() != nil {
			return nil
		}
		l.state.Store(int32(Polling))

		batch, err := l.source.Fetch(ctx, l.cursor.Load(), l.cfg.TimeoutSeconds, l.cfg.Limit)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, types.ErrUnauthorized) {
				return fmt.Errorf("update source: %w", err)
			}
			l.state.Store(int32(Backoff))
			metrics.RecordPollError()
			slog.Warn("poll failed, backing off", "error", err, "backoff", l.cfg.Backoff)
			if !sleep(ctx, l.cfg.Backoff) {
				return nil
			}
			continue
		}

		for _, u := range batch {
			l.dispatch(ctx, u)
			l.advance(ctx, u.ID+1)
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, u types.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("handler panicked", "update_id", u.ID, "panic", r)
		}
	}()
	metrics.RecordUpdate(u.Kind())
	l.handler(ctx, u)
}

func (l *Loop) advance(ctx context.Context, next int64) {
	if next <= l.cursor.Load() {
		return
	}
	l.cursor.Store(next)
	metrics.SetCursor(next)
	if l.cursors == nil {
		return
	}
	// Persist even during shutdown so a restart does not replay this update.
	if err := l.cursors.Save(context.WithoutCancel(ctx), next); err != nil {
		slog.Error("failed to persist cursor", "cursor", next, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
