package gateway

import (
	"context"
	"errors"
	"log/slog"

	"github.com/user/tubefetch/internal/metrics"
	"github.com/user/tubefetch/internal/types"
)

// Handler processes one update to completion.
type Handler func(ctx context.Context, u types.Update)

// Gateway hands inbound updates to the handler. With a concurrency of one it
// calls the handler inline, so the caller blocks for the whole dispatch.
// With more it routes updates through per-chat lanes of a Queue.
type Gateway struct {
	handler Handler
	Queue   *Queue
}

// New creates a Gateway. maxConcurrent <= 1 selects inline dispatch.
func New(handler Handler, maxConcurrent int64) *Gateway {
	g := &Gateway{handler: handler}
	if maxConcurrent > 1 {
		g.Queue = NewQueue(maxConcurrent)
		g.Queue.SetProcessor(func(ctx context.Context, job *Job) {
			handler(ctx, job.Update)
		})
	}
	return g
}

// Start starts the internal queue, if any.
func (g *Gateway) Start(ctx context.Context) {
	if g.Queue != nil {
		g.Queue.Start(ctx)
	}
}

// Stop stops the queue and waits for running jobs.
func (g *Gateway) Stop() {
	if g.Queue != nil {
		g.Queue.Stop()
	}
}

// HandleInbound dispatches u inline or enqueues it on its chat's lane.
// An update that cannot be enqueued is dropped and counted.
func (g *Gateway) HandleInbound(ctx context.Context, u types.Update) {
	if g.Queue == nil {
		g.handler(ctx, u)
		return
	}
	job := NewJob(u)
	if err := g.Queue.Enqueue(job); err != nil {
		reason := "stopped"
		if errors.Is(err, ErrQueueFull) {
			reason = "queue_full"
		}
		metrics.RecordDroppedUpdates(reason, 1)
		slog.Error("enqueue update failed, dropping", "update_id", u.ID, "chat_id", job.ChatID, "reason", reason, "error", err)
	}
}
