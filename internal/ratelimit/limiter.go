// Package ratelimit bounds how often a single chat may start downloads.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/user/tubefetch/internal/metrics"
	"github.com/user/tubefetch/internal/types"
)

// Config holds per-chat limits. A PerMinute of zero disables limiting.
type Config struct {
	PerMinute int
	Burst     int

	// Limiters idle for longer than IdleTTL are dropped on the next Allow.
	IdleTTL time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per chat.
type Limiter struct {
	config Config
	now    func() time.Time

	mu          sync.Mutex
	perChat     map[types.ChatID]*entry
	lastCleanup time.Time
}

func New(config Config) *Limiter {
	if config.Burst <= 0 {
		config.Burst = 1
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 30 * time.Minute
	}
	return &Limiter{
		config:      config,
		now:         time.Now,
		perChat:     make(map[types.ChatID]*entry),
		lastCleanup: time.Now(),
	}
}

// Allow reports whether chatID may start another download now, consuming a
// token if so.
func (l *Limiter) Allow(chatID types.ChatID) bool {
	if l == nil || l.config.PerMinute <= 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.perChat[chatID]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Limit(float64(l.config.PerMinute)/60), l.config.Burst)}
		l.perChat[chatID] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	if now.Sub(l.lastCleanup) >= l.config.IdleTTL {
		for id, other := range l.perChat {
			if now.Sub(other.lastSeen) >= l.config.IdleTTL {
				delete(l.perChat, id)
			}
		}
		l.lastCleanup = now
	}

	if !allowed {
		metrics.RecordRateLimited()
	}
	return allowed
}

// Len returns the number of tracked chats.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.perChat)
}
