package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/user/tubefetch/internal/metrics"
	"github.com/user/tubefetch/internal/types"
)

const (
	laneBuffer         = 100
	defaultIdleTimeout = time.Minute
)

var (
	// ErrQueueStopped is returned by Enqueue after Stop or once the queue's
	// context is done.
	ErrQueueStopped = errors.New("queue stopped")
	// ErrQueueFull is returned by Enqueue when the chat's lane is full.
	ErrQueueFull = errors.New("queue full")
)

// Queue manages per-chat lanes with a global concurrency semaphore.
// Each chat gets its own FIFO channel (lane) so that jobs within a chat
// are processed in arrival order, while the semaphore limits the total
// number of jobs running across all chats. A lane that stays empty for
// IdleTimeout exits and is recreated on the next job for that chat.
type Queue struct {
	lanes     map[types.ChatID]chan *Job
	semaphore *semaphore.Weighted
	processor func(context.Context, *Job)
	active    atomic.Int64
	dropped   atomic.Int64

	IdleTimeout time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewQueue creates a Queue that allows up to maxConcurrent jobs to execute
// simultaneously across all chat lanes.
func NewQueue(maxConcurrent int64) *Queue {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Queue{
		lanes:       make(map[types.ChatID]chan *Job),
		semaphore:   semaphore.NewWeighted(maxConcurrent),
		IdleTimeout: defaultIdleTimeout,
	}
}

// Start initialises the queue's context. Must be called before Enqueue.
func (q *Queue) Start(ctx context.Context) {
	q.ctx, q.cancel = context.WithCancel(ctx)
}

// Stop cancels the queue context, closes all lanes, and waits for in-flight
// jobs to finish. Jobs still waiting in a lane are dropped.
func (q *Queue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	q.mu.Lock()
	q.stopped = true
	for id, lane := range q.lanes {
		close(lane)
		delete(q.lanes, id)
	}
	q.mu.Unlock()
	q.wg.Wait()
}

// Enqueue adds a Job to its chat's lane, creating the lane (and its
// goroutine) when the chat has none. Returns an error if the lane's buffer
// is full.
func (q *Queue) Enqueue(job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped || q.ctx == nil || q.ctx.Err() != nil {
		return ErrQueueStopped
	}

	lane, exists := q.lanes[job.ChatID]
	if !exists {
		lane = make(chan *Job, laneBuffer)
		q.lanes[job.ChatID] = lane
		q.wg.Add(1)
		go q.processLane(job.ChatID, lane)
	}

	select {
	case lane <- job:
		return nil
	default:
		return fmt.Errorf("%w for chat %s", ErrQueueFull, job.ChatID)
	}
}

// processLane drains a single chat lane, acquiring a semaphore slot before
// running the processor synchronously.
func (q *Queue) processLane(chatID types.ChatID, lane chan *Job) {
	defer q.wg.Done()

	idle := time.NewTimer(q.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case job, ok := <-lane:
			if !ok {
				return
			}
			if err := q.semaphore.Acquire(q.ctx, 1); err != nil {
				q.dropPending(chatID, lane, 1)
				return
			}
			q.run(job)
			q.semaphore.Release(1)
			idle.Reset(q.IdleTimeout)
		case <-idle.C:
			// Only retire the lane if nothing slipped in since the timer fired;
			// Enqueue holds the same lock while sending.
			q.mu.Lock()
			if len(lane) == 0 && q.lanes[chatID] == lane {
				delete(q.lanes, chatID)
				q.mu.Unlock()
				slog.Debug("lane retired", "chat_id", chatID)
				return
			}
			q.mu.Unlock()
			idle.Reset(q.IdleTimeout)
		case <-q.ctx.Done():
			q.dropPending(chatID, lane, 0)
			return
		}
	}
}

// dropPending counts the jobs left in a lane whose queue is shutting down,
// plus n already taken from it. Holding mu keeps Enqueue out while draining.
func (q *Queue) dropPending(chatID types.ChatID, lane chan *Job, n int) {
	q.mu.Lock()
drain:
	for {
		select {
		case _, ok := <-lane:
			if !ok {
				break drain
			}
			n++
		default:
			break drain
		}
	}
	q.mu.Unlock()

	if n > 0 {
		q.dropped.Add(int64(n))
		metrics.RecordDroppedUpdates("shutdown", n)
		slog.Warn("dropped queued updates on shutdown", "chat_id", chatID, "count", n)
	}
}

func (q *Queue) run(job *Job) {
	if q.processor == nil {
		return
	}
	q.active.Add(1)
	defer q.active.Add(-1)

	start := time.Now()
	job.StartedAt = &start
	job.Status = JobStatusRunning
	defer func() {
		end := time.Now()
		job.EndedAt = &end
		job.Status = JobStatusComplete
		if r := recover(); r != nil {
			slog.Error("job panicked", "job_id", string(job.ID), "chat_id", job.ChatID, "panic", r)
		}
	}()
	q.processor(q.ctx, job)
}

// Lanes returns the number of live chat lanes.
func (q *Queue) Lanes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lanes)
}

// Dropped returns the number of jobs discarded at shutdown.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}

// Active returns the number of jobs currently running.
func (q *Queue) Active() int64 {
	return q.active.Load()
}

// WaitIdle blocks until no jobs are actively being processed, or the timeout
// expires. Returns true if idle, false if timed out.
func (q *Queue) WaitIdle(timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if q.active.Load() == 0 {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// SetProcessor sets the function invoked for each dequeued Job.
func (q *Queue) SetProcessor(fn func(context.Context, *Job)) {
	q.processor = fn
}
