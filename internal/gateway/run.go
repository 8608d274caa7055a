package gateway

import (
	"time"

	"github.com/user/tubefetch/internal/types"
)

// JobStatus represents the lifecycle state of a Job.
type JobStatus string

const (
	JobStatusQueued   JobStatus = "queued"
	JobStatusRunning  JobStatus = "running"
	JobStatusComplete JobStatus = "complete"
)

// Job tracks the handling of a single inbound update for one chat.
type Job struct {
	ID        types.RequestID
	ChatID    types.ChatID
	Update    types.Update
	Status    JobStatus
	CreatedAt time.Time
	StartedAt *time.Time
	EndedAt   *time.Time
}

// NewJob creates a Job in the Queued state for the given update.
func NewJob(u types.Update) *Job {
	return &Job{
		ID:        types.NewRequestID(),
		ChatID:    u.ChatID(),
		Update:    u,
		Status:    JobStatusQueued,
		CreatedAt: time.Now(),
	}
}
