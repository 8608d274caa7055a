// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Job is a named periodic task.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Scheduler evaluates cron expressions and fires the registered jobs.
type Scheduler struct {
	jobs []Job
	cron *cron.Cron
}

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// New creates a Scheduler for jobs. Nothing runs until Start.
func New(jobs ...Job) *Scheduler {
	return &Scheduler{
		jobs: jobs,
		cron: cron.New(cron.WithParser(cronParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start registers every job with a valid schedule and starts the cron
// ticker. Jobs receive ctx; it should outlive the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, job := range s.jobs {
		if job.Schedule == "" || job.Run == nil {
			continue
		}

		// Capture loop variables for the closure.
		name := job.Name
		run := job.Run

		_, err := s.cron.AddFunc(job.Schedule, func() {
			if err := run(ctx); err != nil {
				slog.Error("scheduled job failed", "name", name, "error", err)
			}
		})
		if err != nil {
			slog.Error("invalid cron schedule", "name", name, "schedule", job.Schedule, "error", err)
			continue
		}
		slog.Info("scheduled job", "name", name, "schedule", job.Schedule)
	}

	s.cron.Start()
	return nil
}

// Stop stops the cron ticker and waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
