package scheduler

import (
	"context"
	"fmt"

	"github.com/user/tubefetch/internal/artifact"
	"github.com/user/tubefetch/internal/metrics"
	"github.com/user/tubefetch/internal/types"
)

// SessionSweep drops expired pending sessions.
func SessionSweep(schedule string, store types.SessionStore) Job {
	return Job{
		Name:     "session-sweep",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			n, err := store.Sweep(ctx)
			if err != nil {
				return fmt.Errorf("sweep sessions: %w", err)
			}
			metrics.RecordCleanup("sessions", n)
			return nil
		},
	}
}

// FileJanitor removes stale files from the download directory.
func FileJanitor(schedule string, j *artifact.Janitor) Job {
	return Job{
		Name:     "file-janitor",
		Schedule: schedule,
		Run: func(context.Context) error {
			n, err := j.Sweep()
			if err != nil {
				return err
			}
			metrics.RecordCleanup("files", n)
			return nil
		},
	}
}
