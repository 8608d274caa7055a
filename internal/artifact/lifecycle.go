// Package artifact owns downloaded files from the moment a fetch returns them
// until they have been handed to the recipient.
package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/user/tubefetch/internal/types"
)

// Use is the work done with an artifact while it is held.
type Use func(ctx context.Context, a types.Artifact) error

// WithArtifact runs use and then deletes the artifact file, whether use
// succeeded, failed or panicked. A missing file at release time is not an
// error. Removal failures are logged and never replace the result of use.
func WithArtifact(ctx context.Context, a types.Artifact, use Use) error {
	defer release(a.Path)
	if use == nil {
		return nil
	}
	if err := use(ctx, a); err != nil {
		return fmt.Errorf("use artifact: %w", err)
	}
	return nil
}

func release(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Error("failed to remove artifact", "path", path, "error", err)
		return
	}
	slog.Debug("artifact released", "path", path)
}
