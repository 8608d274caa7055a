package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/tubefetch/internal/types"
)

func tempArtifact(t *testing.T) types.Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), "abc-video.mp4")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	return types.Artifact{Path: path, SizeBytes: 4, Format: types.FormatVideo}
}

func assertGone(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed, stat err = %v", path, err)
	}
}

func TestWithArtifactRemovesAfterSuccess(t *testing.T) {
	a := tempArtifact(t)
	var seen bool
	err := WithArtifact(context.Background(), a, func(_ context.Context, got types.Artifact) error {
		if _, err := os.Stat(got.Path); err != nil {
			t.Errorf("artifact should exist during use: %v", err)
		}
		seen = true
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("use was not called")
	}
	assertGone(t, a.Path)
}

func TestWithArtifactRemovesAfterFailure(t *testing.T) {
	a := tempArtifact(t)
	sendErr := errors.New("upload rejected")
	err := WithArtifact(context.Background(), a, func(context.Context, types.Artifact) error {
		return sendErr
	})
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected use error to propagate, got %v", err)
	}
	assertGone(t, a.Path)
}

func TestWithArtifactRemovesAfterPanic(t *testing.T) {
	a := tempArtifact(t)
	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		WithArtifact(context.Background(), a, func(context.Context, types.Artifact) error {
			panic("boom")
		})
	}()
	assertGone(t, a.Path)
}

func TestWithArtifactMissingFile(t *testing.T) {
	a := types.Artifact{Path: filepath.Join(t.TempDir(), "never-created.mp3")}
	if err := WithArtifact(context.Background(), a, func(context.Context, types.Artifact) error { return nil }); err != nil {
		t.Fatalf("missing file at release should not be an error, got %v", err)
	}
}

func TestWithArtifactUseRemovesFileItself(t *testing.T) {
	a := tempArtifact(t)
	err := WithArtifact(context.Background(), a, func(_ context.Context, got types.Artifact) error {
		return os.Remove(got.Path)
	})
	if err != nil {
		t.Fatal(err)
	}
}
