package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCursorFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "cursor.json")
	cursor := NewCursorFile(path)

	offset, err := cursor.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if offset != 0 {
		t.Errorf("expected 0 before first save, got %d", offset)
	}

	if err := cursor.Save(ctx, 12345); err != nil {
		t.Fatal(err)
	}
	offset, err = NewCursorFile(path).Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if offset != 12345 {
		t.Errorf("expected 12345, got %d", offset)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after save")
	}
}
