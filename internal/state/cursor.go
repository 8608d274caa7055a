package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// CursorFile persists the update loop's next offset as a small JSON document.
type CursorFile struct {
	path string
	mu   sync.Mutex
}

type cursorDoc struct {
	Offset int64 `json:"offset"`
}

func NewCursorFile(path string) *CursorFile {
	return &CursorFile{path: path}
}

// Load returns the stored offset, or 0 when nothing has been saved yet.
func (c *CursorFile) Load(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cursor: %w", err)
	}
	var doc cursorDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("unmarshal cursor: %w", err)
	}
	return doc.Offset, nil
}

func (c *CursorFile) Save(_ context.Context, offset int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(cursorDoc{Offset: offset})
	if err != nil {
		return fmt.Errorf("marshal cursor: %w", err)
	}
	return writeFileAtomic(c.path, data)
}
