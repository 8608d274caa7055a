// internal/types/ids.go
package types

import (
	"strconv"

	"github.com/google/uuid"
)

// ChatID identifies a conversation on the messaging platform.
type ChatID int64

func (c ChatID) String() string {
	return strconv.FormatInt(int64(c), 10)
}

// RequestID namespaces the files produced by one download request.
type RequestID string

func NewRequestID() RequestID {
	return RequestID(uuid.New().String())
}

// SourceID is the canonical identifier of a media item.
type SourceID string

// URL returns the canonical watch link for the source.
func (s SourceID) URL() string {
	return "https://www.youtube.com/watch?v=" + string(s)
}
