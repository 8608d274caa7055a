// internal/types/interfaces.go
package types

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound is returned when a chat has no live pending session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnauthorized is returned by an UpdateSource whose credentials were rejected.
	ErrUnauthorized = errors.New("credentials rejected")
)

type SessionStore interface {
	Put(ctx context.Context, chatID ChatID, url string) error
	TakeAndClear(ctx context.Context, chatID ChatID) (string, error)
	Sweep(ctx context.Context) (int, error)
	Len(ctx context.Context) (int, error)
}

type ProfileStore interface {
	Record(ctx context.Context, profile UserProfile) (bool, error)
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]UserProfile, error)
}

type CursorStore interface {
	Load(ctx context.Context) (int64, error)
	Save(ctx context.Context, offset int64) error
}

type UpdateSource interface {
	Fetch(ctx context.Context, offset int64, timeoutSeconds, limit int) ([]Update, error)
}

type Messenger interface {
	SendText(ctx context.Context, chatID ChatID, text string, choices ...Choice) (int, error)
	EditText(ctx context.Context, chatID ChatID, messageID int, text string) error
	AckAction(ctx context.Context, actionID, text string) error
	SendFile(ctx context.Context, chatID ChatID, path, caption string) error
}
