// internal/state/session.go
package state

import (
	"context"
	"sync"
	"time"

	"github.com/user/tubefetch/internal/types"
)

// SessionStore is the in-memory pending-session store. Each chat holds at
// most one pending URL; Put overwrites it and TakeAndClear consumes it under
// the store mutex, so concurrent consumers of the same chat see it once.
type SessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[types.ChatID]types.ChatSession
}

// NewSessionStore creates an empty store. A zero ttl disables expiry.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[types.ChatID]types.ChatSession),
	}
}

func (s *SessionStore) expired(sess types.ChatSession, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.CreatedAt) >= s.ttl
}

// Put records url as the pending request for chatID, replacing any earlier one.
func (s *SessionStore) Put(_ context.Context, chatID types.ChatID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[chatID] = types.ChatSession{
		ChatID:    chatID,
		URL:       url,
		CreatedAt: s.now(),
	}
	return nil
}

// TakeAndClear returns and removes the pending URL for chatID. Missing and
// expired sessions both yield types.ErrSessionNotFound.
func (s *SessionStore) TakeAndClear(_ context.Context, chatID types.ChatID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return "", types.ErrSessionNotFound
	}
	delete(s.sessions, chatID)
	if s.expired(sess, s.now()) {
		return "", types.ErrSessionNotFound
	}
	return sess.URL, nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *SessionStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, including any not yet swept.
func (s *SessionStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions), nil
}
