// internal/state/profile.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/user/tubefetch/internal/types"
)

// ProfileStore is a JSON-file-backed store of users who started the bot.
// The file maps the decimal user ID to its profile.
type ProfileStore struct {
	path string
	mu   sync.RWMutex
}

// NewProfileStore creates a ProfileStore persisted at path.
func NewProfileStore(path string) *ProfileStore {
	return &ProfileStore{path: path}
}

// Path returns the file path used by this store.
func (s *ProfileStore) Path() string {
	return s.path
}

func (s *ProfileStore) load() (map[string]types.UserProfile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]types.UserProfile), nil
		}
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	profiles := make(map[string]types.UserProfile)
	if len(data) == 0 {
		return profiles, nil
	}
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("unmarshal profiles: %w", err)
	}
	return profiles, nil
}

func (s *ProfileStore) save(profiles map[string]types.UserProfile) error {
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// Record stores profile unless the user is already known. It reports
// whether a new record was written.
func (s *ProfileStore) Record(_ context.Context, profile types.UserProfile) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return false, err
	}
	key := strconv.FormatInt(profile.UserID, 10)
	if _, ok := profiles[key]; ok {
		return false, nil
	}
	profiles[key] = profile
	if err := s.save(profiles); err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of recorded users.
func (s *ProfileStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles, err := s.load()
	if err != nil {
		return 0, err
	}
	return len(profiles), nil
}

// List returns all profiles ordered by start time.
func (s *ProfileStore) List(_ context.Context) ([]types.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]types.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}
