// Package state provides the pending-session, profile and cursor stores.
package state

import "github.com/user/tubefetch/internal/types"

// Compile-time interface compliance checks.
var _ types.SessionStore = (*SessionStore)(nil)
var _ types.SessionStore = (*SQLiteSessionStore)(nil)
var _ types.ProfileStore = (*ProfileStore)(nil)
var _ types.CursorStore = (*CursorFile)(nil)
