package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/user/tubefetch/internal/types"
)

// SQLiteSessionStore keeps pending sessions in SQLite so they survive a
// restart. TakeAndClear is a single DELETE ... RETURNING statement and the
// pool holds one connection, which makes the consume atomic.
type SQLiteSessionStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteSessionStore opens (or creates) the database at dbPath.
func NewSQLiteSessionStore(dbPath string, ttl time.Duration) (*SQLiteSessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteSessionStore{db: db, ttl: ttl, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session database: %w", err)
	}
	return s, nil
}

func (s *SQLiteSessionStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS pending_sessions (
		chat_id    INTEGER PRIMARY KEY,
		url        TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pending_created ON pending_sessions(created_at);
	`)
	return err
}

// Close releases the database handle.
func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteSessionStore) Put(ctx context.Context, chatID types.ChatID, url string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pending_sessions (chat_id, url, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET url = excluded.url, created_at = excluded.created_at`,
		int64(chatID), url, s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (s *SQLiteSessionStore) TakeAndClear(ctx context.Context, chatID types.ChatID) (string, error) {
	var (
		url       string
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM pending_sessions WHERE chat_id = ? RETURNING url, created_at`,
		int64(chatID),
	).Scan(&url, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", types.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("take session: %w", err)
	}
	if s.ttl > 0 && s.now().Sub(time.Unix(0, createdAt)) >= s.ttl {
		return "", types.ErrSessionNotFound
	}
	return url, nil
}

func (s *SQLiteSessionStore) Sweep(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.ttl).UnixNano()
	res, err := s.db.ExecContext(ctx, `DELETE FROM pending_sessions WHERE created_at <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteSessionStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}
