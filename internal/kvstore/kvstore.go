// Package kvstore provides a small local key-value store backed by SQLite.
// It stands in for browser local storage: values are JSON blobs with an
// optional time-to-live and a per-value size bound, and corrupt or expired
// entries are removed on read.
package kvstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// MaxValueBytes bounds a single stored value.
const MaxValueBytes = 1 << 20

// ErrTooLarge is returned when a value exceeds MaxValueBytes.
var ErrTooLarge = errors.New("kvstore: value too large")

// Store is a bounded local key-value store.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// Open opens or creates the store database at the given path, creating
// parent directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping store database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_ms INTEGER NOT NULL,
			expires_ms INTEGER
		)`)
	if err != nil {
		return fmt.Errorf("init store schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put stores value under key. A zero ttl means the entry never expires.
func (s *Store) Put(key string, value []byte, ttl time.Duration) error {
	if len(value) > MaxValueBytes {
		return ErrTooLarge
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UnixMilli()
	var expires sql.NullInt64
	if ttl > 0 {
		expires = sql.NullInt64{Int64: now + ttl.Milliseconds(), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_ms, expires_ms) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value,
			updated_ms = excluded.updated_ms, expires_ms = excluded.expires_ms`,
		key, value, now, expires)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Get returns the value for key and whether it exists. Expired entries are
// deleted and reported as absent.
func (s *Store) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value []byte
	var expires sql.NullInt64
	err := s.db.QueryRow(`SELECT value, expires_ms FROM kv WHERE key = ?`, key).
		Scan(&value, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	if expires.Valid && s.now().UnixMilli() >= expires.Int64 {
		if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
			return nil, false, fmt.Errorf("expire %q: %w", key, err)
		}
		return nil, false, nil
	}
	return value, true, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// SetClock overrides the store's clock. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
