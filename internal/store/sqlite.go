// Package store keeps the local copy of a session so a client can resume
// its pending actions after an unexpected exit.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/logger"
)

// SQLiteStore persists one session per farm in a local SQLite file
type SQLiteStore struct {
	db        *sql.DB
	codec     *codec
	closeOnce sync.Once
	closeErr  error
}

// OpenSQLite opens (and creates if needed) the session database at path
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty session db path")
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create session db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	c, err := newCodec()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgStoreOpened, "path", path)
	return &SQLiteStore{db: db, codec: c}, nil
}

func initPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `CREATE TABLE IF NOT EXISTS sessions (
		farm_id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		version INTEGER NOT NULL,
		pending INTEGER NOT NULL,
		format INTEGER NOT NULL,
		blob BLOB NOT NULL,
		saved_at TEXT NOT NULL
	);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

// Load returns the session stored for farmID
func (s *SQLiteStore) Load(ctx context.Context, farmID string) (*domain.PersistedSession, error) {
	var (
		format int
		blob   []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT format, blob FROM sessions WHERE farm_id = ?`, farmID,
	).Scan(&format, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoPersistedSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", farmID, err)
	}

	return s.codec.decode(format, blob)
}

// Save replaces the session stored for s.FarmID
func (s *SQLiteStore) Save(ctx context.Context, session domain.PersistedSession) error {
	blob, err := s.codec.encode(session)
	if err != nil {
		return err
	}

	savedAt := session.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (farm_id, session_id, version, pending, format, blob, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(farm_id) DO UPDATE SET
			session_id = excluded.session_id,
			version = excluded.version,
			pending = excluded.pending,
			format = excluded.format,
			blob = excluded.blob,
			saved_at = excluded.saved_at`,
		session.FarmID, session.SessionID, session.Version, len(session.Pending),
		FormatV1, blob, savedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to write session %s: %w", session.FarmID, err)
	}
	return nil
}

// Delete removes the session stored for farmID. Missing rows are not an error.
func (s *SQLiteStore) Delete(ctx context.Context, farmID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE farm_id = ?`, farmID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", farmID, err)
	}
	return nil
}

// Close releases the database. Later calls return the first result.
func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() {
		s.codec.close()
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
