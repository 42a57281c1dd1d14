// Package sqlite provides a store.PhotoSlot backed by a single SQLite table
// through the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/phrazzld/progress-gallery/internal/platform/logger"
	"github.com/phrazzld/progress-gallery/internal/store"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

const backendName = "sqlite"

// Slot stores each key's payload as one row of the slots table.
type Slot struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.PhotoSlot = (*Slot)(nil)

// Open creates (if needed) the database file at path and the slots table.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Slot, error) {
	if path == "" {
		path = "gallery.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer; keep writes on one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS slots (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create slots table: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Slot{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_slot"), slog.String("path", path)),
	}, nil
}

// Load returns the payload for key or store.ErrSlotNotFound.
func (s *Slot) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM slots WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSlotNotFound
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load slot",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return nil, store.NewSlotError(backendName, "load", "query failed", err)
	}
	return payload, nil
}

// Save upserts the payload for key.
func (s *Slot) Save(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO slots (key, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, payload)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save slot",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return store.NewSlotError(backendName, "save", "upsert failed", err)
	}
	return nil
}

// Close closes the database.
func (s *Slot) Close() error {
	return s.db.Close()
}
