package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/progress-gallery/internal/platform/logger"
	"github.com/phrazzld/progress-gallery/internal/store"
)

// PostgresSlot implements the store.PhotoSlot interface
// using a PostgreSQL table as the storage backend.
type PostgresSlot struct {
	db     store.DBTX
	closer func() error
	logger *slog.Logger
}

// Ensure PostgresSlot implements store.PhotoSlot interface
var _ store.PhotoSlot = (*PostgresSlot)(nil)

// NewPostgresSlot creates a slot on top of an existing connection or transaction.
// The caller keeps ownership of db; Close is a no-op.
// If logger is nil, a default logger will be used.
func NewPostgresSlot(db store.DBTX, logger *slog.Logger) *PostgresSlot {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSlot{
		db:     db,
		closer: func() error { return nil },
		logger: logger.With(slog.String("component", "postgres_slot")),
	}
}

// Open connects to databaseURL through the pgx stdlib driver, pings it,
// and returns a slot that owns the connection pool.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (*PostgresSlot, *sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// A single user's gallery needs very few connections
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slot := NewPostgresSlot(db, logger)
	slot.closer = db.Close
	return slot, db, nil
}

// Load implements store.PhotoSlot.Load
// Returns store.ErrSlotNotFound if no row exists for key.
func (s *PostgresSlot) Load(ctx context.Context, key string) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT payload
		FROM gallery_slots
		WHERE key = $1
	`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if err != nil {
		mapped := MapError("load", err)
		if store.IsNotFoundError(mapped) {
			log.Debug("slot not found", slog.String("key", key))
			return nil, store.ErrSlotNotFound
		}
		log.Error("failed to load slot",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return nil, mapped
	}

	log.Debug("slot loaded",
		slog.String("key", key),
		slog.Int("bytes", len(payload)))
	return payload, nil
}

// Save implements store.PhotoSlot.Save
// The row is upserted so the payload is always replaced as a whole.
func (s *PostgresSlot) Save(ctx context.Context, key string, payload []byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO gallery_slots (key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, key, payload, time.Now().UTC())
	if err != nil {
		log.Error("failed to save slot",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return MapError("save", err)
	}

	log.Debug("slot saved",
		slog.String("key", key),
		slog.Int("bytes", len(payload)))
	return nil
}

// Close releases the connection pool when the slot was created by Open.
func (s *PostgresSlot) Close() error {
	return s.closer()
}
