package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/progress-gallery/internal/store"
)

// PostgreSQL error codes
const (
	// undefinedTableCode is returned when gallery_slots has not been migrated yet
	undefinedTableCode = "42P01"

	// invalidTextRepresentationCode is returned when a payload is not valid JSON
	invalidTextRepresentationCode = "22P02"
)

// backendName identifies this backend in store.SlotError values.
const backendName = "postgres"

// MapError maps a database error to a store error.
// It wraps the original error to preserve context and provide better debugging information.
func MapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrSlotNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case undefinedTableCode:
			return store.NewSlotError(backendName, operation, "gallery_slots table missing, run migrations", err)
		case invalidTextRepresentationCode:
			return store.NewSlotError(backendName, operation, "payload is not valid JSON", err)
		}
	}

	return store.NewSlotError(backendName, operation, "query failed", err)
}

// IsUndefinedTable checks if the error is a PostgreSQL undefined table error.
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode
}
