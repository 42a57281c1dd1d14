// Package postgres provides the PostgreSQL implementation of store.PhotoSlot.
// Each slot is one row of the gallery_slots table, keyed by slot key, whose
// JSONB payload is replaced on every save. The schema is managed with goose
// migrations embedded in the binary.
package postgres
