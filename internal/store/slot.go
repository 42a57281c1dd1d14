package store

import "context"

// DefaultKey is the slot key the gallery collection is stored under.
const DefaultKey = "br:gallery"

// PhotoSlot is a durable key-value slot. Every save overwrites the complete
// payload; there are no partial or delta writes.
type PhotoSlot interface {
	// Load returns the payload stored under key.
	// Returns ErrSlotNotFound if nothing was ever saved under key.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the payload stored under key.
	Save(ctx context.Context, key string, payload []byte) error

	// Close releases any connection held by the backend.
	Close() error
}
