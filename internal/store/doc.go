// Package store defines the persistence contract for the gallery: a single
// durable key-value slot holding the whole photo collection as a JSON array.
// Backends live under internal/platform; this package owns the slot
// interface, the wire codec, and the errors shared by every backend.
package store
