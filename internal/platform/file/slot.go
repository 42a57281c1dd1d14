// Package file provides a store.PhotoSlot that keeps each key in its own
// JSON file under a directory. Writes go to a temporary file that is renamed
// over the target, so a crash never leaves a half-written payload behind.
package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/progress-gallery/internal/store"
)

const backendName = "file"

// Slot is a directory of <key>.json files.
type Slot struct {
	dir    string
	logger *slog.Logger
}

var _ store.PhotoSlot = (*Slot)(nil)

// New returns a slot rooted at dir, creating it if needed.
func New(dir string, logger *slog.Logger) (*Slot, error) {
	if dir == "" {
		dir = ".gallery"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create slot dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Slot{
		dir:    dir,
		logger: logger.With(slog.String("component", "file_slot"), slog.String("dir", dir)),
	}, nil
}

// fileName maps a key to a file name that is safe on every platform and
// cannot escape the slot directory.
func fileName(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), ".")
	if name == "" {
		name = "_"
	}
	return name + ".json"
}

// Path returns the file that backs key.
func (s *Slot) Path(key string) string {
	return filepath.Join(s.dir, fileName(key))
}

// Load reads the file for key.
func (s *Slot) Load(_ context.Context, key string) ([]byte, error) {
	payload, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, store.ErrSlotNotFound
	}
	if err != nil {
		return nil, store.NewSlotError(backendName, "load", "read failed", err)
	}
	return payload, nil
}

// Save atomically replaces the file for key.
func (s *Slot) Save(_ context.Context, key string, payload []byte) (retErr error) {
	target := s.Path(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return store.NewSlotError(backendName, "save", "create temp file", err)
	}
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return store.NewSlotError(backendName, "save", "write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return store.NewSlotError(backendName, "save", "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return store.NewSlotError(backendName, "save", "close temp file", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return store.NewSlotError(backendName, "save", "rename into place", err)
	}

	s.logger.Debug("slot saved", slog.String("key", key), slog.Int("bytes", len(payload)))
	return nil
}

// Close is a no-op; files are not held open between calls.
func (s *Slot) Close() error { return nil }
