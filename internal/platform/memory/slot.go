// Package memory implements an in-memory store.PhotoSlot for tests and for
// sessions that should not outlive the process.
package memory

import (
	"context"
	"sync"

	"github.com/phrazzld/progress-gallery/internal/store"
)

// Slot keeps payloads in process memory. Load and save failures can be
// injected to exercise the manager's fail-soft paths.
type Slot struct {
	mu      sync.RWMutex
	data    map[string][]byte
	loadErr error
	saveErr error
	saves   int
	closed  bool
}

var _ store.PhotoSlot = (*Slot)(nil)

// New returns an empty in-memory slot.
func New() *Slot { return &Slot{data: make(map[string][]byte)} }

// Load returns a copy of the payload stored under key.
func (s *Slot) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrSlotClosed
	}
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	payload, ok := s.data[key]
	if !ok {
		return nil, store.ErrSlotNotFound
	}
	return append([]byte(nil), payload...), nil
}

// Save stores a copy of payload under key.
func (s *Slot) Save(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrSlotClosed
	}
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data[key] = append([]byte(nil), payload...)
	s.saves++
	return nil
}

// Close marks the slot closed; later calls fail with store.ErrSlotClosed.
func (s *Slot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Put seeds a payload without counting it as a save.
func (s *Slot) Put(key string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), payload...)
}

// Payload returns the stored payload for key, if any.
func (s *Slot) Payload(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.data[key]
	return append([]byte(nil), payload...), ok
}

// Saves reports how many successful saves happened.
func (s *Slot) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// FailLoads makes every Load return err (nil restores normal behaviour).
func (s *Slot) FailLoads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// FailSaves makes every Save return err (nil restores normal behaviour).
func (s *Slot) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}
