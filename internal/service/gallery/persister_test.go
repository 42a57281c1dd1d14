package gallery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/progress-gallery/internal/platform/logger"
	"github.com/phrazzld/progress-gallery/internal/platform/memory"
	"github.com/phrazzld/progress-gallery/internal/store"
)

// gatedSlot blocks every Save until release is closed or receives.
type gatedSlot struct {
	*memory.Slot
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	saved [][]byte
}

func newGatedSlot() *gatedSlot {
	return &gatedSlot{
		Slot:    memory.New(),
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (s *gatedSlot) Save(ctx context.Context, key string, payload []byte) error {
	s.started <- struct{}{}
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	s.saved = append(s.saved, payload)
	s.mu.Unlock()
	return s.Slot.Save(ctx, key, payload)
}

func (s *gatedSlot) payloads() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.saved...)
}

func TestWriteBehindCoalescesToLatest(t *testing.T) {
	t.Parallel()

	slot := newGatedSlot()
	log, _ := logger.NewTestLogger(t)
	w := newWriteBehind(slot, store.DefaultKey, time.Minute, log, nil)

	w.persist(context.Background(), "add", []byte("1"))
	<-slot.started // writer is now blocked inside the first save

	w.persist(context.Background(), "add", []byte("2"))
	w.persist(context.Background(), "add", []byte("3"))
	w.persist(context.Background(), "add", []byte("4"))

	close(slot.release)
	require.NoError(t, w.close(context.Background()))

	got := slot.payloads()
	require.Len(t, got, 2)
	assert.Equal(t, "1", string(got[0]))
	assert.Equal(t, "4", string(got[1]))

	payload, ok := slot.Payload(store.DefaultKey)
	require.True(t, ok)
	assert.Equal(t, "4", string(payload))
}

func TestWriteBehindDropsAfterClose(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	log, logBuf := logger.NewTestLogger(t)
	w := newWriteBehind(slot, store.DefaultKey, time.Second, log, nil)
	require.NoError(t, w.close(context.Background()))
	require.NoError(t, w.close(context.Background()))

	w.persist(context.Background(), "remove", []byte("[]"))
	assert.Zero(t, slot.Saves())
	logger.AssertLogContains(t, logBuf, "save after close dropped")
}

func TestWriteBehindCloseHonoursContext(t *testing.T) {
	t.Parallel()

	slot := newGatedSlot()
	log, _ := logger.NewTestLogger(t)
	w := newWriteBehind(slot, store.DefaultKey, time.Minute, log, nil)

	w.persist(context.Background(), "add", []byte("1"))
	<-slot.started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := w.close(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	close(slot.release)
	require.NoError(t, w.close(context.Background()))
}

func TestAsyncManagerFlushesOnClose(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	log, _ := logger.NewTestLogger(t)
	m, err := New(context.Background(), slot, Options{AsyncPersist: true}, log)
	require.NoError(t, err)

	m.AddBatch(context.Background(), []string{"a", "b"})
	snap := m.AddBatch(context.Background(), []string{"c"})
	require.NoError(t, m.Close(context.Background()))

	assert.Equal(t, snap.Collection.IDs(), persisted(t, slot))
}

func TestSyncPersisterTimesOut(t *testing.T) {
	t.Parallel()

	slot := newGatedSlot()
	log, logBuf := logger.NewTestLogger(t)
	p := &syncPersister{slot: slot, key: store.DefaultKey, timeout: 10 * time.Millisecond, logger: log}

	p.persist(context.Background(), "add", []byte("[]"))
	assert.Empty(t, slot.payloads())
	logger.AssertLogContains(t, logBuf, "failed to persist collection")
}
