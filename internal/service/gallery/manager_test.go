package gallery

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/progress-gallery/internal/domain"
	"github.com/phrazzld/progress-gallery/internal/platform/logger"
	"github.com/phrazzld/progress-gallery/internal/platform/memory"
	"github.com/phrazzld/progress-gallery/internal/platform/metrics"
	"github.com/phrazzld/progress-gallery/internal/store"
)

var testNow = time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC)

func newTestManager(t *testing.T, slot store.PhotoSlot, opts Options) *Manager {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	log, _ := logger.NewTestLogger(t)
	m, err := New(context.Background(), slot, opts, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

// seed stores photos with the given ids under the default key.
func seed(t *testing.T, slot *memory.Slot, ids ...string) {
	t.Helper()
	c := make(domain.Collection, 0, len(ids))
	for i, id := range ids {
		c = append(c, domain.Photo{
			ID:        id,
			URI:       "file:///" + id + ".jpg",
			CreatedAt: time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC),
		})
	}
	payload, err := store.EncodeCollection(c)
	require.NoError(t, err)
	slot.Put(store.DefaultKey, payload)
}

func persisted(t *testing.T, slot *memory.Slot) []string {
	t.Helper()
	payload, ok := slot.Payload(store.DefaultKey)
	require.True(t, ok, "nothing persisted")
	c, err := store.DecodeCollection(payload)
	require.NoError(t, err)
	return c.IDs()
}

func TestNewRejectsNilSlot(t *testing.T) {
	t.Parallel()

	m, err := New(context.Background(), nil, Options{}, nil)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrNilSlot)

	var managerErr *ManagerError
	require.ErrorAs(t, err, &managerErr)
	assert.Equal(t, "create_manager", managerErr.Operation)
}

func TestNewLoadsPersistedCollection(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	seed(t, slot, "a", "b", "c")

	m := newTestManager(t, slot, Options{})
	snap := m.Snapshot()

	assert.Equal(t, []string{"a", "b", "c"}, snap.Collection.IDs())
	assert.Equal(t, domain.Selection{LeftID: "a", RightID: "b"}, snap.Selection)
	assert.Equal(t, "01 Jan 2024 - 02 Jan 2024", snap.CompareLabel)
	assert.False(t, snap.Picker.Open)
	assert.Equal(t, -1, snap.Picker.TargetIndex)
}

func TestNewFailsSoft(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		prepare   func(*memory.Slot)
		wantLog   string
		wantCount float64
	}{
		{
			name:    "missing key",
			prepare: func(*memory.Slot) {},
			wantLog: "no persisted gallery",
		},
		{
			name: "corrupt payload",
			prepare: func(s *memory.Slot) {
				s.Put(store.DefaultKey, []byte("{not json"))
			},
			wantLog:   "persisted gallery is corrupt",
			wantCount: 1,
		},
		{
			name: "load error",
			prepare: func(s *memory.Slot) {
				s.FailLoads(errors.New("disk on fire"))
			},
			wantLog:   "failed to load gallery",
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			slot := memory.New()
			tt.prepare(slot)
			rec := metrics.NewRecorder()
			log, logBuf := logger.NewTestLogger(t)

			m, err := New(context.Background(), slot, Options{Metrics: rec}, log)
			require.NoError(t, err)
			defer func() { _ = m.Close(context.Background()) }()

			snap := m.Snapshot()
			assert.Empty(t, snap.Collection)
			assert.Equal(t, domain.Selection{}, snap.Selection)
			assert.Equal(t, domain.PickTwoLabel, snap.CompareLabel)
			logger.AssertLogContains(t, logBuf, tt.wantLog)
			assert.Equal(t, tt.wantCount, failures(t, rec))
		})
	}
}

func failures(t *testing.T, rec *metrics.Recorder) float64 {
	t.Helper()
	samples, err := rec.Snapshot()
	require.NoError(t, err)
	var total float64
	for _, s := range samples {
		if s.Name == "gallery_persist_failures_total" {
			total += s.Value
		}
	}
	return total
}

func TestFirstAddFillsBothSlots(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	m := newTestManager(t, slot, Options{})

	snap := m.Snapshot()
	require.Empty(t, snap.Collection)
	require.Equal(t, domain.Selection{}, snap.Selection)

	snap = m.AddBatch(context.Background(), []string{"x"})
	require.Len(t, snap.Collection, 1)

	p := snap.Collection[0]
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "x", p.URI)
	assert.True(t, p.CreatedAt.Equal(testNow))
	assert.Equal(t, domain.Selection{LeftID: p.ID, RightID: p.ID}, snap.Selection)
	assert.Equal(t, []string{p.ID}, persisted(t, slot))
}

func TestAddBatchPrependsInOrder(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	seed(t, slot, "old")
	m := newTestManager(t, slot, Options{})

	snap := m.AddBatch(context.Background(), []string{"u1", "", "u2"})
	require.Len(t, snap.Collection, 3)
	assert.Equal(t, "u1", snap.Collection[0].URI)
	assert.Equal(t, "u2", snap.Collection[1].URI)
	assert.Equal(t, "old", snap.Collection[2].ID)

	// left was already set, so the selection is kept
	assert.Equal(t, domain.Selection{LeftID: "old", RightID: "old"}, snap.Selection)
	assert.Equal(t, 1, slot.Saves())
}

func TestAddBatchNothingUsableIsNoop(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	m := newTestManager(t, slot, Options{})

	snap := m.AddBatch(context.Background(), nil)
	assert.Empty(t, snap.Collection)
	snap = m.AddBatch(context.Background(), []string{"", ""})
	assert.Empty(t, snap.Collection)
	assert.Zero(t, slot.Saves())
}

type stubSource struct {
	uris  []string
	err   error
	limit int
}

func (s *stubSource) Pick(_ context.Context, limit int) ([]string, error) {
	s.limit = limit
	return s.uris, s.err
}

func TestAddFromSource(t *testing.T) {
	t.Parallel()

	t.Run("honours import limit", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t, memory.New(), Options{ImportLimit: 2})
		src := &stubSource{uris: []string{"a", "b", "c"}}

		snap := m.AddFromSource(context.Background(), src)
		assert.Equal(t, 2, src.limit)
		require.Len(t, snap.Collection, 2)
		assert.Equal(t, "a", snap.Collection[0].URI)
	})

	t.Run("default limit is four", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t, memory.New(), Options{})
		src := &stubSource{}
		m.AddFromSource(context.Background(), src)
		assert.Equal(t, 4, src.limit)
	})

	t.Run("cancelled pick changes nothing", func(t *testing.T) {
		t.Parallel()
		slot := memory.New()
		m := newTestManager(t, slot, Options{})
		snap := m.AddFromSource(context.Background(), &stubSource{err: context.Canceled})
		assert.Empty(t, snap.Collection)
		assert.Zero(t, slot.Saves())
	})
}

func TestReplaceBySwap(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	seed(t, slot, "a", "b", "c")
	m := newTestManager(t, slot, Options{})

	snap := m.ReplaceBySwap(context.Background(), 0, "c")
	assert.Equal(t, []string{"c", "b", "a"}, snap.Collection.IDs())
	assert.Equal(t, []string{"c", "b", "a"}, persisted(t, slot))
	// the selection follows ids, not positions
	assert.Equal(t, domain.Selection{LeftID: "a", RightID: "b"}, snap.Selection)
}

func TestReplaceBySwapNoops(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		index  int
		source string
	}{
		{name: "negative index", index: -1, source: "a"},
		{name: "index past end", index: 3, source: "a"},
		{name: "unknown id", index: 0, source: "zzz"},
		{name: "self swap", index: 1, source: "b"},
		{name: "empty id", index: 0, source: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			slot := memory.New()
			seed(t, slot, "a", "b", "c")
			m := newTestManager(t, slot, Options{})

			snap := m.ReplaceBySwap(context.Background(), tt.index, tt.source)
			assert.Equal(t, []string{"a", "b", "c"}, snap.Collection.IDs())
			assert.Zero(t, slot.Saves())
		})
	}
}

func TestSwapIsSelfInverse(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	seed(t, slot, "a", "b", "c", "d")
	m := newTestManager(t, slot, Options{})

	snap := m.ReplaceBySwap(context.Background(), 1, "d")
	require.Equal(t, []string{"a", "d", "c", "b"}, snap.Collection.IDs())

	snap = m.ReplaceBySwap(context.Background(), 1, "b")
	assert.Equal(t, []string{"a", "b", "c", "d"}, snap.Collection.IDs())
}

func TestRemove(t *testing.T) {
	t.Parallel()

	t.Run("removing left of two falls back to sole remaining", func(t *testing.T) {
		t.Parallel()
		slot := memory.New()
		seed(t, slot, "A", "B")
		m := newTestManager(t, slot, Options{})

		snap := m.Remove(context.Background(), "A")
		assert.Equal(t, []string{"B"}, snap.Collection.IDs())
		assert.Equal(t, domain.Selection{LeftID: "B", RightID: "B"}, snap.Selection)
		assert.Equal(t, []string{"B"}, persisted(t, slot))
	})

	t.Run("removing last photo clears selection", func(t *testing.T) {
		t.Parallel()
		slot := memory.New()
		seed(t, slot, "A")
		m := newTestManager(t, slot, Options{})

		snap := m.Remove(context.Background(), "A")
		assert.Empty(t, snap.Collection)
		assert.Equal(t, domain.Selection{}, snap.Selection)
		assert.Empty(t, persisted(t, slot))
	})

	t.Run("unknown id is a noop", func(t *testing.T) {
		t.Parallel()
		slot := memory.New()
		seed(t, slot, "A", "B")
		m := newTestManager(t, slot, Options{})

		snap := m.Remove(context.Background(), "nope")
		assert.Equal(t, []string{"A", "B"}, snap.Collection.IDs())
		assert.Zero(t, slot.Saves())
	})
}

func TestGridPicker(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	seed(t, slot, "a", "b", "c")
	m := newTestManager(t, slot, Options{})

	snap := m.OpenForGrid(2)
	require.True(t, snap.Picker.Open)
	assert.Equal(t, domain.PickerModeGridReplace, snap.Picker.Mode)
	assert.Equal(t, 2, snap.Picker.TargetIndex)
	assert.Equal(t, "c", snap.Picker.DisabledID)

	snap = m.Resolve(context.Background(), "a")
	assert.False(t, snap.Picker.Open)
	assert.Equal(t, []string{"c", "b", "a"}, snap.Collection.IDs())
	assert.Equal(t, 1, slot.Saves())
}

func TestGridPickerInvalidIndexStaysClosed(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	seed(t, slot, "a")
	m := newTestManager(t, slot, Options{})

	snap := m.OpenForGrid(5)
	assert.False(t, snap.Picker.Open)
	assert.Empty(t, snap.Picker.DisabledID)
}

func TestGridPickerTracksTargetAcrossEdits(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	seed(t, slot, "a", "b", "c")
	m := newTestManager(t, slot, Options{})

	m.OpenForGrid(1) // target "b"
	snap := m.Remove(context.Background(), "a")
	require.True(t, snap.Picker.Open)
	assert.Equal(t, 0, snap.Picker.TargetIndex)

	snap = m.Resolve(context.Background(), "c")
	assert.Equal(t, []string{"c", "b"}, snap.Collection.IDs())
}

func TestGridPickerStaleTargetIsNoop(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	seed(t, slot, "a", "b", "c")
	m := newTestManager(t, slot, Options{})

	m.OpenForGrid(1)
	m.Remove(context.Background(), "b")
	saves := slot.Saves()

	snap := m.Resolve(context.Background(), "a")
	assert.False(t, snap.Picker.Open)
	assert.Equal(t, []string{"a", "c"}, snap.Collection.IDs())
	assert.Equal(t, saves, slot.Saves())
}

func TestComparePicker(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	seed(t, slot, "a", "b", "c")
	rec := metrics.NewRecorder()
	m := newTestManager(t, slot, Options{Metrics: rec})

	snap := m.OpenForCompareSlot(domain.SideRight)
	require.True(t, snap.Picker.Open)
	assert.Equal(t, domain.PickerModeComparePick, snap.Picker.Mode)
	assert.Equal(t, -1, snap.Picker.TargetIndex)
	assert.Empty(t, snap.Picker.DisabledID)

	snap = m.Resolve(context.Background(), "c")
	assert.False(t, snap.Picker.Open)
	assert.Equal(t, domain.Selection{LeftID: "a", RightID: "c"}, snap.Selection)
	assert.Equal(t, "01 Jan 2024 - 03 Jan 2024", snap.CompareLabel)
	assert.Equal(t, []string{"a", "b", "c"}, snap.Collection.IDs())
	// selection is not persisted
	assert.Zero(t, slot.Saves())

	m.OpenForCompareSlot(domain.SideLeft)
	snap = m.Resolve(context.Background(), "gone")
	assert.Equal(t, domain.Selection{LeftID: "a", RightID: "c"}, snap.Selection)
}

func TestDismiss(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	seed(t, slot, "a", "b")
	m := newTestManager(t, slot, Options{})

	m.OpenForGrid(0)
	snap := m.Dismiss()
	assert.False(t, snap.Picker.Open)

	snap = m.Resolve(context.Background(), "b")
	assert.Equal(t, []string{"a", "b"}, snap.Collection.IDs())
}

type stubSharer struct {
	got string
	err error
}

func (s *stubSharer) Share(_ context.Context, message string) error {
	s.got = message
	return s.err
}

func TestShare(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	seed(t, slot, "a", "b")
	m := newTestManager(t, slot, Options{ShareBrand: "Roo"})

	sharer := &stubSharer{}
	msg := m.Share(context.Background(), sharer)
	assert.Equal(t, "Roo — 01 Jan 2024 - 02 Jan 2024", msg)
	assert.Equal(t, msg, sharer.got)

	m.Remove(context.Background(), "a")
	m.Remove(context.Background(), "b")
	assert.Equal(t, "Roo — Progress photos", m.ShareMessage())
}

func TestShareFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	log, logBuf := logger.NewTestLogger(t)
	m, err := New(context.Background(), memory.New(), Options{}, log)
	require.NoError(t, err)
	defer func() { _ = m.Close(context.Background()) }()

	msg := m.Share(context.Background(), &stubSharer{err: errors.New("no share sheet")})
	assert.Equal(t, domain.DefaultShareBrand+" — "+domain.ProgressLabel, msg)
	logger.AssertLogContains(t, logBuf, "share failed")
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	slot.FailSaves(errors.New("quota exceeded"))
	rec := metrics.NewRecorder()
	log, logBuf := logger.NewTestLogger(t)

	m, err := New(context.Background(), slot, Options{Metrics: rec}, log)
	require.NoError(t, err)
	defer func() { _ = m.Close(context.Background()) }()

	snap := m.AddBatch(context.Background(), []string{"x", "y"})
	assert.Len(t, snap.Collection, 2)
	assert.Equal(t, float64(1), failures(t, rec))
	logger.AssertLogContains(t, logBuf, "failed to persist collection")

	_, ok := slot.Payload(store.DefaultKey)
	assert.False(t, ok)
}

func TestCustomKey(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	m := newTestManager(t, slot, Options{Key: "other"})
	m.AddBatch(context.Background(), []string{"x"})

	_, ok := slot.Payload("other")
	assert.True(t, ok)
	_, ok = slot.Payload(store.DefaultKey)
	assert.False(t, ok)
}

func TestReloadRestoresCollection(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	m := newTestManager(t, slot, Options{})
	m.AddBatch(context.Background(), []string{"1", "2", "3"})
	before := m.ReplaceBySwap(context.Background(), 0, m.Snapshot().Collection[2].ID)

	again := newTestManager(t, slot, Options{})
	assert.Equal(t, before.Collection.IDs(), again.Snapshot().Collection.IDs())
}

func TestCloseTwice(t *testing.T) {
	t.Parallel()

	m, err := New(context.Background(), memory.New(), Options{}, nil)
	require.NoError(t, err)
	require.NoError(t, m.Close(context.Background()))

	err = m.Close(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSnapshotIsIsolated(t *testing.T) {
	t.Parallel()

	slot := memory.New()
	seed(t, slot, "a", "b")
	m := newTestManager(t, slot, Options{})

	snap := m.Snapshot()
	snap.Collection[0].ID = "mutated"
	assert.Equal(t, []string{"a", "b"}, m.Snapshot().Collection.IDs())
}

// TestRandomOperationsKeepInvariants drives the manager with random
// commands and checks after each one that ids stay unique, every set
// compare slot points at a live photo, and swaps never change the count.
func TestRandomOperationsKeepInvariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	slot := memory.New()
	m := newTestManager(t, slot, Options{})
	ctx := context.Background()

	randomID := func(c domain.Collection) string {
		if len(c) == 0 || rng.Intn(10) == 0 {
			return "missing"
		}
		return c[rng.Intn(len(c))].ID
	}

	for step := 0; step < 500; step++ {
		before := m.Snapshot()
		var snap Snapshot

		switch op := rng.Intn(6); op {
		case 0:
			n := rng.Intn(4)
			uris := make([]string, n)
			for i := range uris {
				uris[i] = "file:///img.jpg"
			}
			snap = m.AddBatch(ctx, uris)
		case 1:
			snap = m.Remove(ctx, randomID(before.Collection))
		case 2:
			snap = m.ReplaceBySwap(ctx, rng.Intn(len(before.Collection)+2)-1, randomID(before.Collection))
			assert.Len(t, snap.Collection, len(before.Collection), "swap changed count at step %d", step)
		case 3:
			m.OpenForGrid(rng.Intn(len(before.Collection) + 1))
			snap = m.Resolve(ctx, randomID(before.Collection))
			assert.Len(t, snap.Collection, len(before.Collection), "grid pick changed count at step %d", step)
		case 4:
			side := domain.SideLeft
			if rng.Intn(2) == 1 {
				side = domain.SideRight
			}
			m.OpenForCompareSlot(side)
			snap = m.Resolve(ctx, randomID(before.Collection))
		default:
			m.OpenForGrid(0)
			m.Remove(ctx, randomID(before.Collection))
			snap = m.Resolve(ctx, randomID(m.Snapshot().Collection))
		}

		seen := make(map[string]bool, len(snap.Collection))
		for _, p := range snap.Collection {
			require.False(t, seen[p.ID], "duplicate id %s at step %d", p.ID, step)
			seen[p.ID] = true
		}
		require.True(t, snap.Selection.Consistent(snap.Collection),
			"dangling selection %+v at step %d", snap.Selection, step)
		if len(snap.Collection) > 0 {
			require.NotEmpty(t, snap.Selection.LeftID, "left unset on non-empty collection at step %d", step)
		}
	}
}
