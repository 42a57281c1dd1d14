package gallery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/progress-gallery/internal/domain"
	"github.com/phrazzld/progress-gallery/internal/platform/logger"
	"github.com/phrazzld/progress-gallery/internal/platform/metrics"
	"github.com/phrazzld/progress-gallery/internal/redact"
	"github.com/phrazzld/progress-gallery/internal/store"
)

// PhotoSource is the external "pick from library" capability. It returns
// zero or more opaque image URIs, at most limit of them. An empty result or
// an error both mean nothing was picked.
type PhotoSource interface {
	Pick(ctx context.Context, limit int) ([]string, error)
}

// Sharer is the external share capability for a text payload.
type Sharer interface {
	Share(ctx context.Context, message string) error
}

// Options tunes a Manager. Zero values fall back to defaults.
type Options struct {
	// Key is the slot key; defaults to store.DefaultKey.
	Key string
	// ImportLimit caps one AddFromSource request; defaults to 4.
	ImportLimit int
	// ShareBrand prefixes share messages; defaults to domain.DefaultShareBrand.
	ShareBrand string
	// Location is used for date labels; defaults to UTC.
	Location *time.Location
	// AsyncPersist moves saves to a single background writer.
	AsyncPersist bool
	// SaveTimeout bounds each load and save; defaults to 5s.
	SaveTimeout time.Duration
	// Now is the clock used for createdAt; defaults to time.Now.
	Now func() time.Time
	// Metrics receives counters; nil disables them.
	Metrics *metrics.Recorder
}

const (
	defaultImportLimit = 4
	defaultSaveTimeout = 5 * time.Second
)

func (o Options) withDefaults() Options {
	if o.Key == "" {
		o.Key = store.DefaultKey
	}
	if o.ImportLimit <= 0 {
		o.ImportLimit = defaultImportLimit
	}
	if o.ShareBrand == "" {
		o.ShareBrand = domain.DefaultShareBrand
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.SaveTimeout <= 0 {
		o.SaveTimeout = defaultSaveTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Manager owns one gallery screen's collection, comparison selection, and
// chooser session. All state changes go through its methods; each returns
// the resulting Snapshot. Commands never fail: stale ids and indices are
// silent no-ops and persistence is best effort.
type Manager struct {
	mu         sync.Mutex
	opts       Options
	persister  persister
	logger     *slog.Logger
	closed     bool
	collection domain.Collection
	selection  domain.Selection
	picker     domain.PickerSession
}

// New creates a Manager and loads the persisted collection from slot once.
// A missing, unreadable, or corrupt payload starts an empty gallery.
// If logger is nil, a default logger will be used.
func New(ctx context.Context, slot store.PhotoSlot, opts Options, log *slog.Logger) (*Manager, error) {
	if slot == nil {
		return nil, &ManagerError{
			Operation: "create_manager",
			Message:   "slot cannot be nil",
			Err:       ErrNilSlot,
		}
	}

	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "gallery_manager")
	opts = opts.withDefaults()

	m := &Manager{
		opts:   opts,
		logger: log,
	}

	if opts.AsyncPersist {
		m.persister = newWriteBehind(slot, opts.Key, opts.SaveTimeout, log, opts.Metrics)
	} else {
		m.persister = &syncPersister{
			slot:    slot,
			key:     opts.Key,
			timeout: opts.SaveTimeout,
			logger:  log,
			metrics: opts.Metrics,
		}
	}

	m.collection = m.load(ctx, slot)
	m.selection = domain.DefaultSelection(m.collection)
	opts.Metrics.Photos(len(m.collection))

	log.Info("gallery loaded",
		"key", opts.Key,
		"photos", len(m.collection),
		"async_persist", opts.AsyncPersist)
	return m, nil
}

func (m *Manager) load(ctx context.Context, slot store.PhotoSlot) domain.Collection {
	ctx, cancel := context.WithTimeout(ctx, m.opts.SaveTimeout)
	defer cancel()

	payload, err := slot.Load(ctx, m.opts.Key)
	if err != nil {
		if store.IsNotFoundError(err) {
			m.logger.Debug("no persisted gallery, starting empty", "key", m.opts.Key)
		} else {
			m.opts.Metrics.PersistFailure("load")
			m.logger.Warn("failed to load gallery, starting empty", "key", m.opts.Key, "error", redact.Error(err))
		}
		return domain.Collection{}
	}

	c, err := store.DecodeCollection(payload)
	if err != nil {
		m.opts.Metrics.PersistFailure("decode")
		m.logger.Warn("persisted gallery is corrupt, starting empty", "key", m.opts.Key, "error", err)
		return domain.Collection{}
	}
	return c
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	c := m.collection.Clone()
	pair := domain.Derive(c, m.selection)
	return Snapshot{
		Collection:   c,
		Selection:    m.selection,
		Compare:      pair,
		CompareLabel: domain.CompareLabel(pair, m.opts.Location),
		Picker: PickerView{
			PickerSession: m.picker,
			TargetIndex:   m.picker.TargetIndex(c),
			DisabledID:    m.picker.DisabledID(c),
		},
	}
}

// AddBatch creates one photo per URI, prepends them as a batch in the given
// order, and persists. Empty URIs are skipped; if nothing remains the call
// changes nothing. When the left compare slot was unset, the selection is
// initialised from the new first photos.
func (m *Manager) AddBatch(ctx context.Context, uris []string) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	log := logger.FromContextOrDefault(ctx, m.logger)

	now := m.opts.Now()
	batch := make([]domain.Photo, 0, len(uris))
	for _, uri := range uris {
		p, err := domain.NewPhoto(uri, now)
		if err != nil {
			log.Debug("skipping image handle", "error", err)
			continue
		}
		batch = append(batch, *p)
	}
	if len(batch) == 0 {
		return m.snapshotLocked()
	}

	m.collection = m.collection.Prepend(batch)
	m.selection = domain.InitOnAdd(m.selection, m.collection)
	m.commitLocked(ctx, "add")

	log.Debug("photos added", "count", len(batch), "photos", len(m.collection))
	return m.snapshotLocked()
}

// AddFromSource asks src for up to ImportLimit images and adds them as one
// batch. A cancelled or failed pick is treated as nothing happening.
func (m *Manager) AddFromSource(ctx context.Context, src PhotoSource) Snapshot {
	uris, err := src.Pick(ctx, m.opts.ImportLimit)
	if err != nil {
		logger.FromContextOrDefault(ctx, m.logger).Warn("photo source failed, nothing added", "error", err)
		return m.Snapshot()
	}
	if len(uris) > m.opts.ImportLimit {
		uris = uris[:m.opts.ImportLimit]
	}
	return m.AddBatch(ctx, uris)
}

// ReplaceBySwap exchanges the photo at targetIndex with the photo whose id
// is sourceID. The count never changes; an out-of-range index, an unknown
// id, or a self-swap is a no-op.
func (m *Manager) ReplaceBySwap(ctx context.Context, targetIndex int, sourceID string) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, swapped := m.collection.Swap(targetIndex, sourceID)
	if !swapped {
		logger.FromContextOrDefault(ctx, m.logger).Debug("swap ignored",
			"target_index", targetIndex,
			"source_id", sourceID)
		return m.snapshotLocked()
	}
	m.collection = next
	m.commitLocked(ctx, "swap")
	return m.snapshotLocked()
}

// Remove deletes the photo with id, repairs any compare slot that pointed at
// it, and persists. An unknown id is a no-op.
func (m *Manager) Remove(ctx context.Context, id string) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, removed := m.collection.Remove(id)
	if !removed {
		logger.FromContextOrDefault(ctx, m.logger).Debug("remove ignored", "photo_id", id)
		return m.snapshotLocked()
	}
	m.collection = next
	m.selection = domain.RepairOnRemoval(id, next, m.selection)
	m.commitLocked(ctx, "remove")
	return m.snapshotLocked()
}

// OpenForGrid opens the chooser to replace the tile at index. An invalid
// index leaves the chooser closed.
func (m *Manager) OpenForGrid(index int) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.picker = domain.OpenForGrid(m.collection, index)
	return m.snapshotLocked()
}

// OpenForCompareSlot opens the chooser to fill one compare side.
func (m *Manager) OpenForCompareSlot(side domain.Side) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.picker = domain.OpenForCompareSlot(side)
	return m.snapshotLocked()
}

// Resolve routes chosenID to the open chooser's target and closes it.
// Resolving with the target's own photo, a photo that is gone, or with no
// chooser open changes nothing except closing the chooser.
func (m *Manager) Resolve(ctx context.Context, chosenID string) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.picker
	m.picker = domain.PickerSession{}

	res := session.Resolve(m.collection, m.selection, chosenID)
	if res.Selection != m.selection {
		m.selection = res.Selection
		m.opts.Metrics.Mutation("compare")
	}
	if res.Swapped {
		m.collection = res.Collection
		m.commitLocked(ctx, "swap")
	}

	logger.FromContextOrDefault(ctx, m.logger).Debug("picker resolved",
		"mode", session.Mode,
		"chosen_id", chosenID,
		"swapped", res.Swapped)
	return m.snapshotLocked()
}

// Dismiss closes the chooser without changing anything.
func (m *Manager) Dismiss() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.picker = domain.PickerSession{}
	return m.snapshotLocked()
}

// ShareMessage builds the text that Share would send.
func (m *Manager) ShareMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	pair := domain.Derive(m.collection, m.selection)
	return domain.ShareMessage(m.opts.ShareBrand, pair, m.opts.Location)
}

// Share sends the compare summary through sharer. Failures are logged and
// otherwise ignored. The message is returned either way.
func (m *Manager) Share(ctx context.Context, sharer Sharer) string {
	msg := m.ShareMessage()
	if err := sharer.Share(ctx, msg); err != nil {
		logger.FromContextOrDefault(ctx, m.logger).Warn("share failed", "error", err)
	}
	return msg
}

// Close flushes any pending write-behind save. The slot itself belongs to
// the caller and stays open. The manager must not be used afterwards.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return &ManagerError{Operation: "close", Message: "already closed", Err: ErrClosed}
	}
	m.closed = true
	m.mu.Unlock()

	if err := m.persister.close(ctx); err != nil {
		return &ManagerError{Operation: "close", Message: "pending save not flushed", Err: err}
	}
	return nil
}

// commitLocked records and persists a collection change.
func (m *Manager) commitLocked(ctx context.Context, op string) {
	m.opts.Metrics.Mutation(op)
	m.opts.Metrics.Photos(len(m.collection))

	payload, err := store.EncodeCollection(m.collection)
	if err != nil {
		m.opts.Metrics.PersistFailure("encode")
		m.logger.Error("failed to encode collection", "op", op, "error", err)
		return
	}
	m.persister.persist(ctx, op, payload)
}
