package gallery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/progress-gallery/internal/platform/metrics"
	"github.com/phrazzld/progress-gallery/internal/redact"
	"github.com/phrazzld/progress-gallery/internal/store"
)

// persister writes encoded collections to the slot. Failures are logged and
// counted, never returned.
type persister interface {
	persist(ctx context.Context, op string, payload []byte)
	close(ctx context.Context) error
}

// syncPersister saves inline, bounded by a timeout.
type syncPersister struct {
	slot    store.PhotoSlot
	key     string
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func (p *syncPersister) persist(ctx context.Context, op string, payload []byte) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	save(ctx, p.slot, p.key, op, payload, p.logger, p.metrics)
}

func (p *syncPersister) close(context.Context) error { return nil }

// saveJob is one pending write.
type saveJob struct {
	op      string
	payload []byte
}

// writeBehind hands saves to a single background writer. The queue holds at
// most one job: a newer snapshot replaces one that has not been picked up
// yet, so the slot always ends with the latest collection and saves never
// overtake each other.
type writeBehind struct {
	slot    store.PhotoSlot
	key     string
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Recorder

	mu      sync.Mutex
	closed  bool
	pending chan saveJob
	done    chan struct{}
}

func newWriteBehind(slot store.PhotoSlot, key string, timeout time.Duration, logger *slog.Logger, m *metrics.Recorder) *writeBehind {
	w := &writeBehind{
		slot:    slot,
		key:     key,
		timeout: timeout,
		logger:  logger,
		metrics: m,
		pending: make(chan saveJob, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *writeBehind) run() {
	defer close(w.done)
	for job := range w.pending {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		save(ctx, w.slot, w.key, job.op, job.payload, w.logger, w.metrics)
		cancel()
	}
}

func (w *writeBehind) persist(_ context.Context, op string, payload []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.logger.Warn("save after close dropped", "op", op)
		return
	}

	// Only senders hold mu, so after draining there is room for one job.
	select {
	case stale := <-w.pending:
		w.logger.Debug("superseded pending save", "op", stale.op, "by", op)
	default:
	}
	w.pending <- saveJob{op: op, payload: payload}
}

// close stops accepting saves and waits for the last one to finish.
func (w *writeBehind) close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.pending)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func save(ctx context.Context, slot store.PhotoSlot, key, op string, payload []byte, logger *slog.Logger, m *metrics.Recorder) {
	start := time.Now()
	if err := slot.Save(ctx, key, payload); err != nil {
		m.PersistFailure("save")
		logger.Warn("failed to persist collection, keeping in-memory state",
			"op", op,
			"key", key,
			"error", redact.Error(err))
		return
	}
	logger.Debug("collection persisted",
		"op", op,
		"key", key,
		"bytes", len(payload),
		"duration_ms", time.Since(start).Milliseconds())
}
