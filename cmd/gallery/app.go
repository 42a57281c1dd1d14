package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/progress-gallery/internal/config"
	"github.com/phrazzld/progress-gallery/internal/platform/logger"
	"github.com/phrazzld/progress-gallery/internal/platform/metrics"
	"github.com/phrazzld/progress-gallery/internal/platform/slot"
	"github.com/phrazzld/progress-gallery/internal/service/gallery"
	"github.com/phrazzld/progress-gallery/internal/store"
)

// app bundles everything a command needs. It is built per invocation and
// torn down with close.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	slot    store.PhotoSlot
	metrics *metrics.Recorder
	manager *gallery.Manager
}

// initializeApp loads configuration, sets up logging, opens the configured
// slot, and loads the gallery from it.
func initializeApp(ctx context.Context, configPath string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.SetupWithWriter(cfg.Log, logOut)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Debug("configuration loaded",
		"driver", cfg.Store.Driver,
		"key", cfg.Store.Key,
		"log_level", cfg.Log.Level)

	s, err := slot.Open(ctx, cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	rec := metrics.NewRecorder()
	m, err := gallery.New(ctx, s, gallery.Options{
		Key:          cfg.Store.Key,
		ImportLimit:  cfg.Gallery.ImportLimit,
		ShareBrand:   cfg.Gallery.ShareBrand,
		Location:     cfg.Gallery.Location(),
		AsyncPersist: cfg.Gallery.AsyncPersist,
		SaveTimeout:  cfg.Store.Timeout,
		Metrics:      rec,
	}, log)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to create gallery: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  log,
		slot:    s,
		metrics: rec,
		manager: m,
	}, nil
}

// close flushes pending saves and releases the slot.
func (a *app) close(ctx context.Context) error {
	flushErr := a.manager.Close(ctx)
	if err := a.slot.Close(); err != nil {
		a.logger.Warn("failed to close store", "error", err)
	}
	return flushErr
}
