// Package redis provides a store.PhotoSlot backed by a Redis string key.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/go-redis/redis/v8"
	"github.com/phrazzld/progress-gallery/internal/platform/logger"
	"github.com/phrazzld/progress-gallery/internal/store"
)

const backendName = "redis"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Slot stores each key's payload with a plain SET/GET.
type Slot struct {
	client goredis.UniversalClient
	logger *slog.Logger
}

var _ store.PhotoSlot = (*Slot)(nil)

// Open connects to Redis and verifies the connection with PING.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Slot, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}
	return NewSlot(client, logger), nil
}

// NewSlot wraps an existing client. Close closes the client.
func NewSlot(client goredis.UniversalClient, logger *slog.Logger) *Slot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slot{
		client: client,
		logger: logger.With(slog.String("component", "redis_slot")),
	}
}

// Load returns the payload for key or store.ErrSlotNotFound.
func (s *Slot) Load(ctx context.Context, key string) ([]byte, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrSlotNotFound
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load slot",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return nil, store.NewSlotError(backendName, "load", "GET failed", err)
	}
	return payload, nil
}

// Save overwrites the payload for key without expiry.
func (s *Slot) Save(ctx context.Context, key string, payload []byte) error {
	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save slot",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return store.NewSlotError(backendName, "save", "SET failed", err)
	}
	return nil
}

// Close closes the client.
func (s *Slot) Close() error {
	return s.client.Close()
}
