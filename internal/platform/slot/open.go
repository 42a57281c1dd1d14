// Package slot selects and opens the store.PhotoSlot backend named in
// configuration.
package slot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/progress-gallery/internal/config"
	"github.com/phrazzld/progress-gallery/internal/platform/file"
	"github.com/phrazzld/progress-gallery/internal/platform/memory"
	"github.com/phrazzld/progress-gallery/internal/platform/postgres"
	"github.com/phrazzld/progress-gallery/internal/platform/redis"
	"github.com/phrazzld/progress-gallery/internal/platform/s3"
	"github.com/phrazzld/progress-gallery/internal/platform/sqlite"
	"github.com/phrazzld/progress-gallery/internal/redact"
	"github.com/phrazzld/progress-gallery/internal/store"
)

// Open returns the backend for cfg.Driver. Network backends are dialled and
// checked before returning. For postgres, pending migrations are applied.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (store.PhotoSlot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	logger.Debug("opening store slot", "driver", cfg.Driver, "key", cfg.Key)

	switch cfg.Driver {
	case "memory":
		return memory.New(), nil
	case "file":
		s, err := file.New(cfg.File.Dir, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.SQLite.Path, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, db, err := postgres.Open(ctx, cfg.Postgres.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("postgres at %s: %s", redact.URL(cfg.Postgres.URL), redact.Error(err))
		}
		if err := postgres.Migrate(ctx, db, "up", logger); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case "redis":
		s, err := redis.Open(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("redis at %s: %s", cfg.Redis.Addr, redact.Error(err))
		}
		return s, nil
	case "s3":
		s, err := s3.New(ctx, s3.Config{
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("s3 bucket %s: %s", cfg.S3.Bucket, redact.Error(err))
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// OpenPostgresDB opens only the database handle, for running migrations by hand.
func OpenPostgresDB(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (store.PhotoSlot, *sql.DB, error) {
	if cfg.Driver != "postgres" {
		return nil, nil, fmt.Errorf("migrations need the postgres driver, got %q", cfg.Driver)
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	s, db, err := postgres.Open(ctx, cfg.Postgres.URL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres at %s: %s", redact.URL(cfg.Postgres.URL), redact.Error(err))
	}
	return s, db, nil
}
