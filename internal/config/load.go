package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load,
// e.g. GALLERY_STORE_DRIVER.
const EnvPrefix = "GALLERY"

// ErrValidation is wrapped by every error returned for an invalid configuration.
var ErrValidation = errors.New("config validation failed")

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from the config file.
// An empty path means no config file is read.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(path string) (*Config, error) {
	v := viper.New()

	// 1. Defaults. Every key needs one so AutomaticEnv can see it on Unmarshal.
	setDefaults(v)

	// 2. Optional config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// 3. Environment variables with GALLERY_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Unmarshal
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the settings the selected store driver needs.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var missing string
	switch cfg.Store.Driver {
	case "file":
		if cfg.Store.File.Dir == "" {
			missing = "store.file.dir"
		}
	case "sqlite":
		if cfg.Store.SQLite.Path == "" {
			missing = "store.sqlite.path"
		}
	case "postgres":
		if cfg.Store.Postgres.URL == "" {
			missing = "store.postgres.url"
		}
	case "redis":
		if cfg.Store.Redis.Addr == "" {
			missing = "store.redis.addr"
		}
	case "s3":
		if cfg.Store.S3.Bucket == "" {
			missing = "store.s3.bucket"
		}
	}
	if missing != "" {
		return fmt.Errorf("%w: %s is required for store driver %q", ErrValidation, missing, cfg.Store.Driver)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("store.driver", "file")
	v.SetDefault("store.key", "br:gallery")
	v.SetDefault("store.timeout", 5*time.Second)
	v.SetDefault("store.file.dir", ".gallery")
	v.SetDefault("store.sqlite.path", "gallery.db")
	v.SetDefault("store.postgres.url", "")
	v.SetDefault("store.redis.addr", "")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.s3.bucket", "")
	v.SetDefault("store.s3.region", "us-east-1")
	v.SetDefault("store.s3.endpoint", "")
	v.SetDefault("store.s3.prefix", "")
	v.SetDefault("store.s3.path_style", false)

	v.SetDefault("gallery.import_limit", 4)
	v.SetDefault("gallery.share_brand", "Boost Roo")
	v.SetDefault("gallery.async_persist", false)
	v.SetDefault("gallery.timezone", "")
}
