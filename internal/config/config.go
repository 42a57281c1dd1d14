package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Log     LogConfig     `mapstructure:"log" validate:"required"`
	Store   StoreConfig   `mapstructure:"store" validate:"required"`
	Gallery GalleryConfig `mapstructure:"gallery" validate:"required"`
}

// LogConfig contains structured logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// StoreConfig selects the persistence backend for the gallery slot and
// carries the settings of every backend. Only the selected backend's
// settings are checked.
type StoreConfig struct {
	Driver   string         `mapstructure:"driver" validate:"required,oneof=memory file sqlite postgres redis s3"`
	Key      string         `mapstructure:"key" validate:"required"`
	Timeout  time.Duration  `mapstructure:"timeout" validate:"gt=0"`
	File     FileConfig     `mapstructure:"file"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	S3       S3Config       `mapstructure:"s3"`
}

// FileConfig configures the JSON file slot.
type FileConfig struct {
	Dir string `mapstructure:"dir"`
}

// SQLiteConfig configures the SQLite slot.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig configures the PostgreSQL slot.
type PostgresConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// RedisConfig configures the Redis slot.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// S3Config configures the S3 (or MinIO) slot.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint" validate:"omitempty,url"`
	Prefix    string `mapstructure:"prefix"`
	PathStyle bool   `mapstructure:"path_style"`
}

// GalleryConfig contains behaviour settings of the gallery manager.
type GalleryConfig struct {
	// ImportLimit caps how many images one request to the photo source may return.
	ImportLimit int `mapstructure:"import_limit" validate:"gt=0,lte=50"`
	// ShareBrand prefixes the shared text payload.
	ShareBrand string `mapstructure:"share_brand" validate:"required"`
	// AsyncPersist moves slot writes onto a single background writer.
	AsyncPersist bool `mapstructure:"async_persist"`
	// Timezone is used for date labels; empty means UTC.
	Timezone string `mapstructure:"timezone" validate:"omitempty,timezone"`
}

// Location resolves Timezone, falling back to UTC.
func (g GalleryConfig) Location() *time.Location {
	if g.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
