// Package config handles configuration loading, parsing, and validation
// from environment variables (GALLERY_ prefix) and an optional config file.
// It provides type-safe access to the logging, store, and gallery settings
// while keeping configuration details separate from the gallery logic.
package config
