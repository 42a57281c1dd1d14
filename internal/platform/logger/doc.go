// Package logger wires log/slog for the gallery: level and format from
// configuration, a process-wide default, and a logger carried in a
// context.Context for per-operation fields.
package logger
