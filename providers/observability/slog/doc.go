// Package slog builds the process logger from configuration and environment.
//
// The level comes from INTAKE_LOG_LEVEL, then LOG_LEVEL; the format from
// INTAKE_LOG_FORMAT, then LOG_FORMAT. Explicit configuration passed to
// [NewLogger] wins over both.
package slog
