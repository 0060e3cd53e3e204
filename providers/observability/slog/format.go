package slog

import (
	"os"
	"strings"
)

// Format is the log output format.
type Format string

const (
	// FormatText is slog's key=value text format.
	FormatText Format = "text"
	// FormatJSON is one JSON object per line, for log aggregation.
	FormatJSON Format = "json"
	// FormatCompact is one line per record with the attributes as a JSON
	// object, colored on a terminal.
	// Example: 2026-03-01 10:40:35  INFO extraction succeeded → {"attempt":1}
	FormatCompact Format = "compact"
)

// ParseFormat parses a format name. Unknown names yield FormatText.
func ParseFormat(s string) Format {
	switch Format(strings.TrimSpace(strings.ToLower(s))) {
	case FormatJSON:
		return FormatJSON
	case FormatCompact:
		return FormatCompact
	default:
		return FormatText
	}
}

// GetFormatFromEnv reads INTAKE_LOG_FORMAT, then LOG_FORMAT, defaulting to
// FormatText.
func GetFormatFromEnv() Format {
	if format := os.Getenv("INTAKE_LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	return FormatText
}
