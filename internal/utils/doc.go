// Package utils provides shared low-level helpers: the JSON POST round-trip
// used by completion providers ([DoPostSync]), pointer construction ([Ptr])
// and log-safe string truncation ([TruncateString]).
package utils
