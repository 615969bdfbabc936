// Package pagination implements the timestamp cursors used by message and
// conversation listings. A cursor is the RFC 3339 created_at of the oldest
// record the client has already seen; pages scan strictly older than it.
package pagination

import (
	"time"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// ParseCursor parses a cursor query value. An empty cursor means "first
// page" and is reported as the zero time.
func ParseCursor(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, raw)
}

// FormatCursor renders a created_at timestamp as the next page's cursor.
func FormatCursor(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ClampLimit normalizes a client-supplied page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
