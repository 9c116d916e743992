package utils

import (
	"fmt"
	"time"
)

// VersionTimestampLayout is the fixed-width UTC layout of version timestamps.
// Fixed width keeps lexical order equal to time order in range keys.
const VersionTimestampLayout = "2006-01-02T15:04:05.000000000Z"

// FormatVersionTimestamp formats t in VersionTimestampLayout
func FormatVersionTimestamp(t time.Time) string {
	return t.UTC().Format(VersionTimestampLayout)
}

// ParseVersionTimestamp parses a stored timestamp. Timestamps written by other
// systems in any RFC3339 form are accepted as well.
func ParseVersionTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(VersionTimestampLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// FormatRFC3339 formats t as RFC3339 with nanoseconds in UTC
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
