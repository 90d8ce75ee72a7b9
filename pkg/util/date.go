package util

import (
	"strconv"
	"time"
)

// ParseInstant tries RFC3339, RFC3339Nano and unix seconds. The result is in
// UTC. Returns (t, true) if any worked.
func ParseInstant(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// ParseInstantDefault parses s or returns def if empty. Invalid input is
// reported so callers can reject it instead of silently using def.
func ParseInstantDefault(s string, def time.Time) (time.Time, bool) {
	if s == "" {
		return def, true
	}
	return ParseInstant(s)
}
