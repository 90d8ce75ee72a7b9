package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseInstantRFC3339(t *testing.T) {
	got, ok := ParseInstant("2024-10-10T17:10:10+07:00")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Format(time.RFC3339) != "2024-10-10T10:10:10Z" {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseInstantUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseInstant(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts || got.Location() != time.UTC {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseInstantRejects(t *testing.T) {
	for _, s := range []string{"", "yesterday", "-5", "2024-10-10"} {
		if _, ok := ParseInstant(s); ok {
			t.Errorf("ParseInstant(%q) should fail", s)
		}
	}
}

func TestParseInstantDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got, ok := ParseInstantDefault("", def)
	if !ok || !got.Equal(def) {
		t.Fatalf("expected default")
	}
	if _, ok := ParseInstantDefault("soon", def); ok {
		t.Fatalf("invalid input must not fall back to default")
	}
}
