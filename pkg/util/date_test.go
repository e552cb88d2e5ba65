package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2026-08-27T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2026, 8, 27, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeInvalid(t *testing.T) {
	for _, s := range []string{"", "yesterday", "-5"} {
		if _, ok := ParseTime(s); ok {
			t.Fatalf("ParseTime(%q) ok, want false", s)
		}
	}
}

func TestStartOfDay(t *testing.T) {
	at := time.Date(2026, 8, 27, 15, 42, 9, 12, time.UTC)
	got := StartOfDay(at)
	want := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("StartOfDay = %v, want %v", got, want)
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("12", 5); got != 12 {
		t.Fatalf("got %d, want 12", got)
	}
	if got := ParseIntDefault("nope", 5); got != 5 {
		t.Fatalf("got %d, want default 5", got)
	}
}

func TestParseBoolDefault(t *testing.T) {
	if !ParseBoolDefault("true", false) {
		t.Fatal("expected true")
	}
	if ParseBoolDefault("", false) {
		t.Fatal("expected default false")
	}
}
