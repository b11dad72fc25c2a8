package core

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		raw     string
		key     string
		display string
	}{
		{"2024-01-05", "2024-01-05", "05-Jan-24"},
		{"'2024-3-1", "2024-03-01", "01-Mar-24"},
		{"5-1-2024", "2024-01-05", "05-Jan-24"},
		{"05/01/24", "2024-01-05", "05-Jan-24"},
		{"31-12-99", "2099-12-31", "31-Dec-99"},
		{"2024/7/9", "2024-07-09", "09-Jul-24"},
		{"31-Dec-99", "2099-12-31", "31-Dec-99"},
		{"15-Nov-75", "2075-11-15", "15-Nov-75"},
		{"15-Nov-1975", "1975-11-15", "15-Nov-75"},
	}
	for _, tc := range cases {
		d := NormalizeDate(tc.raw)
		if !d.Parsed() {
			t.Fatalf("%q did not parse", tc.raw)
		}
		if got := d.Key(); got != tc.key {
			t.Errorf("%q key: got %q want %q", tc.raw, got, tc.key)
		}
		if got := d.Display(); got != tc.display {
			t.Errorf("%q display: got %q want %q", tc.raw, got, tc.display)
		}
	}
}

func TestNormalizeDateTimestampUsesLocalDay(t *testing.T) {
	d := NormalizeDate("2024-01-05T10:30:00")
	if got := d.Key(); got != "2024-01-05" {
		t.Fatalf("key: got %q", got)
	}
	// A full UTC timestamp resolves to the local calendar day.
	ts := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	want := ts.Local().Format("2006-01-02")
	if got := NormalizeDate("2024-01-05T12:00:00Z").Key(); got != want {
		t.Fatalf("utc timestamp key: got %q want %q", got, want)
	}
}

func TestNormalizeDateFailure(t *testing.T) {
	for _, raw := range []string{"", "not a date", "1-2", "99-99-99"} {
		d := NormalizeDate(raw)
		if d.Parsed() {
			t.Errorf("%q unexpectedly parsed to %q", raw, d.Key())
		}
		if d.Key() != "" {
			t.Errorf("%q failed parse should have empty key", raw)
		}
	}
	// Display falls back to the raw string (escape quote already stripped).
	if got := NormalizeDate("'garbage").Display(); got != "garbage" {
		t.Errorf("fallback display: got %q", got)
	}
}

func TestNormalizeDateAmbiguity(t *testing.T) {
	if !NormalizeDate("3-4-2024").Ambiguous() {
		t.Error("3-4-2024 should be flagged ambiguous")
	}
	if NormalizeDate("25-4-2024").Ambiguous() {
		t.Error("25-4-2024 cannot be month-first, not ambiguous")
	}
	if NormalizeDate("2024-3-4").Ambiguous() {
		t.Error("year-first dates are never ambiguous")
	}
}

// Normalization is idempotent on the canonical key through a display round
// trip. The 69-99 year band matters: a generic 2-digit-year parse would
// pivot those to 19xx and shift the row by a century on re-ingest.
func TestNormalizeDateIdempotentKey(t *testing.T) {
	for _, raw := range []string{
		"'2024-3-1", "2024-01-05", "5-1-2024", "15-11-24",
		"31-12-99", "1-1-75", "15-11-69",
	} {
		key := NormalizeDate(raw).Key()
		again := NormalizeDate(NormalizeDate(raw).Display()).Key()
		if key != again {
			t.Errorf("%q: key %q not stable through display round trip (got %q)", raw, key, again)
		}
	}
}
