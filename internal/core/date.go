package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// monthsShort is the fixed display abbreviation table, independent of locale.
var monthsShort = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Date is the result of normalizing one of the gateway's heterogeneous date
// encodings. A failed parse keeps the raw string so callers can still show
// something instead of erroring on a single malformed row.
type Date struct {
	year, month, day int
	parsed           bool
	ambiguous        bool
	raw              string
}

// timestampLayouts cover the date-time encodings the gateway has been seen to
// return for rows written by the spreadsheet itself.
var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// fallbackLayouts is the last-resort generic parse before giving up. The
// DD-Mon-YY display form is not here: time.Parse pivots 2-digit years 69-99
// to 19xx, while every 2-digit year in this system means 20xx. fromMonthParts
// handles that form with the same +2000 expansion as fromParts.
var fallbackLayouts = []string{
	"2006-01-02",
	"Jan 2, 2006",
	"2 Jan 2006",
	"01/02/2006 15:04:05",
}

// NormalizeDate parses a raw gateway date into its canonical calendar date.
//
// Rules, in order: strip a single leading escape quote (the write path
// prefixes dates with ' to defeat the spreadsheet's auto-formatting); a
// string with a T separator is a timestamp whose local year/month/day is
// taken (not UTC, to avoid off-by-one days away from UTC); otherwise split on
// - or /, reading YYYY-M-D when the first segment has four digits and D-M-Y
// day-first otherwise, with 2-digit years expanded by adding 2000. Day-first
// inputs where both leading segments are <= 12 are genuinely ambiguous and
// flagged as such.
func NormalizeDate(raw string) Date {
	clean := strings.TrimPrefix(raw, "'")
	d := Date{raw: clean}
	if strings.TrimSpace(clean) == "" {
		return d
	}

	if strings.Contains(clean, "T") {
		// Zoneless timestamps are read in local time; zoned ones are
		// converted, so the calendar day is always the user's.
		for _, layout := range timestampLayouts {
			if t, err := time.ParseInLocation(layout, clean, time.Local); err == nil {
				return dateFromTime(t.Local(), clean)
			}
		}
		// A date followed by junk after T still yields its date part.
		if t, err := time.Parse("2006-01-02", strings.SplitN(clean, "T", 2)[0]); err == nil {
			return dateFromTime(t, clean)
		}
	} else if parts := splitDate(clean); len(parts) == 3 {
		if nd, ok := fromParts(parts, clean); ok {
			return nd
		}
		if nd, ok := fromMonthParts(parts, clean); ok {
			return nd
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return dateFromTime(t, clean)
		}
	}
	return d
}

func splitDate(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' })
}

func fromParts(parts []string, raw string) (Date, bool) {
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Date{}, false
		}
		nums[i] = n
	}

	var year, month, day int
	ambiguous := false
	if len(strings.TrimSpace(parts[0])) == 4 {
		year, month, day = nums[0], nums[1], nums[2]
	} else {
		// Fixed day-first heuristic.
		day, month, year = nums[0], nums[1], nums[2]
		if year < 100 {
			year += 2000
		}
		ambiguous = nums[0] <= 12 && nums[1] <= 12
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, false
	}
	return Date{year: year, month: month, day: day, parsed: true, ambiguous: ambiguous, raw: raw}, true
}

// fromMonthParts reads the DD-Mon-YY display form (and its 4-digit-year
// variant) so re-ingesting a displayed date lands on the same calendar day.
func fromMonthParts(parts []string, raw string) (Date, bool) {
	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || day < 1 || day > 31 {
		return Date{}, false
	}
	month := monthNumber(parts[1])
	if month == 0 {
		return Date{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return Date{}, false
	}
	if year < 100 {
		year += 2000
	}
	return Date{year: year, month: month, day: day, parsed: true, raw: raw}, true
}

func monthNumber(s string) int {
	s = strings.TrimSpace(s)
	for i, m := range monthsShort {
		if strings.EqualFold(m, s) {
			return i + 1
		}
	}
	return 0
}

func dateFromTime(t time.Time, raw string) Date {
	return Date{year: t.Year(), month: int(t.Month()), day: t.Day(), parsed: true, raw: raw}
}

// Parsed reports whether normalization succeeded.
func (d Date) Parsed() bool { return d.parsed }

// Ambiguous reports whether the day-first reading was a coin toss (both
// leading segments <= 12). Flagged for review, not rejected.
func (d Date) Ambiguous() bool { return d.ambiguous }

// Key returns the canonical YYYY-MM-DD grouping key, or "" on parse failure.
func (d Date) Key() string {
	if !d.parsed {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

// Display returns the fixed DD-Mon-YY form, or the raw string unmodified when
// the date never parsed.
func (d Date) Display() string {
	if !d.parsed {
		return d.raw
	}
	return fmt.Sprintf("%02d-%s-%02d", d.day, monthsShort[d.month-1], d.year%100)
}

// DayKey returns now's local calendar key, the reference for "today" totals.
func DayKey(now time.Time) string {
	return now.Format("2006-01-02")
}

// DisplayKey formats a canonical YYYY-MM-DD key for display without a second
// normalization round trip.
func DisplayKey(key string) string {
	return NormalizeDate(key).Display()
}
