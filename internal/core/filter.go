package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Filter narrows a snapshot by free text and an optional inclusive date
// range. Zero time endpoints leave that side of the range open.
type Filter struct {
	Query        string
	From, To     time.Time
	WithCategory bool
}

// HasRange reports whether a date range is active.
func (f Filter) HasRange() bool {
	return !f.From.IsZero() || !f.To.IsZero()
}

// Apply returns the transactions passing the filter, preserving snapshot
// order. A transaction passes iff it is inside the date range (or no range is
// set) and either no query is set or the name, the category (when shown), or
// the display-formatted date contains the query case-insensitively. Searching
// the display form lets "Jan" or "24" match what the user sees rather than
// the canonical key.
func (f Filter) Apply(txns []Transaction) []Transaction {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if f.HasRange() && !f.inRange(t) {
			continue
		}
		if query != "" && !f.matchesText(t, query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Total is the aggregate of the filtered set, for display next to the view.
func (f Filter) Total(txns []Transaction) decimal.Decimal {
	return Total(f.Apply(txns))
}

func (f Filter) inRange(t Transaction) bool {
	d := NormalizeDate(t.Date)
	if !d.Parsed() {
		// Unparseable dates cannot be placed in a range.
		return false
	}
	key := d.Key()
	if !f.From.IsZero() && key < DayKey(f.From) {
		return false
	}
	if !f.To.IsZero() && key > DayKey(f.To) {
		return false
	}
	return true
}

func (f Filter) matchesText(t Transaction, query string) bool {
	if strings.Contains(strings.ToLower(t.Name), query) {
		return true
	}
	if f.WithCategory && strings.Contains(strings.ToLower(t.Category), query) {
		return true
	}
	return strings.Contains(strings.ToLower(t.DisplayDate()), query)
}
