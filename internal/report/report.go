// Package report renders filtered transaction views into downloadable
// CSV, PDF and XLSX documents.
package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"badhige/internal/core"
)

// View is the filtered slice of a ledger that exports operate on.
// Rows keep snapshot order; renderers reverse them so the most recent
// entry comes first, matching the on-screen table.
type View struct {
	Title        string
	NameLabel    string
	WithCategory bool
	Rows         []core.Transaction
	PeriodFrom   string
	PeriodTo     string
}

// NewView applies f to a snapshot and captures the active date range,
// if any, in display form.
func NewView(title, nameLabel string, withCategory bool, txns []core.Transaction, f core.Filter) View {
	v := View{
		Title:        title,
		NameLabel:    nameLabel,
		WithCategory: withCategory,
		Rows:         f.Apply(txns),
	}
	if f.HasRange() {
		v.PeriodFrom = core.DisplayKey(core.DayKey(f.From))
		v.PeriodTo = core.DisplayKey(core.DayKey(f.To))
	}
	return v
}

func (v View) Empty() bool {
	return len(v.Rows) == 0
}

func (v View) Total() decimal.Decimal {
	return core.Total(v.Rows)
}

func (v View) slug() string {
	return strings.ReplaceAll(v.Title, " ", "_")
}

func (v View) CSVFilename() string {
	return v.slug() + "_export.csv"
}

func (v View) XLSXFilename() string {
	return v.slug() + "_export.xlsx"
}

func (v View) PDFFilename(now time.Time) string {
	return v.slug() + "_" + core.DisplayKey(core.DayKey(now)) + ".pdf"
}

// columns returns the header labels in render order.
func (v View) columns() []string {
	cols := []string{"Date"}
	if v.WithCategory {
		cols = append(cols, "Category")
	}
	return append(cols, v.NameLabel, "Amount (MVR)")
}

func categoryCell(t core.Transaction) string {
	if t.Category == "" {
		return "N/A"
	}
	return t.Category
}

// reversed yields rows most recent first.
func (v View) reversed() []core.Transaction {
	out := make([]core.Transaction, 0, len(v.Rows))
	for i := len(v.Rows) - 1; i >= 0; i-- {
		out = append(out, v.Rows[i])
	}
	return out
}
