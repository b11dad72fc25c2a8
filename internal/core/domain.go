package core

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Logical tables on the remote spreadsheet. "Transcations" is the upstream
// sheet's actual name; renaming it would break the live gateway.
const (
	TableSales      = "Transcations"
	TableExpenses   = "Expenses"
	TableCategories = "Category"
)

// DefaultCategory is used when the category feed is empty or unavailable.
const DefaultCategory = "General"

type (
	// Transaction is a single row of a ledger. Date keeps the raw encoding
	// as received from the gateway; NormalizeDate resolves it on demand.
	Transaction struct {
		RowID    int64           `json:"rowId,omitempty"`
		LocalID  string          `json:"localId,omitempty"`
		Date     string          `json:"date"`
		Amount   decimal.Decimal `json:"amount"`
		Name     string          `json:"name"`
		Category string          `json:"category,omitempty"`
	}

	// DailyTotal is one entry of the daily series.
	DailyTotal struct {
		Date  string          `json:"date"`
		Total decimal.Decimal `json:"total"`
	}
)

var (
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyDate     = errors.New("empty date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingRowID  = errors.New("record is missing a cloud identifier")
)

// HasRowID reports whether the record is addressable on the remote table.
func (t Transaction) HasRowID() bool {
	return t.RowID > 0
}

// Identity returns the stable per-session identity of the record: the remote
// row id when known, else the provisional local id.
func (t Transaction) Identity() string {
	if t.HasRowID() {
		return "row:" + strconv.FormatInt(t.RowID, 10)
	}
	return "local:" + t.LocalID
}

// DateKey returns the canonical YYYY-MM-DD key, or "" when the date does not
// parse.
func (t Transaction) DateKey() string {
	return NormalizeDate(t.Date).Key()
}

// DisplayDate returns the DD-Mon-YY form, falling back to the raw string.
func (t Transaction) DisplayDate() string {
	return NormalizeDate(t.Date).Display()
}

// Validate applies the submission rules; the store itself tolerates worse
// arriving from the remote.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Date) == "" {
		return ErrEmptyDate
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
