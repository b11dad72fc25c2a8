package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"badhige/internal/core"
)

// parseTable maps the table query parameter to a remote table name. The
// friendly aliases keep the upstream "Transcations" spelling out of client
// URLs.
func parseTable(r *http.Request) (string, error) {
	switch v := strings.TrimSpace(r.URL.Query().Get("table")); v {
	case "", "sales", core.TableSales:
		return core.TableSales, nil
	case "expenses", core.TableExpenses:
		return core.TableExpenses, nil
	default:
		return "", fmt.Errorf("unknown table %q", v)
	}
}

// parseFilter builds the filter from q, from and to query parameters. Range
// endpoints use YYYY-MM-DD in local time; an invalid endpoint is an error
// rather than a silently open range.
func parseFilter(r *http.Request, withCategory bool) (core.Filter, error) {
	f := core.Filter{
		Query:        sanitizeInput(r.URL.Query().Get("q")),
		WithCategory: withCategory,
	}

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return core.Filter{}, fmt.Errorf("invalid from date %q", v)
		}
		f.From = t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return core.Filter{}, fmt.Errorf("invalid to date %q", v)
		}
		f.To = t
	}
	return f, nil
}

type createTransactionRequest struct {
	Table    string `json:"table"`
	Date     string `json:"date"`
	Amount   any    `json:"amount"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// parseCreateRequest decodes and sanitizes a transaction submission. The
// amount may arrive as a JSON number or as a string with currency symbols.
func parseCreateRequest(r *http.Request) (string, core.Transaction, error) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", core.Transaction{}, fmt.Errorf("invalid request body: %w", err)
	}

	table := core.TableSales
	switch strings.TrimSpace(req.Table) {
	case "", "sales", core.TableSales:
	case "expenses", core.TableExpenses:
		table = core.TableExpenses
	default:
		return "", core.Transaction{}, fmt.Errorf("unknown table %q", req.Table)
	}

	t := core.Transaction{
		Date:     sanitizeInput(req.Date),
		Amount:   core.CoerceAmount(req.Amount),
		Name:     sanitizeInput(req.Name),
		Category: sanitizeInput(req.Category),
	}
	return table, t, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// requestIDFromHeader honors an upstream X-Request-ID, generating one
// otherwise.
func requestIDFromHeader(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return generateRequestID()
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
