// Package gateway is the sole channel to the remote spreadsheet endpoint.
//
// The endpoint is an unauthenticated web app: reads return a JSON array of
// loosely-typed row objects, writes return nothing usable. A write "succeeds"
// once the request is dispatched without a transport error; the only source
// of truth is the next read.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"badhige/internal/core"
)

// DefaultEndpoint is the fixed production web-app URL.
const DefaultEndpoint = "https://script.google.com/macros/s/AKfycbyFHoyIURRJ2YvXyJF5SZPlVqsnkKbZD7uFAfTH9sLP73O1XstAJz2IFPqUP_Ud1-n4ww/exec"

// headerRowOffset models 1-based spreadsheet rows with a header row: a record
// at list index i lives at sheet row i+2 when the backend omits rowId.
const headerRowOffset = 2

// ConnectionError reports a failed read, naming the table for diagnosability.
type ConnectionError struct {
	Table string
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Table, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Client talks to the remote endpoint for one spreadsheet.
type Client struct {
	endpoint string
	http     *http.Client
}

// New returns a client for the given endpoint URL, using DefaultEndpoint when
// empty.
func New(endpoint string, timeout time.Duration) *Client {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// rawRecord mirrors the loosely-typed row objects the endpoint returns.
type rawRecord struct {
	RowID    int64  `json:"rowId,omitempty"`
	Date     string `json:"date"`
	Amount   any    `json:"amount"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// List fetches all rows of a table. Amounts are coerced defensively, missing
// row ids default to the sheet position, and for the category feed the
// category is backfilled from whichever column carries it.
func (c *Client) List(ctx context.Context, table string) ([]core.Transaction, error) {
	u := fmt.Sprintf("%s?sheet=%s", c.endpoint, url.QueryEscape(table))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &ConnectionError{Table: table, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ConnectionError{Table: table, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ConnectionError{Table: table, Err: fmt.Errorf("server responded with %d", resp.StatusCode)}
	}

	var raws []rawRecord
	if err := json.NewDecoder(resp.Body).Decode(&raws); err != nil {
		return nil, &ConnectionError{Table: table, Err: fmt.Errorf("decode response: %w", err)}
	}

	out := make([]core.Transaction, 0, len(raws))
	for i, r := range raws {
		t := core.Transaction{
			RowID:    r.RowID,
			Date:     r.Date,
			Amount:   core.CoerceAmount(r.Amount),
			Name:     r.Name,
			Category: r.Category,
		}
		if t.RowID == 0 {
			t.RowID = int64(i + headerRowOffset)
		}
		if table == core.TableCategories && t.Category == "" {
			// The vocabulary sheet is a single column; the value lands in
			// whichever field the header row named.
			if t.Date != "" {
				t.Category = t.Date
			} else {
				t.Category = t.Name
			}
		}
		if d := core.NormalizeDate(t.Date); d.Ambiguous() {
			slog.DebugContext(ctx, "ambiguous day-first date", "table", table, "row", t.RowID, "date", t.Date)
		}
		out = append(out, t)
	}

	slog.DebugContext(ctx, "listed table", "table", table, "rows", len(out))
	return out, nil
}

// appendPayload is the insert body. The date is quote-prefixed on write to
// defeat the spreadsheet's own auto-formatting; reads strip it back off.
type appendPayload struct {
	Sheet    string  `json:"sheet"`
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
}

type deletePayload struct {
	Sheet  string `json:"sheet"`
	Action string `json:"action"`
	RowID  int64  `json:"rowId"`
}

// Append dispatches a new row. The backend cannot signal rejection, so the
// call returns nil once the request went out; the response is drained and
// discarded regardless of status.
func (c *Client) Append(ctx context.Context, table string, t core.Transaction) error {
	amount, _ := t.Amount.Float64()
	payload := appendPayload{
		Sheet:    table,
		Date:     "'" + strings.TrimPrefix(t.Date, "'"),
		Amount:   amount,
		Name:     t.Name,
		Category: t.Category,
	}
	if err := c.post(ctx, payload); err != nil {
		return fmt.Errorf("append to %s: %w", table, err)
	}
	return nil
}

// Delete dispatches a delete for a remote row. Callers must guard the
// missing-identifier precondition; this is the last line of defense.
func (c *Client) Delete(ctx context.Context, table string, rowID int64) error {
	if rowID <= 0 {
		return core.ErrMissingRowID
	}
	if err := c.post(ctx, deletePayload{Sheet: table, Action: "delete", RowID: rowID}); err != nil {
		return fmt.Errorf("delete row %d from %s: %w", rowID, table, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	// Fire and forget: status and body carry no usable verdict.
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}
