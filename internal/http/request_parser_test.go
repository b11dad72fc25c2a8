package http

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"badhige/internal/core"
)

func TestParseTable(t *testing.T) {
	tests := []struct {
		query   string
		want    string
		wantErr bool
	}{
		{"", core.TableSales, false},
		{"table=sales", core.TableSales, false},
		{"table=Transcations", core.TableSales, false},
		{"table=expenses", core.TableExpenses, false},
		{"table=Expenses", core.TableExpenses, false},
		{"table=payroll", "", true},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/api/transactions?"+tt.query, nil)
		got, err := parseTable(r)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseTable(%q) expected error", tt.query)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseTable(%q) error: %v", tt.query, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseTable(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestParseFilter(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/transactions?q=fuel&from=2024-01-01&to=2024-01-31", nil)
	f, err := parseFilter(r, true)
	if err != nil {
		t.Fatalf("parseFilter: %v", err)
	}
	if f.Query != "fuel" || !f.WithCategory {
		t.Errorf("filter = %+v", f)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	if !f.From.Equal(want) {
		t.Errorf("from = %v, want %v", f.From, want)
	}
	if !f.HasRange() {
		t.Error("expected active range")
	}
}

func TestParseFilterInvalidDate(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/transactions?from=01-31-2024", nil)
	if _, err := parseFilter(r, false); err == nil {
		t.Fatal("expected error for invalid from date")
	}
}

func TestParseCreateRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/transactions",
		strings.NewReader(`{"table":"expenses","date":" 2024-01-07 ","amount":"MVR 1,250.50","name":"  Diesel ","category":"Fuel"}`))
	table, tx, err := parseCreateRequest(r)
	if err != nil {
		t.Fatalf("parseCreateRequest: %v", err)
	}
	if table != core.TableExpenses {
		t.Errorf("table = %q", table)
	}
	if tx.Name != "Diesel" || tx.Date != "2024-01-07" {
		t.Errorf("sanitize failed: %+v", tx)
	}
	if !tx.Amount.Equal(decimal.RequireFromString("1250.5")) {
		t.Errorf("amount = %s, want 1250.5", tx.Amount)
	}
}
