package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"badhige/internal/core"
	"badhige/internal/ledger"
	applog "badhige/internal/log"
)

type fakeGateway struct {
	tables  map[string][]core.Transaction
	listErr error
}

func (g *fakeGateway) List(ctx context.Context, table string) ([]core.Transaction, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.tables[table], nil
}

func (g *fakeGateway) Append(ctx context.Context, table string, t core.Transaction) error {
	return nil
}

func (g *fakeGateway) Delete(ctx context.Context, table string, rowID int64) error {
	return nil
}

func testGateway() *fakeGateway {
	return &fakeGateway{tables: map[string][]core.Transaction{
		core.TableSales: {
			{RowID: 2, Date: "2024-01-05", Amount: decimal.NewFromInt(100), Name: "Ali"},
			{RowID: 3, Date: "2024-01-06", Amount: decimal.NewFromInt(50), Name: "Hassan"},
		},
		core.TableExpenses: {
			{RowID: 2, Date: "2024-01-05", Amount: decimal.NewFromInt(30), Name: "Diesel", Category: "Fuel"},
		},
		core.TableCategories: {
			{Category: "Fuel"}, {Category: "Rent"},
		},
	}}
}

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestServer(t *testing.T, gw *fakeGateway, load bool) *Server {
	t.Helper()
	// Long settle windows keep optimistic state observable for the
	// duration of a test.
	store := ledger.New(gw, nil, ledger.Options{InsertSettle: time.Minute, DeleteSettle: time.Minute})
	if load {
		if err := store.Load(context.Background()); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	srv := NewServer(":0", store, testLogger())
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, testGateway(), false)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", rr.Code)
	}

	// Nothing loaded yet: not ready.
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz before load status=%d", rr.Code)
	}
}

func TestReadyAfterLoad(t *testing.T) {
	srv := newTestServer(t, testGateway(), true)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", rr.Code)
	}
}

func TestListTransactions(t *testing.T) {
	srv := newTestServer(t, testGateway(), true)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/transactions?table=sales", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d body=%s", rr.Code, rr.Body.String())
	}

	var resp listResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 || len(resp.Items) != 2 {
		t.Fatalf("count=%d items=%d, want 2", resp.Count, len(resp.Items))
	}
	if resp.Total != "150.00" {
		t.Errorf("total=%s, want 150.00", resp.Total)
	}
}

func TestListTransactionsFiltered(t *testing.T) {
	srv := newTestServer(t, testGateway(), true)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/transactions?table=sales&q=ali", nil))
	var resp listResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Items[0].Name != "Ali" {
		t.Fatalf("filtered count=%d, want 1 (Ali)", resp.Count)
	}
}

func TestListTransactionsUnknownTable(t *testing.T) {
	srv := newTestServer(t, testGateway(), true)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/transactions?table=payroll", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
}

func TestCreateTransactionValidationAndSuccess(t *testing.T) {
	srv := newTestServer(t, testGateway(), true)

	// Wrong method
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/transactions", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	// Non-positive amount
	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/transactions",
		strings.NewReader(`{"table":"sales","date":"2024-01-07","amount":0,"name":"x"}`))
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Missing name
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/transactions",
		strings.NewReader(`{"table":"sales","date":"2024-01-07","amount":10,"name":" "}`))
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Success: accepted and optimistically visible
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/transactions",
		strings.NewReader(`{"table":"sales","date":"2024-01-07","amount":"MVR 1,250.50","name":"Ibrahim"}`))
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/transactions?table=sales&q=ibrahim", nil))
	var resp listResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("optimistic insert not visible, count=%d", resp.Count)
	}
}

func TestDeleteTransactionWithoutRowID(t *testing.T) {
	srv := newTestServer(t, testGateway(), true)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/transactions?table=sales", nil))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv := newTestServer(t, testGateway(), true)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/transactions?table=sales&rowId=2", nil))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(t, testGateway(), true)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", rr.Code)
	}

	var resp dashboardResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Sales.Total != "150.00" {
		t.Errorf("sales total=%s, want 150.00", resp.Sales.Total)
	}
	if resp.Profit != "120.00" || !resp.PositiveNet {
		t.Errorf("profit=%s positive=%v, want 120.00 true", resp.Profit, resp.PositiveNet)
	}
	if len(resp.SalesDaily) != 2 {
		t.Errorf("salesDaily entries=%d, want 2", len(resp.SalesDaily))
	}
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t, testGateway(), true)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	var resp map[string][]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := resp["categories"]
	if len(got) != 2 || got[0] != "Fuel" || got[1] != "Rent" {
		t.Fatalf("categories=%v, want [Fuel Rent]", got)
	}
}

func TestExportCSVDownload(t *testing.T) {
	srv := newTestServer(t, testGateway(), true)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/export?table=sales&format=csv", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "Full_Sales_Log_export.csv") {
		t.Errorf("content disposition=%q", got)
	}
	lines := strings.Split(strings.TrimRight(rr.Body.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines=%d, want 3", len(lines))
	}
	if lines[0] != "Date,Transferred By,Amount (MVR)" {
		t.Errorf("header=%q", lines[0])
	}
}

func TestExportEmptyViewNoContent(t *testing.T) {
	srv := newTestServer(t, testGateway(), true)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/export?table=sales&q=nomatch", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rr.Body.String())
	}
}

func TestStatusAndClear(t *testing.T) {
	gw := testGateway()
	srv := newTestServer(t, gw, true)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var status ledger.Status
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Sales != ledger.StateLoaded || status.Expenses != ledger.StateLoaded {
		t.Fatalf("status=%+v, want both loaded", status)
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/status/clear", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("clear status=%d", rr.Code)
	}
}

func TestRefreshFailureKeepsData(t *testing.T) {
	gw := testGateway()
	srv := newTestServer(t, gw, true)

	gw.listErr = context.DeadlineExceeded
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("refresh status=%d, want 502", rr.Code)
	}

	// Previously loaded data still served.
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/transactions?table=sales", nil))
	var resp listResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("count=%d after failed refresh, want 2", resp.Count)
	}
}
