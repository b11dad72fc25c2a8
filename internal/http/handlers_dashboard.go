package http

import (
	"net/http"
	"time"

	"badhige/internal/core"
)

type ledgerStats struct {
	Total string `json:"total"`
	Today string `json:"today"`
	Count int    `json:"count"`
}

type dashboardResponse struct {
	Sales         ledgerStats       `json:"sales"`
	Expenses      ledgerStats       `json:"expenses"`
	Profit        string            `json:"profit"`
	PositiveNet   bool              `json:"positiveNet"`
	SalesDaily    []core.DailyTotal `json:"salesDaily"`
	ExpensesDaily []core.DailyTotal `json:"expensesDaily"`
}

// handleDashboard computes all aggregates from the current snapshots; every
// figure is recomputable from a cold snapshot and a reference now.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}

	now := time.Now()
	sales := s.salesSnapshot()
	expenses := s.expensesSnapshot()

	profit := core.Profit(sales, expenses)
	writeJSON(w, r, http.StatusOK, dashboardResponse{
		Sales:         snapshotStats(sales, now),
		Expenses:      snapshotStats(expenses, now),
		Profit:        core.FormatAmount(profit),
		PositiveNet:   !profit.IsNegative(),
		SalesDaily:    core.DailySeries(sales),
		ExpensesDaily: core.DailySeries(expenses),
	})
}

func snapshotStats(txns []core.Transaction, now time.Time) ledgerStats {
	return ledgerStats{
		Total: core.FormatAmount(core.Total(txns)),
		Today: core.FormatAmount(core.TodayTotal(txns, now)),
		Count: len(txns),
	}
}

func (s *Server) salesSnapshot() []core.Transaction {
	l, err := s.store.Ledger(core.TableSales)
	if err != nil {
		return nil
	}
	return l.Snapshot()
}

func (s *Server) expensesSnapshot() []core.Transaction {
	l, err := s.store.Ledger(core.TableExpenses)
	if err != nil {
		return nil
	}
	return l.Snapshot()
}
