package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"badhige/internal/core"
	"badhige/internal/gateway"
	applog "badhige/internal/log"
)

type listResponse struct {
	Items []core.Transaction `json:"items"`
	Total string             `json:"total"`
	Count int                `json:"count"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	case http.MethodDelete:
		s.deleteTransaction(w, r)
	default:
		methodNotAllowed(w, r)
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	table, err := parseTable(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	l, err := s.store.Ledger(table)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	f, err := parseFilter(r, l.WithCategory())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	items := f.Apply(l.Snapshot())
	writeJSON(w, r, http.StatusOK, listResponse{
		Items: items,
		Total: core.FormatAmount(core.Total(items)),
		Count: len(items),
	})
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	table, t, err := parseCreateRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := t.Validate(); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.Add(r.Context(), table, t); err != nil {
		// The backend cannot signal rejection; this is a dispatch failure.
		writeError(w, r, http.StatusBadGateway, "sync failed, check connection")
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	table, err := parseTable(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	rowID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("rowId")), 10, 64)
	if err != nil {
		rowID = 0
	}

	switch err := s.store.Delete(r.Context(), table, core.Transaction{RowID: rowID}); {
	case err == nil:
		writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
	case errors.Is(err, core.ErrMissingRowID):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, r, http.StatusBadGateway, "sync failed, check connection")
	}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string][]string{"categories": s.store.Categories()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	writeJSON(w, r, http.StatusOK, s.store.Status())
}

// handleClearSyncError dismisses the persistent sync failure banner.
func (s *Server) handleClearSyncError(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	s.store.ClearSyncError()
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleRefresh forces a full reload from the gateway. A failure keeps
// previously loaded data; the response says which table broke.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	if err := s.store.Load(r.Context()); err != nil {
		var connErr *gateway.ConnectionError
		if errors.As(err, &connErr) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "refresh failed",
				applog.FieldTable, connErr.Table, applog.FieldError, err.Error())
		}
		writeError(w, r, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, s.store.Status())
}
