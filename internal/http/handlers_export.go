package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"badhige/internal/core"
	"badhige/internal/report"
)

// Report presentation per table, matching the on-screen list headings.
var reportMeta = map[string]struct {
	title     string
	nameLabel string
}{
	core.TableSales:    {title: "Full Sales Log", nameLabel: "Transferred By"},
	core.TableExpenses: {title: "Full Expense History", nameLabel: "Description"},
}

// handleExport streams a CSV, PDF or XLSX rendering of the filtered view.
// An empty view yields 204 and no file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}

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

	meta := reportMeta[table]
	view := report.NewView(meta.title, meta.nameLabel, l.WithCategory(), l.Snapshot(), f)
	if view.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var (
		data        []byte
		filename    string
		contentType string
	)
	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "", "csv":
		data = report.ExportCSV(view)
		filename = view.CSVFilename()
		contentType = "text/csv; charset=utf-8"
	case "pdf":
		data, err = report.ExportPDF(view, time.Now())
		filename = view.PDFFilename(time.Now())
		contentType = "application/pdf"
	case "xlsx":
		data, err = report.ExportXLSX(view)
		filename = view.XLSXFilename()
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
