// internal/app/features/reports/export.go
package reports

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/dalemusser/greenlink/internal/app/reports"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeExport handles GET /reports/export.csv: one row per household with
// statuses as of today.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "household export")
	defer cancel()

	today := h.Cal.Today()
	rows, err := h.Reports.Rows(ctx, today)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "household export", err, "A database error occurred.")
		return
	}

	filename := "green-link-report-" + today.String() + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if err := reports.WriteCSV(w, rows); err != nil {
		// Headers are already sent.
		h.Log.Warn("csv export write failed", zap.Error(err))
	}
}
