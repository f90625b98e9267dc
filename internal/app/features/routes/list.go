// internal/app/features/routes/list.go
package routes

import (
	"context"
	"net/http"

	"github.com/dalemusser/greenlink/internal/app/system/authz"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/system/viewdata"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList handles GET /routes?date=. Blank date means today.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	day, err := h.Cal.ParseOrToday(query.Get(r, "date"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse date", err, "Date must be YYYY-MM-DD.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rs, err := h.Routes.ListByDay(ctx, day)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list routes", err, "A database error occurred.")
		return
	}
	jsonio.Write(w, http.StatusOK, viewdata.List[models.Route]{Items: rs, Total: int64(len(rs))})
}

// ServeToday handles GET /routes/today for the signed-in collector.
// ?date= picks another day. No assignment is 204.
func (h *Handler) ServeToday(w http.ResponseWriter, r *http.Request) {
	collectorID, _, ok := authz.CollectorID(r)
	if !ok {
		h.ErrLog.LogForbidden(w, r, "daily assignment for non-collector", "Only collectors have daily routes.")
		return
	}
	day, err := h.Cal.ParseOrToday(query.Get(r, "date"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse date", err, "Date must be YYYY-MM-DD.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	route, err := h.Assign.DailyAssignment(ctx, collectorID, day)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "daily assignment", err, "A database error occurred.")
		return
	}
	if route == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	jsonio.Write(w, http.StatusOK, route)
}
