// internal/app/features/routes/assign.go
package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/greenlink/internal/app/system/formutil"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/workflows/assignments"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type assignRequest struct {
	CollectorID string `json:"collector_id" validate:"required,objectid" label:"Collector"`
	Ward        int    `json:"ward" validate:"required,ward" label:"Ward"`
	Date        string `json:"date" label:"Date"` // YYYY-MM-DD; blank means today
}

// HandleAssign handles POST /routes.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !formutil.Bind(w, r, &req) {
		return
	}
	collectorID, _ := primitive.ObjectIDFromHex(req.CollectorID)
	day, err := h.Cal.ParseOrToday(req.Date)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse route date", err, "Date must be YYYY-MM-DD.")
		return
	}
	if day.Before(h.Cal.Today()) {
		jsonio.Error(w, http.StatusBadRequest, "Routes cannot be assigned to a past day.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	route, err := h.Assign.AssignRoute(ctx, collectorID, req.Ward, day)
	switch {
	case errors.Is(err, assignments.ErrWardAlreadyAssigned):
		h.ErrLog.LogConflict(w, r, "assign route", err, "This ward already has an active route for the day.")
		return
	case errors.Is(err, assignments.ErrCollectorNotFound):
		h.ErrLog.LogNotFound(w, r, "assign route: collector not found", "Collector not found.")
		return
	case errors.Is(err, assignments.ErrInvalidWard):
		h.ErrLog.LogBadRequest(w, r, "assign route", err, "Ward must be a positive number.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "assign route", err, "A database error occurred.")
		return
	}
	h.AuditLog.RouteAssigned(ctx, r, route.ID, route.CollectorID, route.Ward, route.Day.String())

	jsonio.Write(w, http.StatusCreated, route)
}

// HandleDelete handles DELETE /routes/{id}?ward=. Households in the ward
// (the route's own ward when ?ward= is absent) go back to unassigned.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := formutil.ObjectIDParam(w, r, "id")
	if !ok {
		return
	}
	ward, ok := formutil.OptionalWard(r.URL.Query().Get("ward"))
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "Invalid ward.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Assign.DeleteRoute(ctx, id, ward)
	if errors.Is(err, assignments.ErrRouteNotFound) {
		h.ErrLog.LogNotFound(w, r, "route not found", "Route not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete route", err, "A database error occurred.")
		return
	}
	h.AuditLog.RouteDeleted(ctx, r, id, ward)

	w.WriteHeader(http.StatusNoContent)
}
