// internal/app/features/households/delete.go
package households

import (
	"context"
	"errors"
	"net/http"

	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	"github.com/dalemusser/greenlink/internal/app/system/formutil"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /households/{id}. Collection logs for the
// household are kept as history.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := formutil.ObjectIDParam(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Households.Delete(ctx, id)
	if errors.Is(err, householdstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "household not found", "Household not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete household", err, "A database error occurred.")
		return
	}
	h.Log.Info("household deleted", zap.String("household_id", id.Hex()))
	h.AuditLog.HouseholdDeleted(ctx, r, id)

	w.WriteHeader(http.StatusNoContent)
}
