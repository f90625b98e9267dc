// internal/app/features/collectors/delete.go
package collectors

import (
	"context"
	"errors"
	"net/http"

	collectorstore "github.com/dalemusser/greenlink/internal/app/store/collectors"
	"github.com/dalemusser/greenlink/internal/app/system/formutil"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/system/txn"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /collectors/{id} and removes the login
// account with it. Routes and logs keep the collector's name as history.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := formutil.ObjectIDParam(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := txn.Run(ctx, h.Client, h.Log, func(ctx context.Context) error {
		if err := h.Collectors.Delete(ctx, id); err != nil {
			return err
		}
		return h.Users.Delete(ctx, id)
	})
	if errors.Is(err, collectorstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "collector not found", "Collector not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete collector", err, "A database error occurred.")
		return
	}
	h.Log.Info("collector deleted", zap.String("collector_id", id.Hex()))
	h.AuditLog.CollectorDeleted(ctx, r, id)

	w.WriteHeader(http.StatusNoContent)
}
