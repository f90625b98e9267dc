// internal/app/features/collectors/list.go
package collectors

import (
	"context"
	"errors"
	"net/http"

	collectorstore "github.com/dalemusser/greenlink/internal/app/store/collectors"
	"github.com/dalemusser/greenlink/internal/app/system/formutil"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/system/viewdata"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList handles GET /collectors. With ?ward= only collectors covering
// that ward are listed, for the route assignment picker.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ward, ok := formutil.OptionalWard(query.Get(r, "ward"))
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "Invalid ward.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var (
		cs  []models.Collector
		err error
	)
	if ward > 0 {
		cs, err = h.Collectors.ListCoveringWard(ctx, ward)
	} else {
		cs, err = h.Collectors.List(ctx)
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list collectors", err, "A database error occurred.")
		return
	}
	jsonio.Write(w, http.StatusOK, viewdata.List[models.Collector]{Items: cs, Total: int64(len(cs))})
}

// ServeView handles GET /collectors/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := formutil.ObjectIDParam(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Collectors.GetByID(ctx, id)
	if errors.Is(err, collectorstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "collector not found", "Collector not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load collector", err, "A database error occurred.")
		return
	}
	jsonio.Write(w, http.StatusOK, c)
}
