// internal/app/features/households/list.go
package households

import (
	"context"
	"errors"
	"net/http"

	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	"github.com/dalemusser/greenlink/internal/app/system/formutil"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/paging"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"golang.org/x/sync/errgroup"
)

// ServeList handles GET /households?ward=&limit=&offset=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ward, ok := formutil.OptionalWard(query.Get(r, "ward"))
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "Invalid ward.")
		return
	}
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		rows  = []viewdata.Household{}
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hs, err := h.Households.List(gctx, householdstore.ListFilter{Ward: ward, Page: page})
		if err != nil {
			return err
		}
		rows = viewdata.Households(hs, h.Cal.Today())
		return nil
	})
	g.Go(func() error {
		var err error
		if ward > 0 {
			total, err = h.Households.CountByWard(gctx, ward)
		} else {
			total, err = h.Households.Count(gctx)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		h.ErrLog.LogServerError(w, r, "list households", err, "A database error occurred.")
		return
	}

	jsonio.Write(w, http.StatusOK, viewdata.List[viewdata.Household]{
		Items: rows, Total: total, Limit: page.Limit, Offset: page.Offset,
	})
}

// ServeWard handles GET /households/ward/{ward}: every household in the
// ward with statuses as of today, for the collector's round.
func (h *Handler) ServeWard(w http.ResponseWriter, r *http.Request) {
	ward, ok := formutil.WardParam(w, r, "ward")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	hs, err := h.Households.ListByWard(ctx, ward)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list ward households", err, "A database error occurred.")
		return
	}
	rows := viewdata.Households(hs, h.Cal.Today())
	jsonio.Write(w, http.StatusOK, viewdata.List[viewdata.Household]{Items: rows, Total: int64(len(rows))})
}

// ServeView handles GET /households/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := formutil.ObjectIDParam(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	hh, err := h.Households.GetByID(ctx, id)
	if errors.Is(err, householdstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "household not found", "Household not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load household", err, "A database error occurred.")
		return
	}
	jsonio.Write(w, http.StatusOK, viewdata.HouseholdFor(hh, h.Cal.Today()))
}
