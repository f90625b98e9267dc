// internal/app/features/households/edit.go
package households

import (
	"context"
	"errors"
	"net/http"

	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	"github.com/dalemusser/greenlink/internal/app/system/formutil"
	"github.com/dalemusser/greenlink/internal/app/system/htmlsanitize"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/normalize"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/system/viewdata"
)

// HandleEdit handles PUT /households/{id}. The payment status can be set
// here; the collection status and the assigned collector are owned by the
// workflows.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := formutil.ObjectIDParam(w, r, "id")
	if !ok {
		return
	}
	var req editRequest
	if !formutil.Bind(w, r, &req) {
		return
	}

	u := householdstore.Update{
		ResidentName:  req.ResidentName,
		Address:       req.Address,
		Ward:          req.Ward,
		MonthlyFee:    req.MonthlyFee,
		Lat:           req.Lat,
		Lng:           req.Lng,
		WetWaste:      req.WetWaste,
		DryWaste:      req.DryWaste,
		RejectWaste:   req.RejectWaste,
		PaymentStatus: req.PaymentStatus,
	}
	htmlsanitize.Fields(u.ResidentName, u.Address)
	if u.ResidentName != nil {
		*u.ResidentName = normalize.Name(*u.ResidentName)
		if *u.ResidentName == "" {
			jsonio.Error(w, http.StatusBadRequest, "Resident name cannot be empty.")
			return
		}
	}
	if u.Address != nil && *u.Address == "" {
		jsonio.Error(w, http.StatusBadRequest, "Address cannot be empty.")
		return
	}
	if req.Phone != nil {
		p := normalize.Phone(*req.Phone)
		u.Phone = &p
	}
	if u.MonthlyFee != nil && u.MonthlyFee.IsNegative() {
		jsonio.Error(w, http.StatusBadRequest, "Monthly fee cannot be negative.")
		return
	}
	if u.IsEmpty() {
		jsonio.Error(w, http.StatusBadRequest, "Nothing to update.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	hh, err := h.Households.Update(ctx, id, u)
	if errors.Is(err, householdstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "household not found", "Household not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update household", err, "A database error occurred.")
		return
	}
	h.AuditLog.HouseholdUpdated(ctx, r, hh.ID, hh.ResidentName)

	jsonio.Write(w, http.StatusOK, viewdata.HouseholdFor(hh, h.Cal.Today()))
}
