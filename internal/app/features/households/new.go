// internal/app/features/households/new.go
package households

import (
	"context"
	"net/http"

	"github.com/dalemusser/greenlink/internal/app/system/formutil"
	"github.com/dalemusser/greenlink/internal/app/system/htmlsanitize"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/normalize"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/system/viewdata"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"go.uber.org/zap"
)

// HandleCreate handles POST /households. A missing ward is read from
// "Ward N" in the address.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !formutil.Bind(w, r, &req) {
		return
	}
	htmlsanitize.Fields(&req.ResidentName, &req.Address)
	req.ResidentName = normalize.Name(req.ResidentName)
	if req.ResidentName == "" || req.Address == "" {
		jsonio.Error(w, http.StatusBadRequest, "Resident name and address must be plain text.")
		return
	}
	if req.Ward == 0 {
		ward, ok := normalize.WardFromAddress(req.Address)
		if !ok {
			jsonio.Error(w, http.StatusBadRequest, `Ward is required when the address has no "Ward N".`)
			return
		}
		req.Ward = ward
	}
	if req.MonthlyFee != nil && req.MonthlyFee.IsNegative() {
		jsonio.Error(w, http.StatusBadRequest, "Monthly fee cannot be negative.")
		return
	}

	hh := models.Household{
		ResidentName:  req.ResidentName,
		Address:       req.Address,
		Ward:          req.Ward,
		Phone:         normalize.Phone(req.Phone),
		Lat:           req.Lat,
		Lng:           req.Lng,
		WetWaste:      req.WetWaste,
		DryWaste:      req.DryWaste,
		RejectWaste:   req.RejectWaste,
		PaymentStatus: req.PaymentStatus,
	}
	if req.MonthlyFee != nil {
		hh.MonthlyFee = *req.MonthlyFee
	}
	if hh.Lat == nil {
		lat := DefaultLat
		hh.Lat = &lat
	}
	if hh.Lng == nil {
		lng := DefaultLng
		hh.Lng = &lng
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Households.Create(ctx, hh)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create household", err, "A database error occurred.")
		return
	}
	h.Log.Info("household created",
		zap.String("household_id", created.ID.Hex()),
		zap.Int("ward", created.Ward))
	h.AuditLog.HouseholdCreated(ctx, r, created.ID, created.ResidentName, created.Ward)

	jsonio.Write(w, http.StatusCreated, viewdata.HouseholdFor(created, h.Cal.Today()))
}
