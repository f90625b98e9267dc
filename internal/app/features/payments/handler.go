// internal/app/features/payments/handler.go
package payments

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/greenlink/internal/app/features/errors"
	"github.com/dalemusser/greenlink/internal/app/system/authz"
	"github.com/dalemusser/greenlink/internal/app/system/formutil"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/workflows/collections"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler takes resident payments.
type Handler struct {
	Collections *collections.Service
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, cal *servicedate.Calendar, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Collections: collections.New(db, cal, logger),
		ErrLog:      errLog,
		Log:         logger,
	}
}

type onlineRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// HandleOnline handles POST /payments/online for the signed-in resident.
func (h *Handler) HandleOnline(w http.ResponseWriter, r *http.Request) {
	householdID, residentName, ok := authz.HouseholdID(r)
	if !ok {
		h.ErrLog.LogForbidden(w, r, "online payment by non-resident", "Only residents can pay online.")
		return
	}
	var req onlineRequest
	if !formutil.Bind(w, r, &req) {
		return
	}
	if !req.Amount.IsPositive() {
		jsonio.Error(w, http.StatusBadRequest, "Amount must be greater than zero.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	l, err := h.Collections.PayOnline(ctx, householdID, residentName, req.Amount)
	switch {
	case errors.Is(err, collections.ErrHouseholdNotFound):
		h.ErrLog.LogNotFound(w, r, "online payment: household not found", "Household not found.")
		return
	case errors.Is(err, collections.ErrInvalidAmount):
		h.ErrLog.LogBadRequest(w, r, "online payment", err, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "online payment", err, "A database error occurred.")
		return
	}
	jsonio.Write(w, http.StatusOK, l)
}
