// internal/app/features/collections/handler.go
package collections

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/greenlink/internal/app/features/errors"
	"github.com/dalemusser/greenlink/internal/app/system/authz"
	"github.com/dalemusser/greenlink/internal/app/system/formutil"
	"github.com/dalemusser/greenlink/internal/app/system/htmlsanitize"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/workflows/collections"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler records collector visits.
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

type recordRequest struct {
	HouseholdID   string          `json:"household_id" validate:"required,objectid" label:"Household"`
	Status        string          `json:"status" validate:"required,collectionstatus" label:"Status"`
	Location      string          `json:"location" validate:"max=300" label:"Location"`
	PaymentMode   string          `json:"payment_mode" validate:"omitempty,paymentmode" label:"Payment mode"`
	PaymentStatus string          `json:"payment_status" validate:"omitempty,paymentstatus" label:"Payment status"`
	Amount        decimal.Decimal `json:"amount"`
}

// HandleRecord handles POST /collections. The collector is the signed-in
// user.
func (h *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	collectorID, collectorName, ok := authz.CollectorID(r)
	if !ok {
		h.ErrLog.LogForbidden(w, r, "record collection by non-collector", "Only collectors can record collections.")
		return
	}
	var req recordRequest
	if !formutil.Bind(w, r, &req) {
		return
	}
	householdID, _ := primitive.ObjectIDFromHex(req.HouseholdID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Collections.RecordCollection(ctx, collections.RecordInput{
		HouseholdID:   householdID,
		Status:        req.Status,
		CollectorID:   collectorID.Hex(),
		CollectorName: collectorName,
		Location:      htmlsanitize.Text(req.Location),
		PaymentMode:   req.PaymentMode,
		PaymentStatus: req.PaymentStatus,
		Amount:        req.Amount,
	})
	switch {
	case errors.Is(err, collections.ErrHouseholdNotFound):
		h.ErrLog.LogNotFound(w, r, "record collection: household not found", "Household not found.")
		return
	case errors.Is(err, collections.ErrInvalidStatus),
		errors.Is(err, collections.ErrInvalidPaymentMode),
		errors.Is(err, collections.ErrInvalidPaymentStatus),
		errors.Is(err, collections.ErrInvalidAmount):
		h.ErrLog.LogBadRequest(w, r, "record collection", err, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "record collection", err, "A database error occurred.")
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	jsonio.Write(w, status, res)
}
