// internal/app/features/me/handler.go
package me

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/greenlink/internal/app/features/errors"
	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	"github.com/dalemusser/greenlink/internal/app/system/auth"
	"github.com/dalemusser/greenlink/internal/app/system/authz"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/system/viewdata"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the signed-in identity.
type Handler struct {
	Households *householdstore.Store
	Cal        *servicedate.Calendar
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, cal *servicedate.Calendar, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Households: householdstore.New(db),
		Cal:        cal,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type meResponse struct {
	User      auth.SessionUser `json:"user"`
	Household *viewdata.Household `json:"household,omitempty"`
}

// ServeMe handles GET /me. Residents also get their household with
// statuses projected onto today.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	resp := meResponse{User: *user}

	if id, _, ok := authz.HouseholdID(r); ok {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		hh, err := h.Households.GetByID(ctx, id)
		switch {
		case errors.Is(err, householdstore.ErrNotFound):
			h.ErrLog.LogNotFound(w, r, "household for session not found", "Household not found.")
			return
		case err != nil:
			h.ErrLog.LogServerError(w, r, "load household", err, "A database error occurred.")
			return
		}
		v := viewdata.HouseholdFor(hh, h.Cal.Today())
		resp.Household = &v
	} else if user.Role == models.RoleHousehold {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	jsonio.Write(w, http.StatusOK, resp)
}
