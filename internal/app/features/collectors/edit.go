// internal/app/features/collectors/edit.go
package collectors

import (
	"context"
	"errors"
	"net/http"

	collectorstore "github.com/dalemusser/greenlink/internal/app/store/collectors"
	userstore "github.com/dalemusser/greenlink/internal/app/store/users"
	"github.com/dalemusser/greenlink/internal/app/system/formutil"
	"github.com/dalemusser/greenlink/internal/app/system/htmlsanitize"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/normalize"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/system/txn"
	"github.com/dalemusser/greenlink/internal/domain/models"
)

// HandleEdit handles PUT /collectors/{id}. Name and email changes are
// mirrored to the login account; an inactive collector cannot sign in.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := formutil.ObjectIDParam(w, r, "id")
	if !ok {
		return
	}
	var req editRequest
	if !formutil.Bind(w, r, &req) {
		return
	}

	var u collectorstore.Update
	if req.Name != nil {
		name := normalize.Name(htmlsanitize.Text(*req.Name))
		if name == "" {
			jsonio.Error(w, http.StatusBadRequest, "Name cannot be empty.")
			return
		}
		u.Name = &name
	}
	if req.Phone != nil {
		p := normalize.Phone(*req.Phone)
		u.Phone = &p
	}
	if req.Email != nil {
		e := normalize.Email(*req.Email)
		u.Email = &e
	}
	if req.Wards != nil {
		u.Wards = *req.Wards
	}
	u.Status = req.Status
	if u.Name == nil && u.Phone == nil && u.Email == nil && u.Wards == nil && u.Status == nil {
		jsonio.Error(w, http.StatusBadRequest, "Nothing to update.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var updated models.Collector
	err := txn.Run(ctx, h.Client, h.Log, func(ctx context.Context) error {
		var err error
		updated, err = h.Collectors.Update(ctx, id, u)
		if err != nil {
			return err
		}
		if u.Name != nil || u.Email != nil {
			err = h.Users.UpdateProfile(ctx, id, updated.Name, updated.Email)
			if err != nil && !errors.Is(err, userstore.ErrNotFound) {
				return err
			}
		}
		if u.Status != nil {
			status := models.AccountActive
			if *u.Status == models.CollectorInactive {
				status = models.AccountDisabled
			}
			err = h.Users.SetStatus(ctx, id, status)
			if err != nil && !errors.Is(err, userstore.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	switch {
	case errors.Is(err, collectorstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "collector not found", "Collector not found.")
		return
	case errors.Is(err, collectorstore.ErrDuplicatePhone):
		h.ErrLog.LogConflict(w, r, "update collector", err, "A collector with this phone already exists.")
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		h.ErrLog.LogConflict(w, r, "update collector account", err, "An account with this email already exists.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "update collector", err, "A database error occurred.")
		return
	}
	h.AuditLog.CollectorUpdated(ctx, r, updated.ID, updated.Name)

	jsonio.Write(w, http.StatusOK, updated)
}
