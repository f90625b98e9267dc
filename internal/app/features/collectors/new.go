// internal/app/features/collectors/new.go
package collectors

import (
	"context"
	"errors"
	"net/http"

	collectorstore "github.com/dalemusser/greenlink/internal/app/store/collectors"
	userstore "github.com/dalemusser/greenlink/internal/app/store/users"
	"github.com/dalemusser/greenlink/internal/app/system/authutil"
	"github.com/dalemusser/greenlink/internal/app/system/formutil"
	"github.com/dalemusser/greenlink/internal/app/system/htmlsanitize"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/normalize"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/system/txn"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleCreate handles POST /collectors. The collector and its login
// account share one id and are written together.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !formutil.Bind(w, r, &req) {
		return
	}
	req.Name = normalize.Name(htmlsanitize.Text(req.Name))
	if req.Name == "" {
		jsonio.Error(w, http.StatusBadRequest, "Name must be plain text.")
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "hash password", err, "Password must be at least 8 characters.")
		return
	}

	c := models.Collector{
		ID:    primitive.NewObjectID(),
		Name:  req.Name,
		Phone: normalize.Phone(req.Phone),
		Email: normalize.Email(req.Email),
		Wards: req.Wards,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var created models.Collector
	err = txn.Run(ctx, h.Client, h.Log, func(ctx context.Context) error {
		var err error
		created, err = h.Collectors.Create(ctx, c)
		if err != nil {
			return err
		}
		_, err = h.Users.Create(ctx, models.User{
			ID:           c.ID,
			FullName:     c.Name,
			Email:        c.Email,
			PasswordHash: hash,
			Role:         models.RoleCollector,
			Status:       models.AccountActive,
		})
		if err != nil {
			// Without a transaction the collector is already stored.
			_ = h.Collectors.Delete(ctx, c.ID)
		}
		return err
	})
	switch {
	case errors.Is(err, collectorstore.ErrDuplicatePhone):
		h.ErrLog.LogConflict(w, r, "create collector", err, "A collector with this phone already exists.")
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		h.ErrLog.LogConflict(w, r, "create collector account", err, "An account with this email already exists.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "create collector", err, "A database error occurred.")
		return
	}

	h.Log.Info("collector created",
		zap.String("collector_id", created.ID.Hex()),
		zap.Ints("wards", created.Wards))
	h.AuditLog.CollectorCreated(ctx, r, created.ID, created.Name)

	jsonio.Write(w, http.StatusCreated, created)
}
