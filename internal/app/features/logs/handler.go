// internal/app/features/logs/handler.go
package logs

import (
	"context"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/greenlink/internal/app/features/errors"
	collectionlogstore "github.com/dalemusser/greenlink/internal/app/store/collectionlogs"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"github.com/dalemusser/greenlink/internal/app/system/viewdata"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Limits for GET /logs/recent.
const (
	defaultRecent = 10
	maxRecent     = 100
)

// Handler serves the collection activity feed.
type Handler struct {
	Logs   *collectionlogstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Logs:   collectionlogstore.New(db),
		ErrLog: errLog,
		Log:    logger,
	}
}

// ServeRecent handles GET /logs/recent?limit=, newest first.
func (h *Handler) ServeRecent(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultRecent)
	if s := query.Get(r, "limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			jsonio.Error(w, http.StatusBadRequest, "limit must be a positive number.")
			return
		}
		limit = min(n, maxRecent)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ls, err := h.Logs.ListRecent(ctx, limit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list recent logs", err, "A database error occurred.")
		return
	}
	jsonio.Write(w, http.StatusOK, viewdata.List[models.CollectionLog]{Items: ls, Total: int64(len(ls)), Limit: limit})
}
