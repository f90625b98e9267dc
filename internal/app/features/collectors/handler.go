// internal/app/features/collectors/handler.go
package collectors

import (
	uierrors "github.com/dalemusser/greenlink/internal/app/features/errors"
	collectorstore "github.com/dalemusser/greenlink/internal/app/store/collectors"
	userstore "github.com/dalemusser/greenlink/internal/app/store/users"
	"github.com/dalemusser/greenlink/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler manages collectors and their login accounts.
type Handler struct {
	Client     *mongo.Client
	Collectors *collectorstore.Store
	Users      *userstore.Store
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Client:     db.Client(),
		Collectors: collectorstore.New(db),
		Users:      userstore.New(db),
		ErrLog:     errLog,
		AuditLog:   audit,
		Log:        logger,
	}
}
