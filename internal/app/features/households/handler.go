// internal/app/features/households/handler.go
package households

import (
	uierrors "github.com/dalemusser/greenlink/internal/app/features/errors"
	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	"github.com/dalemusser/greenlink/internal/app/system/auditlog"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the household registry.
type Handler struct {
	Households *householdstore.Store
	Cal        *servicedate.Calendar
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, cal *servicedate.Calendar, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Households: householdstore.New(db),
		Cal:        cal,
		ErrLog:     errLog,
		AuditLog:   audit,
		Log:        logger,
	}
}
