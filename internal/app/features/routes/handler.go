// internal/app/features/routes/handler.go
package routes

import (
	uierrors "github.com/dalemusser/greenlink/internal/app/features/errors"
	routestore "github.com/dalemusser/greenlink/internal/app/store/routes"
	"github.com/dalemusser/greenlink/internal/app/system/auditlog"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"github.com/dalemusser/greenlink/internal/app/workflows/assignments"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves daily ward assignments.
type Handler struct {
	Assign   *assignments.Service
	Routes   *routestore.Store
	Cal      *servicedate.Calendar
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, cal *servicedate.Calendar, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Assign:   assignments.New(db, logger),
		Routes:   routestore.New(db),
		Cal:      cal,
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}
