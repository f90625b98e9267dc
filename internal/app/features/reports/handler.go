// internal/app/features/reports/handler.go
package reports

import (
	uierrors "github.com/dalemusser/greenlink/internal/app/features/errors"
	"github.com/dalemusser/greenlink/internal/app/reports"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Report window sizes.
const (
	weekDays      = 7
	revenueMonths = 6
)

// Handler serves the admin dashboard figures and the CSV export.
type Handler struct {
	Reports *reports.Service
	Cal     *servicedate.Calendar
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, cal *servicedate.Calendar, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Reports: reports.New(db),
		Cal:     cal,
		ErrLog:  errLog,
		Log:     logger,
	}
}
