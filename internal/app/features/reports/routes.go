// internal/app/features/reports/routes.go
package reports

import (
	"github.com/dalemusser/greenlink/internal/app/system/auth"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireRole(models.RoleAdmin))

	r.Get("/day", h.ServeDay)
	r.Get("/week", h.ServeWeek)
	r.Get("/coverage", h.ServeCoverage)
	r.Get("/revenue", h.ServeRevenue)
	r.Get("/export.csv", h.ServeExport)
	return r
}
