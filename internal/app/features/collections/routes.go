// internal/app/features/collections/routes.go
package collections

import (
	"github.com/dalemusser/greenlink/internal/app/system/auth"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireRole(models.RoleCollector))
	r.Post("/", h.HandleRecord)
	return r
}
