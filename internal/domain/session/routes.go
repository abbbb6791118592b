package session

import (
	"github.com/go-chi/chi/v5"

	"github.com/pawsit/pawsit-api/internal/middleware"
)

// Routes returns the session router. Every route requires authentication;
// mutations are additionally gated to the capacity that owns them.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOwner())
		r.Post("/", h.Create)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})

	// Status actions belong to both capacities: sitters accept, decline,
	// start, and complete; owners cancel. The handler gates the capacity
	// per action, the service gates per record.
	r.Patch("/status", h.ChangeStatus)

	return r
}
