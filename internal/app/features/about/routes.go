// internal/app/features/about/routes.go
package about

import "github.com/go-chi/chi/v5"

// Routes mounts at /about.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/author/", h.ServeAuthor)
	r.Get("/tech/", h.ServeTech)
	return r
}
