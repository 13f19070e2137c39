// internal/app/features/posts/routes.go
package posts

import (
	"net/http"

	"github.com/dalemusser/yatube/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at "/". indexCache, when non-nil, wraps the global feed only.
func Routes(h *Handler, sm *auth.SessionManager, indexCache func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	if indexCache != nil {
		r.With(indexCache).Get("/", h.Index)
	} else {
		r.Get("/", h.Index)
	}
	r.Get("/group/{slug}/", h.Group)
	r.Get("/profile/{username}/", h.Profile)
	r.Get("/posts/{id}/", h.Detail)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.HandleFunc("/posts/{id}/comment/", h.AddComment)
		pr.Get("/create/", h.CreateForm)
		pr.Post("/create/", h.Create)
		pr.Get("/posts/{id}/edit/", h.EditForm)
		pr.Post("/posts/{id}/edit/", h.Edit)
		pr.Get("/follow/", h.FollowIndex)
		pr.Get("/profile/{username}/follow/", h.ProfileFollow)
		pr.Get("/profile/{username}/unfollow/", h.ProfileUnfollow)
	})

	return r
}
