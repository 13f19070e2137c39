// internal/app/features/posts/follow.go
package posts

import (
	"context"
	"net/http"

	"github.com/dalemusser/yatube/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ProfileFollow follows the profile's author. A new edge lands on the follow
// feed; following yourself or someone already followed goes back to the
// index.
// GET /profile/{username}/follow/
func (h *Handler) ProfileFollow(w http.ResponseWriter, r *http.Request) {
	viewer := viewerID(r)
	if viewer == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Feed.Follow(ctx, *viewer, chi.URLParam(r, "username"))
	if err != nil {
		h.fail(w, r, "follow failed", err)
		return
	}
	if created {
		http.Redirect(w, r, "/follow/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ProfileUnfollow removes the follow edge; 404 when there was none.
// GET /profile/{username}/unfollow/
func (h *Handler) ProfileUnfollow(w http.ResponseWriter, r *http.Request) {
	viewer := viewerID(r)
	if viewer == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Feed.Unfollow(ctx, *viewer, chi.URLParam(r, "username")); err != nil {
		h.fail(w, r, "unfollow failed", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
