// internal/app/features/posts/feeds.go
package posts

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/yatube/internal/app/feed"
	"github.com/dalemusser/yatube/internal/app/system/paging"
	"github.com/dalemusser/yatube/internal/app/system/timeouts"
	"github.com/dalemusser/yatube/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
)

type indexData struct {
	viewdata.BaseVM
	Feed feed.Page
}

type groupData struct {
	viewdata.BaseVM
	feed.GroupPage
}

type profileData struct {
	viewdata.BaseVM
	feed.ProfilePage
	IsOwn       bool
	ShowFollow  bool
	IsFollowing bool
}

// Index serves the global feed.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Feed.Index(ctx, paging.ParsePage(r))
	if err != nil {
		h.fail(w, r, "load index feed failed", err)
		return
	}
	templates.Render(w, r, "posts_index", indexData{
		BaseVM: viewdata.NewBaseVM(r, "Latest posts", "/"),
		Feed:   p,
	})
}

// Group serves one group's feed.
// GET /group/{slug}/
func (h *Handler) Group(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	gp, err := h.Feed.Group(ctx, chi.URLParam(r, "slug"), paging.ParsePage(r))
	if err != nil {
		h.fail(w, r, "load group feed failed", err)
		return
	}
	templates.Render(w, r, "posts_group", groupData{
		BaseVM:    viewdata.NewBaseVM(r, gp.Group.Title, "/"),
		GroupPage: gp,
	})
}

// Profile serves an author's feed with follow controls.
// GET /profile/{username}/
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	viewer := viewerID(r)
	pp, err := h.Feed.Profile(ctx, chi.URLParam(r, "username"), viewer, paging.ParsePage(r))
	if err != nil {
		h.fail(w, r, "load profile failed", err)
		return
	}
	data := profileData{
		BaseVM:      viewdata.NewBaseVM(r, "Profile of "+pp.Author.DisplayName(), "/"),
		ProfilePage: pp,
		IsOwn:       viewer != nil && *viewer == pp.Author.ID,
	}
	if pp.Following != nil && !data.IsOwn {
		data.ShowFollow = true
		data.IsFollowing = *pp.Following
	}
	templates.Render(w, r, "posts_profile", data)
}

// FollowIndex serves posts by the authors the viewer follows.
// GET /follow/
func (h *Handler) FollowIndex(w http.ResponseWriter, r *http.Request) {
	viewer := viewerID(r)
	if viewer == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Feed.Following(ctx, *viewer, paging.ParsePage(r))
	if err != nil {
		h.fail(w, r, "load follow feed failed", err)
		return
	}
	templates.Render(w, r, "posts_follow", indexData{
		BaseVM: viewdata.NewBaseVM(r, "Authors you follow", "/"),
		Feed:   p,
	})
}
