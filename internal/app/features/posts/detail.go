// internal/app/features/posts/detail.go
package posts

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/dalemusser/yatube/internal/app/features/errors"
	"github.com/dalemusser/yatube/internal/app/feed"
	"github.com/dalemusser/yatube/internal/app/system/auth"
	"github.com/dalemusser/yatube/internal/app/system/htmlsanitize"
	"github.com/dalemusser/yatube/internal/app/system/inputval"
	"github.com/dalemusser/yatube/internal/app/system/timeouts"
	"github.com/dalemusser/yatube/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type detailData struct {
	viewdata.BaseVM
	feed.PostDetail
	CanEdit  bool
	LoginURL string
}

type commentInput struct {
	Text string `validate:"notblank,max=2000" label:"Comment"`
}

func postIDParam(r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return oid, err == nil
}

// Detail serves one post with its comments.
// GET /posts/{id}/
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDParam(r)
	if !ok {
		uierrors.RenderNotFound(w, r)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.Feed.PostDetail(ctx, id)
	if err != nil {
		h.fail(w, r, "load post failed", err)
		return
	}
	viewer := viewerID(r)
	templates.Render(w, r, "posts_detail", detailData{
		BaseVM:     viewdata.NewBaseVM(r, "Post "+d.Post.Author.DisplayName(), "/"),
		PostDetail: d,
		CanEdit:    viewer != nil && *viewer == d.Post.AuthorID,
		LoginURL:   auth.LoginURL(r.URL.RequestURI()),
	})
}

// AddComment saves a comment from the signed-in user and returns to the
// post. Invalid or non-POST submissions just return to the post.
// /posts/{id}/comment/
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDParam(r)
	if !ok {
		uierrors.RenderNotFound(w, r)
		return
	}
	viewer := viewerID(r)
	if r.Method != http.MethodPost || viewer == nil {
		http.Redirect(w, r, postURL(id), http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse comment form failed", err, "Invalid form data.", postURL(id))
		return
	}

	in := commentInput{Text: htmlsanitize.StripTags(r.PostFormValue("text"))}
	if res := inputval.Validate(in); res.HasErrors() {
		http.Redirect(w, r, postURL(id), http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if _, err := h.Feed.AddComment(ctx, *viewer, id, in.Text); err != nil {
		h.fail(w, r, "add comment failed", err)
		return
	}
	h.Log.Debug("comment added", zap.String("post_id", id.Hex()))
	http.Redirect(w, r, postURL(id), http.StatusSeeOther)
}
