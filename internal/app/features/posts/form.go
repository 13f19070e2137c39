// internal/app/features/posts/form.go
package posts

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/dalemusser/yatube/internal/app/features/errors"
	"github.com/dalemusser/yatube/internal/app/feed"
	"github.com/dalemusser/yatube/internal/app/system/auth"
	"github.com/dalemusser/yatube/internal/app/system/htmlsanitize"
	"github.com/dalemusser/yatube/internal/app/system/inputval"
	"github.com/dalemusser/yatube/internal/app/system/media"
	"github.com/dalemusser/yatube/internal/app/system/timeouts"
	"github.com/dalemusser/yatube/internal/app/system/viewdata"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// multipart bodies above this spill to temp files
const maxMemory = 8 << 20

type postInput struct {
	Text  string `validate:"notblank,max=10000" label:"Text"`
	Group string `validate:"omitempty,objectid" label:"Group"`
}

type formData struct {
	viewdata.BaseVM
	IsEdit   bool
	Action   string
	Text     string
	Group    string
	ImageURL string // current image on edit
	Groups   []models.Group
	Errors   map[string]string
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, fd formData) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	groups, err := h.Feed.Groups(ctx)
	if err != nil {
		h.fail(w, r, "load groups failed", err)
		return
	}
	fd.Groups = groups
	title := "New post"
	if fd.IsEdit {
		title = "Edit post"
	}
	fd.BaseVM = viewdata.NewBaseVM(r, title, "/")
	templates.Render(w, r, "posts_form", fd)
}

// readPostForm parses a create/edit submission into the service input and
// field errors. The uploaded file, if any, is returned unread; the caller
// closes it and stores it once the rest of the form has been accepted.
func (h *Handler) readPostForm(r *http.Request) (feed.PostInput, formData, multipart.File, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return feed.PostInput{}, formData{}, nil, err
	}
	in := postInput{
		Text:  htmlsanitize.StripTags(r.FormValue("text")),
		Group: strings.TrimSpace(r.FormValue("group")),
	}
	fd := formData{Text: in.Text, Group: in.Group, Errors: map[string]string{}}
	if res := inputval.Validate(in); res.HasErrors() {
		fd.Errors = res.ByField()
		return feed.PostInput{}, fd, nil, nil
	}

	out := feed.PostInput{Text: in.Text}
	if in.Group != "" {
		oid, _ := primitive.ObjectIDFromHex(in.Group)
		out.GroupID = &oid
	}

	file, _, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return out, fd, nil, nil
	case err != nil:
		return feed.PostInput{}, formData{}, nil, err
	}
	return out, fd, file, nil
}

// acceptPost runs the service checks and then stores the upload. Problems the
// author can fix land in fd.Errors; the returned error is for everything else.
func (h *Handler) acceptPost(ctx context.Context, in *feed.PostInput, fd *formData, file io.Reader) error {
	if len(fd.Errors) > 0 {
		return nil
	}
	if err := h.Feed.CheckPostInput(ctx, *in); err != nil {
		field, msg, ok := fieldErrorFor(err)
		if !ok {
			return err
		}
		fd.Errors[field] = msg
		return nil
	}
	if file == nil {
		return nil
	}
	if h.Media == nil {
		fd.Errors["Image"] = "Image uploads are disabled."
		return nil
	}
	key, err := h.Media.SaveImage(ctx, file)
	switch {
	case errors.Is(err, media.ErrNotImage):
		fd.Errors["Image"] = "Upload a JPEG, PNG, GIF or WebP image."
	case errors.Is(err, media.ErrTooLarge):
		fd.Errors["Image"] = "The image is too large."
	case err != nil:
		return err
	default:
		in.Image = key
	}
	return nil
}

// dropImage deletes an image no post points at. Failures are only logged.
func (h *Handler) dropImage(r *http.Request, key string) {
	if key == "" || h.Media == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Short())
	defer cancel()
	if err := h.Media.DeleteImage(ctx, key); err != nil {
		h.Log.Warn("delete image failed", zap.String("key", key), zap.Error(err))
	}
}

// fieldErrorFor maps service validation errors back onto the form.
func fieldErrorFor(err error) (field, msg string, ok bool) {
	switch {
	case errors.Is(err, feed.ErrUnknownGroup):
		return "Group", "Group is not a valid choice.", true
	case errors.Is(err, feed.ErrEmptyText):
		return "Text", "Text is required.", true
	}
	return "", "", false
}

// CreateForm shows an empty post form.
// GET /create/
func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, formData{Action: "/create/"})
}

// Create publishes a post and sends the author to their profile.
// POST /create/
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	viewer := viewerID(r)
	u, _ := auth.CurrentUser(r)
	if viewer == nil || u == nil {
		http.Redirect(w, r, auth.LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
		return
	}

	in, fd, file, err := h.readPostForm(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse post form failed", err, "Invalid form data.", "/create/")
		return
	}
	if file != nil {
		defer file.Close()
	}
	fd.Action = "/create/"

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if err := h.acceptPost(ctx, &in, &fd, file); err != nil {
		h.ErrLog.LogServerError(w, r, "create post failed", err, "Could not save the post.", "/create/")
		return
	}
	if len(fd.Errors) > 0 {
		h.renderForm(w, r, fd)
		return
	}

	p, err := h.Feed.CreatePost(ctx, *viewer, in)
	if err != nil {
		h.dropImage(r, in.Image)
		if field, msg, ok := fieldErrorFor(err); ok {
			fd.Errors[field] = msg
			h.renderForm(w, r, fd)
			return
		}
		h.ErrLog.LogServerError(w, r, "create post failed", err, "Could not save the post.", "/create/")
		return
	}
	h.Log.Debug("post published", zap.String("post_id", p.ID.Hex()))
	http.Redirect(w, r, "/profile/"+u.Username+"/", http.StatusSeeOther)
}

// editable loads the post for the edit screens. It writes the response and
// returns false when the request should not continue.
func (h *Handler) editable(w http.ResponseWriter, r *http.Request) (models.Post, bool) {
	id, ok := postIDParam(r)
	if !ok {
		uierrors.RenderNotFound(w, r)
		return models.Post{}, false
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Feed.Editable(ctx, viewerID(r), id)
	switch {
	case errors.Is(err, feed.ErrNotAuthor):
		http.Redirect(w, r, postURL(id), http.StatusSeeOther)
		return models.Post{}, false
	case err != nil:
		h.fail(w, r, "load post for edit failed", err)
		return models.Post{}, false
	}
	return p, true
}

// EditForm shows the post form filled with the current content.
// GET /posts/{id}/edit/
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	p, ok := h.editable(w, r)
	if !ok {
		return
	}
	fd := formData{IsEdit: true, Action: postURL(p.ID) + "edit/", Text: p.Text, ImageURL: h.Feed.ImageURL(p.Image)}
	if p.GroupID != nil {
		fd.Group = p.GroupID.Hex()
	}
	h.renderForm(w, r, fd)
}

// Edit saves the author's changes and returns to the post.
// POST /posts/{id}/edit/
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.editable(w, r)
	if !ok {
		return
	}

	in, fd, file, err := h.readPostForm(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse post form failed", err, "Invalid form data.", postURL(p.ID))
		return
	}
	if file != nil {
		defer file.Close()
	}
	fd.IsEdit = true
	fd.Action = postURL(p.ID) + "edit/"
	fd.ImageURL = h.Feed.ImageURL(p.Image)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if err := h.acceptPost(ctx, &in, &fd, file); err != nil {
		h.fail(w, r, "edit post failed", err)
		return
	}
	if len(fd.Errors) > 0 {
		h.renderForm(w, r, fd)
		return
	}

	err = h.Feed.EditPost(ctx, viewerID(r), p.ID, in)
	if err != nil {
		h.dropImage(r, in.Image)
	}
	switch {
	case errors.Is(err, feed.ErrNotAuthor):
		http.Redirect(w, r, postURL(p.ID), http.StatusSeeOther)
		return
	case err != nil:
		if field, msg, ok := fieldErrorFor(err); ok {
			fd.Errors[field] = msg
			h.renderForm(w, r, fd)
			return
		}
		h.fail(w, r, "edit post failed", err)
		return
	}
	if in.Image != "" && p.Image != "" && in.Image != p.Image {
		h.dropImage(r, p.Image)
	}
	h.Log.Info("post edited", zap.String("post_id", p.ID.Hex()))
	http.Redirect(w, r, postURL(p.ID), http.StatusSeeOther)
}
