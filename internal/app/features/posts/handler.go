// internal/app/features/posts/handler.go
package posts

import (
	"context"
	"errors"
	"io"
	"net/http"

	uierrors "github.com/dalemusser/yatube/internal/app/features/errors"
	"github.com/dalemusser/yatube/internal/app/feed"
	"github.com/dalemusser/yatube/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ImageStore keeps uploaded post images. SaveImage returns the media key
// recorded on the post; DeleteImage drops a key that is no longer used.
type ImageStore interface {
	SaveImage(ctx context.Context, r io.Reader) (string, error)
	DeleteImage(ctx context.Context, key string) error
}

// Handler serves feeds, post pages, the post form, comments and follows.
type Handler struct {
	Feed   *feed.Service
	Media  ImageStore
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(svc *feed.Service, media ImageStore, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Feed: svc, Media: media, ErrLog: errLog, Log: logger}
}

// viewerID is the signed-in user's ObjectID, or nil.
func viewerID(r *http.Request) *primitive.ObjectID {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return nil
	}
	return &oid
}

// fail renders 404 for not-found errors and logs everything else as a 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, feed.ErrNotFound) {
		uierrors.RenderNotFound(w, r)
		return
	}
	h.ErrLog.LogServerError(w, r, msg, err, "A database error occurred.", "/")
}

func postURL(id primitive.ObjectID) string {
	return "/posts/" + id.Hex() + "/"
}
