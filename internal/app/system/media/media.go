// Package media keeps uploaded post images in a waffle storage backend and
// serves them back under a URL prefix.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageBytes caps an uploaded image.
const MaxImageBytes = 5 << 20

var (
	ErrNotImage = errors.New("file is not a supported image")
	ErrTooLarge = errors.New("image is too large")
)

var allowed = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Images stores post images under posts/ in store.
type Images struct {
	store     storage.Store
	urlPrefix string
}

// New wraps an existing store. urlPrefix is where Handler is mounted.
func New(store storage.Store, urlPrefix string) *Images {
	if !strings.HasPrefix(urlPrefix, "/") {
		urlPrefix = "/" + urlPrefix
	}
	return &Images{store: store, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// NewLocal keeps images on disk under root.
func NewLocal(root, urlPrefix string) (*Images, error) {
	im := New(nil, urlPrefix)
	local, err := storage.NewLocal(storage.LocalConfig{BasePath: root, BaseURL: im.urlPrefix})
	if err != nil {
		return nil, fmt.Errorf("media storage: %w", err)
	}
	im.store = local
	return im, nil
}

// Store exposes the backend, mainly for tests.
func (im *Images) Store() storage.Store { return im.store }

// SaveImage stores r if its content is a supported image and returns the
// key to keep on the post. The key is posts/YYYY/MM/<uuid><ext>; the
// extension comes from the sniffed type, not the client's file name.
func (im *Images) SaveImage(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageBytes {
		return "", ErrTooLarge
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowed...) {
		return "", ErrNotImage
	}

	now := time.Now().UTC()
	key := path.Join("posts", fmt.Sprintf("%04d/%02d", now.Year(), int(now.Month())), uuid.NewString()+mt.Extension())
	opts := &storage.PutOptions{
		ContentType:  mt.String(),
		CacheControl: "public, max-age=31536000, immutable",
	}
	if err := im.store.Put(ctx, key, bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

// DeleteImage removes key. A key that is already gone is not an error.
func (im *Images) DeleteImage(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := im.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete image %s: %w", key, err)
	}
	return nil
}

// URL is the public address of key. Backends with their own public URL
// (S3, a CDN) answer directly; the rest go through Handler.
func (im *Images) URL(key string) string {
	if key == "" {
		return ""
	}
	if u := im.store.URL(key); u != "" {
		return u
	}
	return im.urlPrefix + "/" + storage.NormalizePath(key)
}

// Prefix is the URL path the files are served under.
func (im *Images) Prefix() string { return im.urlPrefix }

// Handler serves stored images. Mount it at Prefix().
func (im *Images) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		key := strings.TrimPrefix(r.URL.Path, im.urlPrefix)
		key = storage.NormalizePath(key)
		if err := storage.ValidatePath(key); err != nil || key == "." {
			http.NotFound(w, r)
			return
		}

		// Local files go through ServeFile for ranges and conditional GETs.
		if local, ok := im.store.(*storage.Local); ok {
			full, err := local.GetFullPath(key)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			st, err := os.Stat(full)
			if err != nil || st.IsDir() {
				http.NotFound(w, r)
				return
			}
			http.ServeFile(w, r, full)
			return
		}

		body, info, err := im.store.GetWithInfo(r.Context(), key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "could not read image", http.StatusInternalServerError)
			return
		}
		defer body.Close()
		if info != nil {
			if info.ContentType != "" {
				w.Header().Set("Content-Type", info.ContentType)
			}
			if info.Size > 0 {
				w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
			}
		}
		if r.Method == http.MethodHead {
			return
		}
		io.Copy(w, body)
	})
}
