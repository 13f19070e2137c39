package pagecache

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/yatube/internal/app/system/auth"
	"github.com/dalemusser/yatube/internal/app/system/paging"
	"go.uber.org/zap"
)

// KeyFunc derives the cache key for a request.
type KeyFunc func(r *http.Request) string

// ViewerKey keys pages by path, page number and the signed-in user, so one
// viewer's navigation bar is never served to another. Anonymous viewers share
// entries. Other query parameters do not change a feed page and are left out
// of the key; a page number below 1 is keyed as page 1.
func ViewerKey(prefix string) KeyFunc {
	return func(r *http.Request) string {
		viewer := "anon"
		if u, ok := auth.CurrentUser(r); ok {
			viewer = u.ID
		}
		page := paging.ParsePage(r)
		if page < 1 {
			page = 1
		}
		return prefix + viewer + ":" + r.URL.Path + "?page=" + strconv.Itoa(page)
	}
}

// Middleware serves GET requests from cache and stores successful responses
// for ttl. Responses other than 200 pass through uncached. Cache errors are
// logged and the page is rendered normally.
func Middleware(c Cache, ttl time.Duration, key KeyFunc, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.Header.Get("HX-Request") == "true" {
				next.ServeHTTP(w, r)
				return
			}
			k := key(r)

			ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
			page, hit, err := c.Get(ctx, k)
			cancel()
			if err != nil {
				logger.Warn("page cache get failed", zap.String("key", k), zap.Error(err))
			}
			if hit {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				w.Write(page)
				return
			}

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			w.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(rec, r)

			if rec.status != http.StatusOK {
				return
			}
			ctx, cancel = context.WithTimeout(context.WithoutCancel(r.Context()), lookupTimeout)
			defer cancel()
			if err := c.Set(ctx, k, rec.buf.Bytes(), ttl); err != nil {
				logger.Warn("page cache set failed", zap.String("key", k), zap.Error(err))
			}
		})
	}
}

const lookupTimeout = 500 * time.Millisecond

// recorder writes through to the client while keeping a copy of the body.
type recorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	buf         bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}
