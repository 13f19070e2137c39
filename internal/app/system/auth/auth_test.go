package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/yatube/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func protected() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("protected content"))
	})
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "x", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestRequireSignedIn_NoUser_RedirectsWithNext(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(protected())

	req := httptest.NewRequest("GET", "/posts/abc/comment/?x=1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad Location: %v", err)
	}
	if loc.Path != auth.LoginPath {
		t.Errorf("redirect path = %q, want %q", loc.Path, auth.LoginPath)
	}
	if got := loc.Query().Get("next"); got != "/posts/abc/comment/?x=1" {
		t.Errorf("next = %q", got)
	}
}

func TestRequireSignedIn_NoUser_HTMX_ReturnsHXRedirect(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(protected())

	req := httptest.NewRequest("GET", "/create/", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != auth.LoginURL("/create/") {
		t.Errorf("HX-Redirect = %q", got)
	}
}

func TestRequireSignedIn_WithUser_Proceeds(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(protected())

	req := auth.WithTestUser(httptest.NewRequest("GET", "/follow/", nil), &auth.SessionUser{
		ID: "507f1f77bcf86cd799439011", Username: "leo",
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

type stubFetcher struct{ user *auth.SessionUser }

func (s stubFetcher) FetchUser(ctx context.Context, id string) *auth.SessionUser {
	if s.user != nil && s.user.ID == id {
		return s.user
	}
	return nil
}

// Signing in writes a cookie that LoadSessionUser turns back into a user.
func TestSignIn_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	want := auth.SessionUser{ID: "507f1f77bcf86cd799439011", Username: "leo", Name: "Lev Tolstoy"}

	rec := httptest.NewRecorder()
	if err := sm.SignIn(rec, httptest.NewRequest("POST", "/auth/login/", nil), want); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	check := func(t *testing.T, wantUser *auth.SessionUser) {
		t.Helper()
		req := httptest.NewRequest("GET", "/", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		var got *auth.SessionUser
		sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = auth.CurrentUser(r)
		})).ServeHTTP(httptest.NewRecorder(), req)

		if wantUser == nil {
			if got != nil {
				t.Errorf("expected no user, got %+v", got)
			}
			return
		}
		if got == nil || *got != *wantUser {
			t.Errorf("CurrentUser = %+v, want %+v", got, wantUser)
		}
	}

	t.Run("from cookie", func(t *testing.T) { check(t, &want) })

	t.Run("fetcher renames", func(t *testing.T) {
		renamed := &auth.SessionUser{ID: want.ID, Username: "lev", Name: "Lev"}
		sm.SetUserFetcher(stubFetcher{user: renamed})
		check(t, renamed)
	})

	t.Run("fetcher drops deleted user", func(t *testing.T) {
		sm.SetUserFetcher(stubFetcher{})
		check(t, nil)
	})
}

func TestSignOut_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	rec := httptest.NewRecorder()
	if err := sm.SignOut(rec, httptest.NewRequest("GET", "/auth/logout/", nil)); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expiring cookie, got %+v", cookies)
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/follow/", "/follow/"},
		{"/posts/1/?page=2", "/posts/1/?page=2"},
		{"https://evil.example/", "/"},
		{"//evil.example/", "/"},
		{"/\\evil.example", "/"},
		{"relative", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := auth.SafeNext(tt.in, "/"); got != tt.want {
				t.Errorf("SafeNext(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCurrentUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if u, ok := auth.CurrentUser(req); ok || u != nil {
		t.Fatal("expected no user")
	}

	req = auth.WithTestUser(req, &auth.SessionUser{ID: "1", Username: "leo"})
	u, ok := auth.CurrentUser(req)
	if !ok || u.Username != "leo" {
		t.Errorf("CurrentUser = %+v, %v", u, ok)
	}
}
