package login_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	uierrors "github.com/dalemusser/yatube/internal/app/features/errors"
	"github.com/dalemusser/yatube/internal/app/features/login"
	"github.com/dalemusser/yatube/internal/app/system/auth"
	"github.com/dalemusser/yatube/internal/app/system/authutil"
	"github.com/dalemusser/yatube/internal/app/system/ratelimit"
	"github.com/dalemusser/yatube/internal/domain/models"
	"github.com/dalemusser/yatube/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, googleEnabled bool) (*login.Handler, *testutil.Fixtures) {
	t.Helper()
	testutil.BootTemplates(t)
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	fx := testutil.NewFixtures(t)
	h := login.NewHandler(fx.DB().Users(), sessionMgr, uierrors.NewErrorLogger(logger), googleEnabled, logger)
	return h, fx
}

func createPasswordUser(t *testing.T, fx *testutil.Fixtures, username, password string) models.User {
	t.Helper()
	hash, err := authutil.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	u, err := fx.DB().Users().Create(context.Background(), models.User{
		Username:     username,
		FullName:     "Lev Tolstoy",
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func hasSessionCookie(rec *testutil.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge >= 0 {
			return true
		}
	}
	return false
}

func TestServeLogin_CarriesNext(t *testing.T) {
	h, _ := newTestHandler(t, false)

	rec := testutil.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/login/?next=%2Fcreate%2F", nil)
	h.ServeLogin(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `name="next" value="/create/"`)
	rec.AssertNotContains(t, "Sign in with Google")

	rec = testutil.NewRecorder()
	req = httptest.NewRequest("GET", "/auth/login/?next=https://evil.example/", nil)
	h.ServeLogin(rec, req)
	rec.AssertNotContains(t, "evil.example")

	rec = testutil.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/login/?error=invalid_state", nil))
	rec.AssertContains(t, "Your sign-in attempt expired.")
}

func TestHandleLoginPost(t *testing.T) {
	h, fx := newTestHandler(t, false)
	createPasswordUser(t, fx, "leo", "war-and-peace")

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantLoc    string
		wantBody   string
	}{
		{"success goes to index", url.Values{"username": {"leo"}, "password": {"war-and-peace"}}, http.StatusSeeOther, "/", ""},
		{"username is case-insensitive", url.Values{"username": {"LEO"}, "password": {"war-and-peace"}}, http.StatusSeeOther, "/", ""},
		{"success honours next", url.Values{"username": {"leo"}, "password": {"war-and-peace"}, "next": {"/follow/"}}, http.StatusSeeOther, "/follow/", ""},
		{"external next ignored", url.Values{"username": {"leo"}, "password": {"war-and-peace"}, "next": {"//evil.example/"}}, http.StatusSeeOther, "/", ""},
		{"wrong password", url.Values{"username": {"leo"}, "password": {"anna-karenina"}}, http.StatusOK, "", "Please enter a correct username and password."},
		{"unknown user", url.Values{"username": {"ghost"}, "password": {"x"}}, http.StatusOK, "", "Please enter a correct username and password."},
		{"missing fields", url.Values{"username": {"leo"}}, http.StatusOK, "", "Please enter your username and password."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleLoginPost(rec, testutil.NewForm("/auth/login/", tt.form))
			rec.AssertStatus(t, tt.wantStatus)
			if tt.wantLoc != "" {
				rec.AssertRedirect(t, tt.wantLoc)
				if !hasSessionCookie(rec) {
					t.Error("expected session cookie to be set")
				}
			}
			if tt.wantBody != "" {
				rec.AssertContains(t, tt.wantBody)
				if hasSessionCookie(rec) {
					t.Error("expected no session cookie on failure")
				}
			}
		})
	}
}

func TestHandleLoginPost_RecordsSignIn(t *testing.T) {
	h, fx := newTestHandler(t, false)
	h.Logins = fx.DB().Logins()
	u := createPasswordUser(t, fx, "leo", "war-and-peace")

	rec := testutil.NewRecorder()
	h.HandleLoginPost(rec, testutil.NewForm("/auth/login/", url.Values{"username": {"leo"}, "password": {"war-and-peace"}}))
	rec.AssertRedirect(t, "/")

	recs, err := fx.DB().Logins().RecentByUser(context.Background(), u.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Provider != models.ProviderPassword {
		t.Errorf("login history = %+v", recs)
	}
}

func TestHandleLoginPost_RateLimited(t *testing.T) {
	h, fx := newTestHandler(t, false)
	h.Limiter = ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer h.Limiter.Stop()
	createPasswordUser(t, fx, "leo", "war-and-peace")

	for i := 0; i < 2; i++ {
		rec := testutil.NewRecorder()
		h.HandleLoginPost(rec, testutil.NewForm("/auth/login/", url.Values{"username": {"leo"}, "password": {"wrong"}}))
		rec.AssertContains(t, "Please enter a correct username and password.")
	}

	// The right password is refused once the account's window is used up.
	rec := testutil.NewRecorder()
	h.HandleLoginPost(rec, testutil.NewForm("/auth/login/", url.Values{"username": {"leo"}, "password": {"war-and-peace"}}))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Too many login attempts for this account.")
	if hasSessionCookie(rec) {
		t.Error("expected no session cookie when rate limited")
	}
}

func TestHandleLoginPost_GoogleAccount(t *testing.T) {
	h, fx := newTestHandler(t, true)
	if _, err := fx.DB().Users().Create(context.Background(), models.User{
		Username: "anna", Email: "anna@example.com", AuthMethod: models.AuthGoogle,
	}); err != nil {
		t.Fatal(err)
	}

	rec := testutil.NewRecorder()
	h.HandleLoginPost(rec, testutil.NewForm("/auth/login/", url.Values{
		"username": {"anna"}, "password": {"anything"}, "next": {"/follow/"},
	}))
	rec.AssertRedirect(t, "/auth/google/?next=%2Ffollow%2F")
}

func TestHandleSignup(t *testing.T) {
	h, fx := newTestHandler(t, false)
	ctx := context.Background()

	rec := testutil.NewRecorder()
	h.HandleSignup(rec, testutil.NewForm("/auth/signup/", url.Values{
		"first_name": {"Lev"},
		"last_name":  {"Tolstoy"},
		"username":   {"leo"},
		"email":      {"Leo@Example.com"},
		"password1":  {"war-and-peace"},
		"password2":  {"war-and-peace"},
	}))
	rec.AssertRedirect(t, "/")
	if !hasSessionCookie(rec) {
		t.Error("expected the new user to be signed in")
	}

	u, err := fx.DB().Users().GetByUsername(ctx, "leo")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if u.FullName != "Lev Tolstoy" || u.Email != "leo@example.com" {
		t.Errorf("unexpected user %+v", u)
	}
	if !authutil.CheckPassword("war-and-peace", u.PasswordHash) {
		t.Error("stored hash does not match the password")
	}
}

func TestHandleSignup_Invalid(t *testing.T) {
	h, fx := newTestHandler(t, false)
	fx.CreateUser("taken")

	base := func() url.Values {
		return url.Values{"username": {"leo"}, "password1": {"war-and-peace"}, "password2": {"war-and-peace"}}
	}
	tests := []struct {
		name   string
		modify func(url.Values)
		want   string
	}{
		{"missing username", func(v url.Values) { v.Set("username", "") }, "Username is required."},
		{"bad username", func(v url.Values) { v.Set("username", "leo tolstoy") }, "Username may contain only"},
		{"taken username", func(v url.Values) { v.Set("username", "TAKEN") }, "A user with that username already exists."},
		{"bad email", func(v url.Values) { v.Set("email", "not-an-email") }, "A valid email address is required."},
		{"mismatch", func(v url.Values) { v.Set("password2", "something-else") }, "Password confirmation does not match."},
		{"short password", func(v url.Values) { v.Set("password1", "short"); v.Set("password2", "short") }, "This password is too short."},
		{"common password", func(v url.Values) { v.Set("password1", "password"); v.Set("password2", "password") }, "This password is too common."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := base()
			tt.modify(form)
			rec := testutil.NewRecorder()
			h.HandleSignup(rec, testutil.NewForm("/auth/signup/", form))
			rec.AssertStatus(t, http.StatusOK)
			rec.AssertContains(t, tt.want)
		})
	}

	if _, err := fx.DB().Users().GetByUsername(context.Background(), "leo"); err == nil {
		t.Error("no user should have been created")
	}
}
