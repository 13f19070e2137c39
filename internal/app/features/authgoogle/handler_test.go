package authgoogle_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/yatube/internal/app/features/authgoogle"
	"github.com/dalemusser/yatube/internal/app/system/auth"
	"github.com/dalemusser/yatube/internal/domain/models"
	"github.com/dalemusser/yatube/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type fakeGoogle struct {
	srv      *httptest.Server
	email    string
	verified bool
}

func newFakeGoogle(t *testing.T, email string, verified bool) *fakeGoogle {
	t.Helper()
	g := &fakeGoogle{email: email, verified: verified}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":             "g-123",
			"email":          g.email,
			"verified_email": g.verified,
			"name":           "Anna Karenina",
		})
	})
	g.srv = httptest.NewServer(mux)
	t.Cleanup(g.srv.Close)
	return g
}

func newTestHandler(t *testing.T, g *fakeGoogle) (*authgoogle.Handler, *testutil.Fixtures) {
	t.Helper()
	logger := zap.NewNop()
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	fx := testutil.NewFixtures(t)
	h := authgoogle.NewHandler(fx.DB().Users(), sessionMgr,
		"test-client-id", "test-client-secret", "http://localhost:8080",
		[]byte("state-hash-key-for-tests-32bytes"), false, logger)
	h.Logins = fx.DB().Logins()
	if g != nil {
		h.Endpoint = oauth2.Endpoint{
			AuthURL:   g.srv.URL + "/auth",
			TokenURL:  g.srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}
		h.UserInfoURL = g.srv.URL + "/userinfo"
	}
	return h, fx
}

// startFlow runs the first leg and returns the state and cookies to replay.
func startFlow(t *testing.T, h *authgoogle.Handler, next string) (string, []*http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google/?next="+url.QueryEscape(next), nil))
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect to Google, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Query().Get("client_id") != "test-client-id" {
		t.Errorf("client_id = %q", loc.Query().Get("client_id"))
	}
	if got := loc.Query().Get("redirect_uri"); got != "http://localhost:8080/auth/google/callback/" {
		t.Errorf("redirect_uri = %q", got)
	}
	return loc.Query().Get("state"), rec.Result().Cookies()
}

func callback(h *authgoogle.Handler, query string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/auth/google/callback/?"+query, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)
	return rec
}

func TestIsConfigured(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	if !h.IsConfigured() {
		t.Error("expected configured handler")
	}
	h.ClientSecret = ""
	if h.IsConfigured() {
		t.Error("expected unconfigured without a secret")
	}

	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google/", nil))
	if loc := rec.Header().Get("Location"); loc != auth.LoginPath+"?error=google_not_configured" {
		t.Errorf("Location = %q", loc)
	}
}

func TestCallback_CreatesUserAndSignsIn(t *testing.T) {
	g := newFakeGoogle(t, "Anna.K@example.com", true)
	h, fx := newTestHandler(t, g)

	state, cookies := startFlow(t, h, "/follow/")
	rec := callback(h, "state="+state+"&code=good-code", cookies)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/follow/" {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	u, err := fx.DB().Users().GetByEmail(context.Background(), "anna.k@example.com")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if u.Username != "anna.k" || u.AuthMethod != models.AuthGoogle || u.FullName != "Anna Karenina" {
		t.Errorf("unexpected user %+v", u)
	}
	var session bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			session = true
		}
	}
	if !session {
		t.Error("expected session cookie")
	}

	recs, _ := fx.DB().Logins().RecentByUser(context.Background(), u.ID, 10)
	if len(recs) != 1 || recs[0].Provider != models.ProviderGoogle {
		t.Errorf("login history = %+v", recs)
	}
}

func TestCallback_ExistingEmailAndUsernameClash(t *testing.T) {
	g := newFakeGoogle(t, "leo@example.com", true)
	h, fx := newTestHandler(t, g)
	// a different account already holds the username "leo"
	fx.CreateUser("leo")

	state, cookies := startFlow(t, h, "")
	rec := callback(h, "state="+state+"&code=good-code", cookies)
	if rec.Header().Get("Location") != "/" {
		t.Fatalf("Location = %q", rec.Header().Get("Location"))
	}
	u, err := fx.DB().Users().GetByEmail(context.Background(), "leo@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if u.Username != "leo1" {
		t.Errorf("username = %q, want leo1", u.Username)
	}

	// second sign-in reuses the account
	state, cookies = startFlow(t, h, "")
	callback(h, "state="+state+"&code=good-code", cookies)
	if _, err := fx.DB().Users().GetByUsername(context.Background(), "leo2"); err == nil {
		t.Error("expected no second account")
	}
}

func TestCallback_Rejections(t *testing.T) {
	g := newFakeGoogle(t, "anna@example.com", true)
	h, _ := newTestHandler(t, g)

	tests := []struct {
		name    string
		query   func(state string) string
		cookies bool
		want    string
	}{
		{"google error", func(string) string { return "error=access_denied" }, true, "google_denied"},
		{"missing cookie", func(s string) string { return "state=" + s + "&code=good-code" }, false, "invalid_state"},
		{"state mismatch", func(string) string { return "state=other&code=good-code" }, true, "invalid_state"},
		{"missing code", func(s string) string { return "state=" + s }, true, "invalid_code"},
		{"bad code", func(s string) string { return "state=" + s + "&code=bad" }, true, "token_exchange"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, cookies := startFlow(t, h, "")
			if !tt.cookies {
				cookies = nil
			}
			rec := callback(h, tt.query(state), cookies)
			if loc := rec.Header().Get("Location"); !strings.HasSuffix(loc, "error="+tt.want) {
				t.Errorf("Location = %q, want error=%s", loc, tt.want)
			}
		})
	}
}

func TestCallback_UnverifiedEmail(t *testing.T) {
	g := newFakeGoogle(t, "anna@example.com", false)
	h, fx := newTestHandler(t, g)

	state, cookies := startFlow(t, h, "")
	rec := callback(h, "state="+state+"&code=good-code", cookies)
	if loc := rec.Header().Get("Location"); loc != auth.LoginPath+"?error=unverified_email" {
		t.Errorf("Location = %q", loc)
	}
	if _, err := fx.DB().Users().GetByEmail(context.Background(), "anna@example.com"); err == nil {
		t.Error("unverified email must not create an account")
	}
}
