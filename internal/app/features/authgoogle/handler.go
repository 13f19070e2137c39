// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/yatube/internal/app/store"
	"github.com/dalemusser/yatube/internal/app/system/auth"
	"github.com/dalemusser/yatube/internal/app/system/normalize"
	"github.com/dalemusser/yatube/internal/app/system/timeouts"
	"github.com/dalemusser/yatube/internal/domain/models"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	stateCookie = "yatube-oauth-state"
	stateTTL    = 10 * time.Minute

	DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// UserStore is the part of the user store Google sign-in needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
}

// LoginRecorder keeps a history of successful sign-ins.
type LoginRecorder interface {
	CreateFrom(ctx context.Context, r *http.Request, userID primitive.ObjectID, provider string) error
}

// Handler handles Google OAuth authentication.
type Handler struct {
	Users      UserStore
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	Logins     LoginRecorder // optional

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://yatube.example/auth/google/callback/"
	Endpoint     oauth2.Endpoint
	UserInfoURL  string

	cookies *securecookie.SecureCookie
	secure  bool
}

// NewHandler creates a Google OAuth handler. hashKey signs the short-lived
// state cookie; secure marks it HTTPS-only.
func NewHandler(
	users UserStore,
	sessionMgr *auth.SessionManager,
	clientID, clientSecret, baseURL string,
	hashKey []byte,
	secure bool,
	logger *zap.Logger,
) *Handler {
	sc := securecookie.New(hashKey, nil)
	sc.MaxAge(int(stateTTL.Seconds()))
	return &Handler{
		Users:        users,
		SessionMgr:   sessionMgr,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  strings.TrimRight(baseURL, "/") + "/auth/google/callback/",
		Endpoint:     google.Endpoint,
		UserInfoURL:  DefaultUserInfoURL,
		cookies:      sc,
		secure:       secure,
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: h.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// oauthState travels in a signed cookie between the two legs of the flow.
type oauthState struct {
	State string
	Next  string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/                                                            |
| Redirects to Google's consent screen.                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		h.redirectToLogin(w, r, "google_not_configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}
	next := auth.SafeNext(query.Get(r, "next"), "")

	encoded, err := h.cookies.Encode(stateCookie, oauthState{State: state, Next: next})
	if err != nil {
		h.Log.Error("failed to encode OAuth state", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    encoded,
		Path:     "/auth/google/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	dest := h.oauth2Config().AuthCodeURL(state)
	h.Log.Debug("initiating Google OAuth flow", zap.String("next", next))
	http.Redirect(w, r, dest, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback/                                                   |
| Exchanges the code, fetches the profile, finds or creates the user and       |
| signs them in.                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		h.redirectToLogin(w, r, "google_denied")
		return
	}

	st, ok := h.readState(r)
	h.clearState(w)
	if !ok || st.State == "" || st.State != r.URL.Query().Get("state") {
		h.Log.Warn("invalid or expired OAuth state")
		h.redirectToLogin(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.redirectToLogin(w, r, "invalid_code")
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	token, err := h.oauth2Config().Exchange(ctxTimeout, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.redirectToLogin(w, r, "token_exchange")
		return
	}

	info, err := h.fetchUserInfo(ctxTimeout, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		h.redirectToLogin(w, r, "user_info")
		return
	}
	if !info.EmailVerified || info.Email == "" {
		h.Log.Info("Google OAuth: unverified email", zap.String("google_id", info.ID))
		h.redirectToLogin(w, r, "unverified_email")
		return
	}

	u, err := h.findOrCreateUser(ctxTimeout, info)
	if err != nil {
		h.Log.Error("failed to resolve Google user", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Name:     u.DisplayName(),
	}); err != nil {
		h.Log.Error("save session failed", zap.Error(err))
		h.redirectToLogin(w, r, "session")
		return
	}
	h.Log.Info("login success", zap.String("user_id", u.ID.Hex()), zap.String("auth_method", models.AuthGoogle))
	if h.Logins != nil {
		if err := h.Logins.CreateFrom(ctxTimeout, r, u.ID, models.ProviderGoogle); err != nil {
			h.Log.Warn("record login failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		}
	}
	http.Redirect(w, r, auth.SafeNext(st.Next, "/"), http.StatusSeeOther)
}

func (h *Handler) readState(r *http.Request) (oauthState, bool) {
	c, err := r.Cookie(stateCookie)
	if err != nil {
		return oauthState{}, false
	}
	var st oauthState
	if err := h.cookies.Decode(stateCookie, c.Value, &st); err != nil {
		return oauthState{}, false
	}
	return st, true
}

func (h *Handler) clearState(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/auth/google/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| User lookup                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

func (h *Handler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(h.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// findOrCreateUser signs in the account owning the verified email, or
// registers a new Google account with a username taken from the address.
func (h *Handler) findOrCreateUser(ctx context.Context, info *googleUserInfo) (models.User, error) {
	email := normalize.Email(info.Email)
	u, err := h.Users.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, err
	}

	base := usernameFromEmail(email)
	for i := 0; i < 20; i++ {
		candidate := base
		if i > 0 {
			candidate = base + strconv.Itoa(i)
		}
		u, err := h.Users.Create(ctx, models.User{
			Username:   candidate,
			FullName:   normalize.Name(info.Name),
			Email:      email,
			AuthMethod: models.AuthGoogle,
		})
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			return models.User{}, err
		}
		h.Log.Info("user registered via Google", zap.String("user_id", u.ID.Hex()), zap.String("username", u.Username))
		return u, nil
	}
	return models.User{}, fmt.Errorf("no free username for %q", base)
}

// usernameFromEmail keeps the characters usernames allow from the local part.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '+', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

func (h *Handler) redirectToLogin(w http.ResponseWriter, r *http.Request, errorCode string) {
	http.Redirect(w, r, auth.LoginPath+"?error="+url.QueryEscape(errorCode), http.StatusSeeOther)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
