// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/dalemusser/yatube/internal/app/features/errors"
	"github.com/dalemusser/yatube/internal/app/store"
	"github.com/dalemusser/yatube/internal/app/system/auth"
	"github.com/dalemusser/yatube/internal/app/system/authutil"
	"github.com/dalemusser/yatube/internal/app/system/ratelimit"
	"github.com/dalemusser/yatube/internal/app/system/timeouts"
	"github.com/dalemusser/yatube/internal/app/system/viewdata"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserStore is the part of the user store sign-in and sign-up need.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
}

// LoginRecorder keeps a history of successful sign-ins.
type LoginRecorder interface {
	CreateFrom(ctx context.Context, r *http.Request, userID primitive.ObjectID, provider string) error
}

// Handler serves sign-in and sign-up. Limiter and Logins are optional.
type Handler struct {
	Users         UserStore
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
	GoogleEnabled bool
	Limiter       *ratelimit.LoginLimiter
	Logins        LoginRecorder
}

func NewHandler(users UserStore, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, googleEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		Users:         users,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		Log:           logger,
		GoogleEnabled: googleEnabled,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Username      string
	Next          string
	GoogleEnabled bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/login/                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Log in", "/"),
		Error:         errorMessage(query.Get(r, "error")),
		Next:          auth.SafeNext(query.Get(r, "next"), ""),
		GoogleEnabled: h.GoogleEnabled,
	})
}

// errorMessage explains the error codes the Google callback redirects with.
func errorMessage(code string) string {
	switch code {
	case "":
		return ""
	case "google_not_configured":
		return "Google sign-in is not configured."
	case "google_denied":
		return "Google sign-in was cancelled."
	case "invalid_state":
		return "Your sign-in attempt expired. Please try again."
	case "unverified_email":
		return "Your Google email address is not verified."
	default:
		return "Google sign-in failed. Please try again."
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/login/                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", auth.LoginPath)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	next := auth.SafeNext(r.PostFormValue("next"), "")
	if username == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your username and password.", username, next)
		return
	}

	if h.Limiter != nil {
		if msg, ok := h.Limiter.Check(r, username); !ok {
			h.Log.Warn("login rate limited", zap.String("username", username), zap.String("ip", ratelimit.ClientIP(r)))
			h.renderFormWithError(w, r, msg, username, next)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.Log.Info("login failed", zap.String("username", username), zap.String("reason", "unknown user"))
		h.renderFormWithError(w, r, "Please enter a correct username and password.", username, next)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.", auth.LoginPath)
		return
	}

	if !authutil.UsesPassword(u.AuthMethod) {
		if h.GoogleEnabled {
			dest := "/auth/google/"
			if next != "" {
				dest += "?next=" + url.QueryEscape(next)
			}
			http.Redirect(w, r, dest, http.StatusSeeOther)
			return
		}
		h.renderFormWithError(w, r, "This account uses Google sign-in, which is not configured.", username, next)
		return
	}

	if !authutil.CheckPassword(password, u.PasswordHash) {
		h.Log.Info("login failed", zap.String("username", username), zap.String("reason", "bad password"))
		h.renderFormWithError(w, r, "Please enter a correct username and password.", username, next)
		return
	}

	h.signInAndRedirect(w, r, u, next)
}

// signInAndRedirect writes the session cookie and sends the user to next,
// or the index when next is empty.
func (h *Handler) signInAndRedirect(w http.ResponseWriter, r *http.Request, u models.User, next string) {
	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Name:     u.DisplayName(),
	}); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("username", u.Username))
		h.renderFormWithError(w, r, "Unable to create session. Please try again.", u.Username, next)
		return
	}
	h.Log.Info("login success", zap.String("user_id", u.ID.Hex()), zap.String("username", u.Username))
	if h.Limiter != nil {
		h.Limiter.ResetUsername(u.Username)
	}
	h.recordLogin(r, u)
	http.Redirect(w, r, auth.SafeNext(next, "/"), http.StatusSeeOther)
}

// recordLogin writes the sign-in history entry. A failure is logged and
// does not block the sign-in.
func (h *Handler) recordLogin(r *http.Request, u models.User) {
	if h.Logins == nil {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if err := h.Logins.CreateFrom(ctx, r, u.ID, models.ProviderPassword); err != nil {
		h.Log.Warn("record login failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, username, next string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Log in", "/"),
		Error:         msg,
		Username:      username,
		Next:          next,
		GoogleEnabled: h.GoogleEnabled,
	})
}
