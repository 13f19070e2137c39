// internal/app/features/login/signup.go
package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/yatube/internal/app/store"
	"github.com/dalemusser/yatube/internal/app/system/authutil"
	"github.com/dalemusser/yatube/internal/app/system/inputval"
	"github.com/dalemusser/yatube/internal/app/system/normalize"
	"github.com/dalemusser/yatube/internal/app/system/timeouts"
	"github.com/dalemusser/yatube/internal/app/system/viewdata"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.uber.org/zap"
)

type signupInput struct {
	FirstName string `validate:"max=150" label:"First name"`
	LastName  string `validate:"max=150" label:"Last name"`
	Username  string `validate:"required,max=150,username" label:"Username"`
	Email     string `validate:"omitempty,email,max=254" label:"Email"`
	Password1 string `validate:"required" label:"Password"`
	Password2 string `validate:"required,eqfield=Password1" label:"Password confirmation"`
}

type signupFormData struct {
	viewdata.BaseVM
	FirstName     string
	LastName      string
	Username      string
	Email         string
	PasswordRules string
	Errors        map[string]string
}

func (h *Handler) renderSignup(w http.ResponseWriter, r *http.Request, in signupInput, errs map[string]string) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign up", "/"),
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Username:      in.Username,
		Email:         in.Email,
		PasswordRules: authutil.PasswordRules(),
		Errors:        errs,
	})
}

// ServeSignup shows the registration form.
// GET /auth/signup/
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	h.renderSignup(w, r, signupInput{}, nil)
}

// HandleSignup creates a password account, signs it in and goes to the index.
// POST /auth/signup/
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/auth/signup/")
		return
	}

	in := signupInput{
		FirstName: normalize.Name(r.PostFormValue("first_name")),
		LastName:  normalize.Name(r.PostFormValue("last_name")),
		Username:  normalize.Username(r.PostFormValue("username")),
		Email:     normalize.Email(r.PostFormValue("email")),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}

	errs := inputval.Validate(in).ByField()
	if _, ok := errs["Password1"]; !ok {
		if err := authutil.ValidatePassword(in.Password1); err != nil {
			errs["Password1"] = authutil.PasswordMessage(err)
		}
	}
	if len(errs) > 0 {
		h.renderSignup(w, r, in, errs)
		return
	}

	hash, err := authutil.HashPassword(in.Password1)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "A server error occurred.", "/auth/signup/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	fullName := normalize.Name(in.FirstName + " " + in.LastName)
	u, err := h.Users.Create(ctx, models.User{
		Username:     in.Username,
		FullName:     fullName,
		Email:        in.Email,
		PasswordHash: hash,
		AuthMethod:   models.AuthPassword,
	})
	switch {
	case errors.Is(err, store.ErrDuplicate):
		h.renderSignup(w, r, in, map[string]string{"Username": "A user with that username already exists."})
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "create user failed", err, "A server error occurred.", "/auth/signup/")
		return
	}

	h.Log.Info("user signed up", zap.String("user_id", u.ID.Hex()), zap.String("username", u.Username))
	h.signInAndRedirect(w, r, u, "/")
}
