// internal/app/system/authutil/authutil.go
package authutil

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dalemusser/yatube/internal/domain/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes
	MaxPasswordLength = 72
	BcryptCost        = bcrypt.DefaultCost
)

var (
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordCommon   = errors.New("password is too common")
	ErrPasswordNumeric  = errors.New("password is entirely numeric")
)

var commonPasswords = map[string]bool{
	"password": true, "password1": true, "12345678": true, "123456789": true,
	"qwertyuiop": true, "iloveyou": true, "sunshine": true, "football": true,
	"baseball": true, "letmein1": true, "welcome1": true, "trustno1": true,
	"superman": true, "1q2w3e4r": true, "qwerty123": true, "abc12345": true,
}

// ValidatePassword applies the signup password rules.
func ValidatePassword(pw string) error {
	switch {
	case len(pw) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(pw) > MaxPasswordLength:
		return ErrPasswordTooLong
	case commonPasswords[strings.ToLower(pw)]:
		return ErrPasswordCommon
	}
	if strings.Trim(pw, "0123456789") == "" {
		return ErrPasswordNumeric
	}
	return nil
}

// PasswordRules is shown next to password fields.
func PasswordRules() string {
	return "At least " + strconv.Itoa(MinPasswordLength) +
		" characters, not entirely numeric, and not a commonly used password."
}

// PasswordMessage turns a ValidatePassword error into form text.
func PasswordMessage(err error) string {
	switch {
	case errors.Is(err, ErrPasswordTooShort):
		return "This password is too short. It must contain at least " + strconv.Itoa(MinPasswordLength) + " characters."
	case errors.Is(err, ErrPasswordTooLong):
		return "This password is too long."
	case errors.Is(err, ErrPasswordCommon):
		return "This password is too common."
	case errors.Is(err, ErrPasswordNumeric):
		return "This password is entirely numeric."
	}
	return "This password is not allowed."
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash. Malformed hashes never match.
func CheckPassword(pw, hash string) bool {
	if pw == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// UsesPassword reports whether the account signs in with a local password.
func UsesPassword(authMethod string) bool {
	return authMethod == "" || authMethod == models.AuthPassword
}

// EmailIsLogin reports whether the account is identified by its email
// address at an external provider.
func EmailIsLogin(authMethod string) bool {
	return authMethod == models.AuthGoogle
}
