package authutil

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		pw   string
		want error
	}{
		{"secure-tolstoy", nil},
		{"MyP@ssw0rd", nil},
		{"abcdefgh", nil},
		{"", ErrPasswordTooShort},
		{"short", ErrPasswordTooShort},
		{"abcdefg", ErrPasswordTooShort},
		{strings.Repeat("a", 73), ErrPasswordTooLong},
		{"password", ErrPasswordCommon},
		{"PASSWORD", ErrPasswordCommon},
		{"IloveYou", ErrPasswordCommon},
		{"20240301", ErrPasswordNumeric},
		{strings.Repeat("9", 30), ErrPasswordNumeric},
	}
	for _, tt := range tests {
		t.Run(tt.pw, func(t *testing.T) {
			if got := ValidatePassword(tt.pw); got != tt.want {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.pw, got, tt.want)
			}
		})
	}
}

func TestValidatePassword_AtMaxLength(t *testing.T) {
	if err := ValidatePassword(strings.Repeat("a", MaxPasswordLength)); err != nil {
		t.Errorf("expected password at max length to be valid, got %v", err)
	}
}

func TestHashPassword(t *testing.T) {
	hash1, err := HashPassword("war-and-peace")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	hash2, err := HashPassword("war-and-peace")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash1 == "war-and-peace" || !strings.HasPrefix(hash1, "$2") {
		t.Errorf("unexpected hash %q", hash1)
	}
	if hash1 == hash2 {
		t.Error("expected different hashes for same password (random salt)")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("war-and-peace")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPassword("war-and-peace", hash) {
		t.Error("expected correct password to match")
	}
	if CheckPassword("anna-karenina", hash) {
		t.Error("expected wrong password not to match")
	}
	if CheckPassword("", hash) {
		t.Error("expected empty password not to match")
	}
	if CheckPassword("war-and-peace", "not-a-valid-hash") {
		t.Error("expected invalid hash not to match")
	}
}

func TestPasswordRules(t *testing.T) {
	if !strings.Contains(PasswordRules(), "8") {
		t.Errorf("rules should mention the minimum length: %q", PasswordRules())
	}
	if PasswordMessage(ErrPasswordCommon) != "This password is too common." {
		t.Errorf("unexpected message %q", PasswordMessage(ErrPasswordCommon))
	}
}

func TestAuthMethods(t *testing.T) {
	if !UsesPassword("") || !UsesPassword("password") || UsesPassword("google") {
		t.Error("UsesPassword mismatch")
	}
	if !EmailIsLogin("google") || EmailIsLogin("password") {
		t.Error("EmailIsLogin mismatch")
	}
}
