package account

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/xenking/bookverse-storefront/internal/domain/auth"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

// Profile is the signed-in user's account data.
type Profile struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

// ValidationError is a client-side form error. Message is shown as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Credentials are the login form inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate trims the credentials and checks both are present.
func (c *Credentials) Validate() error {
	c.Email = strings.TrimSpace(c.Email)
	c.Password = strings.TrimSpace(c.Password)
	if c.Email == "" || c.Password == "" {
		return &ValidationError{Message: "Please enter both email and password."}
	}
	return nil
}

// SignupForm is the registration form.
type SignupForm struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Password2   string `json:"password2"`
	AcceptTerms bool   `json:"-"`
}

// Validate trims the form and applies the client-side signup rules.
func (f *SignupForm) Validate() error {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Password = strings.TrimSpace(f.Password)
	f.Password2 = strings.TrimSpace(f.Password2)

	switch {
	case !f.AcceptTerms:
		return &ValidationError{Message: "Please accept the terms & conditions to continue."}
	case f.Username == "" || f.Email == "" || f.Password == "" || f.Password2 == "":
		return &ValidationError{Message: "Please complete all required fields."}
	case utf8.RuneCountInString(f.Password) < MinPasswordLength:
		return &ValidationError{Message: "Password must be at least 8 characters long."}
	case f.Password != f.Password2:
		return &ValidationError{Message: "Passwords do not match."}
	}
	return nil
}

// Repository is the backend's account API.
type Repository interface {
	Login(ctx context.Context, c Credentials) (auth.Tokens, error)
	Signup(ctx context.Context, f SignupForm) (*Profile, error)
	CurrentUser(ctx context.Context) (*Profile, error)
}
