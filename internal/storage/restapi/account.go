package restapi

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/bookverse-storefront/internal/domain/account"
	"github.com/xenking/bookverse-storefront/internal/domain/auth"
)

var _ account.Repository = (*AccountRepository)(nil)

// AccountRepository implements account.Repository over auth/.
type AccountRepository struct {
	c *Client
}

// NewAccountRepository returns an AccountRepository that uses the given client.
func NewAccountRepository(c *Client) *AccountRepository {
	return &AccountRepository{c: c}
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair. Sent without Authorization.
func (r *AccountRepository) Login(ctx context.Context, c account.Credentials) (auth.Tokens, error) {
	var pair tokenPair
	if _, err := r.c.do(ctx, call{
		op:     "auth.login",
		method: http.MethodPost,
		path:   "auth/login/",
		public: true,
		body:   c,
		result: &pair,
	}); err != nil {
		return auth.Tokens{}, err
	}
	if pair.Access == "" {
		return auth.Tokens{}, errors.New("auth.login: response has no access token")
	}
	return auth.Tokens{Access: pair.Access, Refresh: pair.Refresh}, nil
}

// Signup registers a new account. Sent without Authorization.
func (r *AccountRepository) Signup(ctx context.Context, f account.SignupForm) (*account.Profile, error) {
	var p account.Profile
	if _, err := r.c.do(ctx, call{
		op:     "auth.signup",
		method: http.MethodPost,
		path:   "auth/signup/",
		public: true,
		body:   f,
		result: &p,
	}); err != nil {
		return nil, err
	}
	return &p, nil
}

// CurrentUser returns the profile of the token holder.
func (r *AccountRepository) CurrentUser(ctx context.Context) (*account.Profile, error) {
	var p account.Profile
	if _, err := r.c.do(ctx, call{
		op:     "auth.user",
		method: http.MethodGet,
		path:   "auth/user/",
		result: &p,
	}); err != nil {
		return nil, err
	}
	return &p, nil
}
