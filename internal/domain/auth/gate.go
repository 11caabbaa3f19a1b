package auth

import (
	"github.com/go-faster/errors"
)

// Nav is the visibility of the navigation affordances.
type Nav struct {
	Login   bool
	Signup  bool
	Account bool
	Logout  bool
}

// NavFor returns the navigation state for a signed-in or anonymous user.
func NavFor(authenticated bool) Nav {
	return Nav{
		Login:   !authenticated,
		Signup:  !authenticated,
		Account: authenticated,
		Logout:  authenticated,
	}
}

// Gate answers "is a bearer token present". It is cosmetic only: the
// backend authorizes every call on its own.
type Gate struct {
	store Store
}

// NewGate creates a Gate over store.
func NewGate(store Store) *Gate {
	return &Gate{store: store}
}

// Token returns the stored access token, or "" when there is none or it
// cannot be read.
func (g *Gate) Token() string {
	t, err := g.store.Load()
	if err != nil {
		return ""
	}
	return t.Access
}

// Authenticated reports whether an access token is stored.
func (g *Gate) Authenticated() bool {
	return g.Token() != ""
}

// Nav returns the navigation state for the stored token.
func (g *Gate) Nav() Nav {
	return NavFor(g.Authenticated())
}

// SignIn stores the tokens issued at login.
func (g *Gate) SignIn(t Tokens) error {
	if t.Access == "" {
		return errors.New("empty access token")
	}
	if err := g.store.Save(t); err != nil {
		return errors.Wrap(err, "save tokens")
	}
	return nil
}

// Logout drops both stored tokens.
func (g *Gate) Logout() error {
	if err := g.store.Clear(); err != nil {
		return errors.Wrap(err, "clear tokens")
	}
	return nil
}
