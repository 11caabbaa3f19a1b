package auth

import "github.com/go-faster/errors"

// ErrNoTokens is returned by a Store that holds no tokens.
var ErrNoTokens = errors.New("no stored tokens")

// Tokens is the bearer token pair issued at login.
type Tokens struct {
	Access  string
	Refresh string
}

// Store persists tokens between sessions.
type Store interface {
	// Load returns ErrNoTokens when nothing is stored.
	Load() (Tokens, error)
	Save(t Tokens) error
	Clear() error
}
