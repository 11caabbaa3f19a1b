package apitest

import (
	"sync"

	"github.com/xenking/bookverse-storefront/internal/domain/auth"
)

// TokenStore is an in-memory auth.Store.
type TokenStore struct {
	mu     sync.Mutex
	tokens *auth.Tokens
}

var _ auth.Store = (*TokenStore)(nil)

// NewTokenStore returns a TokenStore, signed in with t when given.
func NewTokenStore(t ...auth.Tokens) *TokenStore {
	s := &TokenStore{}
	if len(t) > 0 {
		s.tokens = &t[0]
	}
	return s
}

func (s *TokenStore) Load() (auth.Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return auth.Tokens{}, auth.ErrNoTokens
	}
	return *s.tokens, nil
}

func (s *TokenStore) Save(t auth.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = &t
	return nil
}

func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = nil
	return nil
}
