// Package localfs persists client state on the local filesystem.
package localfs

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/bookverse-storefront/internal/domain/auth"
)

// Compile-time check ensuring TokenStore satisfies auth.Store.
var _ auth.Store = (*TokenStore)(nil)

// TokenStore keeps the bearer token pair in a JSON file readable only by the
// current user.
type TokenStore struct {
	path string
}

// NewTokenStore creates a TokenStore backed by the file at path. The file
// and its directory are created on the first Save.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load reads the stored tokens. A missing file or an empty access token
// yields auth.ErrNoTokens.
func (s *TokenStore) Load() (auth.Tokens, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return auth.Tokens{}, auth.ErrNoTokens
	}
	if err != nil {
		return auth.Tokens{}, errors.Wrap(err, "read token file")
	}

	t, err := decodeTokens(data)
	if err != nil {
		return auth.Tokens{}, errors.Wrapf(err, "decode %s", s.path)
	}
	if t.Access == "" {
		return auth.Tokens{}, auth.ErrNoTokens
	}
	return t, nil
}

// Save replaces the stored tokens.
func (s *TokenStore) Save(t auth.Tokens) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create token dir")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tokens-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(encodeTokens(t)); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write tokens")
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "chmod tokens")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close tokens")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replace token file")
	}
	return nil
}

// Clear removes the token file. Clearing an empty store is not an error.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove token file")
	}
	return nil
}

func encodeTokens(t auth.Tokens) []byte {
	var e jx.Encoder
	e.SetIdent(2)
	e.Obj(func(e *jx.Encoder) {
		e.Field("access_token", func(e *jx.Encoder) { e.Str(t.Access) })
		e.Field("refresh_token", func(e *jx.Encoder) { e.Str(t.Refresh) })
	})
	return e.Bytes()
}

func decodeTokens(data []byte) (auth.Tokens, error) {
	var t auth.Tokens
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "access_token":
			v, err := d.Str()
			t.Access = v
			return err
		case "refresh_token":
			v, err := d.Str()
			t.Refresh = v
			return err
		default:
			return d.Skip()
		}
	})
	return t, err
}
