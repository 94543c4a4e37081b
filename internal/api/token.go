package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore keeps the auth token in a file readable only by the user.
// The platform issues opaque DRF tokens; JWT-shaped tokens are also
// accepted and treated as absent once their exp claim has passed. The
// signature is never checked here, the server does that.
type TokenStore struct {
	path string

	mu    sync.Mutex
	fixed string // from the environment, never persisted
	now   func() time.Time
}

// NewTokenStore returns a store backed by path. A non-empty fixed token
// overrides the file and is never written or cleared.
func NewTokenStore(path, fixed string) *TokenStore {
	return &TokenStore{path: path, fixed: strings.TrimSpace(fixed), now: time.Now}
}

// Path is the token file location.
func (s *TokenStore) Path() string { return s.path }

// Token returns the current token, or "" when none is stored or it has
// expired.
func (s *TokenStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.rawToken()
	if err != nil || tok == "" {
		return "", err
	}
	if exp, ok := jwtExpiry(tok); ok && !exp.After(s.now()) {
		return "", nil
	}
	return tok, nil
}

// Set writes token to the file with 0600 permissions.
func (s *TokenStore) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(s.path, 0o600)
}

// Clear removes the stored token. A missing file is not an error.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Expiry returns the exp claim of a JWT-shaped token.
func (s *TokenStore) Expiry() (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.rawToken()
	if err != nil || tok == "" {
		return time.Time{}, false, err
	}
	exp, ok := jwtExpiry(tok)
	return exp, ok, nil
}

func (s *TokenStore) rawToken() (string, error) {
	if s.fixed != "" {
		return s.fixed, nil
	}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func jwtExpiry(tok string) (time.Time, bool) {
	if strings.Count(tok, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
