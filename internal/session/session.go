// Package session holds the authenticated state every API call depends on.
// The token is an explicit value with a lifecycle (set on login, cleared on
// logout or expiry), never an ambient global.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"procurepay/internal/model"
)

// ErrNotAuthenticated is returned when a call requires a session and none is
// active (or the active one has expired).
var ErrNotAuthenticated = errors.New("not authenticated")

// Session is the client's authenticated identity. The zero value is an
// anonymous session. Safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	token   string
	role    model.Role
	name    string
	expires time.Time // zero when the token carries no exp claim
}

// New returns an anonymous session.
func New() *Session {
	return &Session{}
}

// SetToken installs a bearer token, introspecting its claims for role, name
// and expiry. The signature is not verified here; only the backend holds the
// key, and the authoritative check happens server-side on every call.
func (s *Session) SetToken(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("malformed session token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.role = ""
	s.name = ""
	s.expires = time.Time{}

	if role, ok := claims["role"].(string); ok {
		s.role = model.Role(role)
	}
	if name, ok := claims["name"].(string); ok {
		s.name = name
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.expires = exp.Time
	}
	return nil
}

// Clear drops the token, returning the session to anonymous.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.role = ""
	s.name = ""
	s.expires = time.Time{}
}

// Token returns the active bearer token, or ErrNotAuthenticated when there is
// none or the local expiry has passed. A locally expired token is cleared so
// the caller re-authenticates instead of burning a round trip on a 401.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", ErrNotAuthenticated
	}
	if !s.expires.IsZero() && time.Now().After(s.expires) {
		s.token = ""
		s.role = ""
		s.name = ""
		s.expires = time.Time{}
		return "", fmt.Errorf("session expired: %w", ErrNotAuthenticated)
	}
	return s.token, nil
}

// Active reports whether a usable token is present.
func (s *Session) Active() bool {
	_, err := s.Token()
	return err == nil
}

// Role returns the role claim carried by the token.
func (s *Session) Role() model.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Name returns the display-name claim carried by the token.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// ExpiresAt returns the token expiry, or the zero time when unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expires
}

// tokenFile is the persisted shape, kept JSON for forward compatibility.
type tokenFile struct {
	Token string `json:"token"`
}

// Save persists the token to path so later CLI invocations reuse it.
func (s *Session) Save(path string) error {
	token, err := s.Token()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.Marshal(tokenFile{Token: token})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Load restores a previously saved token. A missing file leaves the session
// anonymous without error.
func (s *Session) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read token file: %w", err)
	}
	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("parse token file: %w", err)
	}
	if tf.Token == "" {
		return nil
	}
	return s.SetToken(tf.Token)
}

// Forget removes the persisted token file.
func Forget(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
