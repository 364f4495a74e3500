// Package client provides a Go client for the inkwell API: a Session manager
// holding the issued token and user profile with an explicit lifecycle
// (hydrate from disk, save after login, clear on logout), and a Client that
// wraps every REST operation.
package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/user/inkwell-go/auth"
)

// ErrNotAuthenticated is returned by operations that require a session when
// none is loaded.
var ErrNotAuthenticated = errors.New("not authenticated")

// sessionState is the persisted shape of a session.
type sessionState struct {
	Token string        `json:"token"`
	User  auth.UserInfo `json:"user"`
}

// Session holds the issued token and the user profile it belongs to, and
// persists them to a single JSON file. It replaces ambient global auth
// state with an injectable object owning its init and teardown:
// Hydrate loads whatever a previous run saved, Save stores a fresh login,
// Clear wipes it on logout or expiry.
type Session struct {
	mu    sync.RWMutex
	path  string
	state *sessionState
}

// NewSession creates a session persisted at the given file path.
func NewSession(path string) *Session {
	return &Session{path: path}
}

// DefaultSessionPath returns the conventional session file location under
// the user's config directory.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "inkwell", "session.json"), nil
}

// Hydrate loads a previously persisted session. A missing file is not an
// error; it just leaves the session unauthenticated.
func (s *Session) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if state.Token == "" {
		return nil
	}
	s.state = &state
	return nil
}

// Save stores the token and profile in memory and on disk.
func (s *Session) Save(token string, user auth.UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &sessionState{Token: token, User: user}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	// 0600: the file holds a bearer credential.
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return err
	}
	s.state = state
	return nil
}

// Clear drops the session from memory and disk.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Token returns the current bearer token, or ErrNotAuthenticated.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return "", ErrNotAuthenticated
	}
	return s.state.Token, nil
}

// User returns the profile saved with the session, or ErrNotAuthenticated.
func (s *Session) User() (auth.UserInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return auth.UserInfo{}, ErrNotAuthenticated
	}
	return s.state.User, nil
}

// Authenticated reports whether a session is loaded.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state != nil
}
