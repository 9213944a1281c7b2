// utils/session_token.go
package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
)

// ErrSessionExpired is returned by SessionTokenSource once the session token is past its expiry.
var ErrSessionExpired = errors.New("session expired, log in again")

// SessionTokenSource hands out the token obtained at login.
// With no session it yields an empty token, so calls go out unauthenticated.
type SessionTokenSource struct {
	mu    sync.Mutex
	token *oauth2.Token
	now   func() time.Time
}

func NewSessionTokenSource() *SessionTokenSource {
	return &SessionTokenSource{now: time.Now}
}

// Set stores raw as the session token. When raw is a JWT its "exp" claim becomes the expiry;
// the signature is not verified, that is the backend's job.
func (s *SessionTokenSource) Set(raw string) *oauth2.Token {
	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	tok.Expiry = TokenExpiry(raw)

	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()

	return tok
}

// SetToken stores tok as is.
func (s *SessionTokenSource) SetToken(tok *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
}

func (s *SessionTokenSource) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
}

// Current returns the stored token, or nil.
func (s *SessionTokenSource) Current() *oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *SessionTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil || s.token.AccessToken == "" {
		return &oauth2.Token{}, nil
	}

	if !s.token.Expiry.IsZero() && !s.now().Before(s.token.Expiry) {
		return nil, ErrSessionExpired
	}

	return s.token, nil
}

// TokenExpiry reads the "exp" claim of a JWT without verifying it. Opaque tokens have no expiry.
func TokenExpiry(raw string) time.Time {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(raw, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}

	return claims.ExpiresAt.Time
}

// LoadSessionToken reads a token saved by SaveSessionToken. A missing file is not an error.
func LoadSessionToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read session file %q: %w", path, err)
	}

	tok := &oauth2.Token{}
	err = json.Unmarshal(data, tok)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session file %q: %w", path, err)
	}

	return tok, nil
}

// SaveSessionToken writes tok to path, readable by the owner only. A nil tok removes the file.
func SaveSessionToken(path string, tok *oauth2.Token) error {
	if tok == nil {
		err := os.Remove(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session file %q: %w", path, err)
		}

		return nil
	}

	err := os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}
