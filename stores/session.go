package stores

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/oauth2"

	"github.com/opengovern/scope-bridge/api"
	"github.com/opengovern/scope-bridge/internal/logger"
	"github.com/opengovern/scope-bridge/utils"
)

// PermissionAll grants every permission.
const PermissionAll = "*"

// SessionStore holds the signed-in user and feeds the session token to the bridge.
type SessionStore struct {
	client *api.Client
	tokens *utils.SessionTokenSource

	mu   sync.RWMutex
	user *api.UserInfo
}

// NewSessionStore wires tokens into the client's bridge so every call carries the session.
func NewSessionStore(client *api.Client, tokens *utils.SessionTokenSource) *SessionStore {
	client.Bridge().SetTokenSource(tokens)
	return &SessionStore{client: client, tokens: tokens}
}

// Login authenticates and stores the token and user.
func (s *SessionStore) Login(ctx context.Context, username string, password string) (*oauth2.Token, error) {
	res, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	tok := s.tokens.Set(res.Token)

	s.mu.Lock()
	user := res.UserInfo
	s.user = &user
	s.mu.Unlock()

	return tok, nil
}

// Restore resumes a session saved by an earlier Login. The user stays unknown.
func (s *SessionStore) Restore(tok *oauth2.Token) {
	if tok == nil || tok.AccessToken == "" {
		return
	}

	s.tokens.SetToken(tok)
}

// Logout ends the session locally even when the server call fails.
func (s *SessionStore) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx)
	if err != nil {
		slog.DebugContext(ctx, "Server logout failed, clearing local session anyway", logger.Err(err))
	}

	s.tokens.Clear()

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	return err
}

func (s *SessionStore) IsLoggedIn() bool {
	tok, err := s.tokens.Token()
	return err == nil && tok != nil && tok.AccessToken != ""
}

// User returns the signed-in user, or nil.
func (s *SessionStore) User() *api.UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}

	cp := *s.user
	return &cp
}

func (s *SessionStore) HasRole(role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && slices.Contains(s.user.Roles, role)
}

func (s *SessionStore) HasPermission(permission string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return false
	}

	return slices.Contains(s.user.Permissions, permission) || slices.Contains(s.user.Permissions, PermissionAll)
}
