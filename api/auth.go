package api

import (
	"context"
	"errors"

	scopebridge "github.com/opengovern/scope-bridge"
)

var ErrMissingCredentials = errors.New("username and password are required")

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session token. Failures are not notified; the caller
// reports them next to the form.
func (c *Client) Login(ctx context.Context, username string, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	return scopebridge.Post[*LoginResult](ctx, c.bridge, authPath+"/login", loginRequest{Username: username, Password: password},
		scopebridge.WithSilentErrors(),
		scopebridge.WithoutAuthorization())
}

// Logout ends the server session. A 401 means it already ended and is not reported.
func (c *Client) Logout(ctx context.Context) error {
	_, err := scopebridge.Post[any](ctx, c.bridge, authPath+"/logout", nil, scopebridge.WithIgnoreErrors(401))
	return err
}
