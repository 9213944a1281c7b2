package utils

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(exp),
	})

	raw, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return raw
}

func TestSessionTokenSource(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)

	s := NewSessionTokenSource()
	s.now = func() time.Time { return now }

	tok, err := s.Token()
	require.NoError(t, err)
	require.Empty(t, tok.AccessToken)

	raw := signedToken(t, exp)
	set := s.Set(raw)
	require.True(t, set.Expiry.Equal(exp.Truncate(time.Second)))

	tok, err = s.Token()
	require.NoError(t, err)
	require.Equal(t, raw, tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())

	s.now = func() time.Time { return exp.Add(time.Second) }
	_, err = s.Token()
	require.ErrorIs(t, err, ErrSessionExpired)

	s.Clear()
	tok, err = s.Token()
	require.NoError(t, err)
	require.Empty(t, tok.AccessToken)
}

func TestTokenExpiry(t *testing.T) {
	require.True(t, TokenExpiry("opaque-token").IsZero())

	exp := time.Unix(1893456000, 0)
	require.True(t, TokenExpiry(signedToken(t, exp)).Equal(exp))
}

func TestSessionTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	tok, err := LoadSessionToken(path)
	require.NoError(t, err)
	require.Nil(t, tok)

	want := &oauth2.Token{AccessToken: "abc", TokenType: "Bearer", Expiry: time.Unix(1893456000, 0).UTC()}
	require.NoError(t, SaveSessionToken(path, want))

	got, err := LoadSessionToken(path)
	require.NoError(t, err)
	require.Equal(t, want.AccessToken, got.AccessToken)
	require.True(t, want.Expiry.Equal(got.Expiry))

	require.NoError(t, SaveSessionToken(path, nil))
	got, err = LoadSessionToken(path)
	require.NoError(t, err)
	require.Nil(t, got)
}
