package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", "devhub")
	require.NoError(t, err)
	return ts
}

func TestNewTokenServiceRejectsShortSecret(t *testing.T) {
	_, err := NewTokenService("short", "devhub")
	require.Error(t, err)
}

func TestGenerateValidateRoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate(42, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	userID, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestValidateRejects(t *testing.T) {
	ts := newTestTokenService(t)
	valid, err := ts.Generate(7, time.Hour)
	require.NoError(t, err)
	expired, err := ts.Generate(7, -time.Second)
	require.NoError(t, err)

	other, err := NewTokenService("another-secret-32-chars-long!!!!", "devhub")
	require.NoError(t, err)
	foreign, err := other.Generate(7, time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewTokenService("test-secret-at-least-16-chars!!", "someone-else")
	require.NoError(t, err)
	wrongIssuer, err := otherIssuer.Generate(7, time.Hour)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not.a.jwt.token",
		"tampered":     valid[:len(valid)-3] + "xxx",
		"expired":      expired,
		"wrong secret": foreign,
		"wrong issuer": wrongIssuer,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ts.Validate(token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
