package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-hq/agentic/pkg/errors"
	jwtopts "github.com/agentic-hq/agentic/pkg/options/jwt"
)

func newTestManager(expired time.Duration) *TokenManager {
	return NewTokenManager(&jwtopts.Options{
		Key:     "0123456789abcdef0123456789abcdef",
		Expired: expired,
		Issuer:  "agentic-test",
	})
}

func TestSignAndParse(t *testing.T) {
	m := newTestManager(time.Hour)

	token, err := m.Sign("u1", "dana@example.com", "Dana", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "dana@example.com", claims.Email)
	assert.Equal(t, "Dana", claims.Name)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "agentic-test", claims.Issuer)
}

func TestParseExpired(t *testing.T) {
	m := newTestManager(-time.Minute)

	token, err := m.Sign("u1", "dana@example.com", "Dana", false)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, errors.ErrTokenExpired)
}

func TestParseGarbage(t *testing.T) {
	m := newTestManager(time.Hour)

	_, err := m.Parse("not-a-token")
	assert.ErrorIs(t, err, errors.ErrInvalidToken)
}

func TestParseWrongKey(t *testing.T) {
	m := newTestManager(time.Hour)
	other := NewTokenManager(&jwtopts.Options{
		Key:     "ffffffffffffffffffffffffffffffff",
		Expired: time.Hour,
		Issuer:  "agentic-test",
	})

	token, err := other.Sign("u1", "dana@example.com", "Dana", false)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, errors.ErrInvalidToken)
}
