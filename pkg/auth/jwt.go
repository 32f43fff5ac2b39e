// Package auth issues and verifies the bearer tokens used by the dashboard
// surface. Embed tokens are a separate capability and never touch this
// package.
package auth

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v4"

	"github.com/agentic-hq/agentic/pkg/errors"
	jwtopts "github.com/agentic-hq/agentic/pkg/options/jwt"
)

// Claims are the JWT claims carried by a dashboard session token.
type Claims struct {
	UserID  string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
	jwtlib.RegisteredClaims
}

// TokenManager signs and parses dashboard session tokens.
type TokenManager struct {
	key     []byte
	expired time.Duration
	issuer  string
}

// NewTokenManager creates a TokenManager from JWT options.
func NewTokenManager(opts *jwtopts.Options) *TokenManager {
	return &TokenManager{
		key:     []byte(opts.Key),
		expired: opts.Expired,
		issuer:  opts.Issuer,
	}
}

// Sign issues a token for the given user.
func (m *TokenManager) Sign(userID, email, name string, isAdmin bool) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:  userID,
		Email:   email,
		Name:    name,
		IsAdmin: isAdmin,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.expired)),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// Parse verifies a token string and returns its claims.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(tokenString, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.ErrInvalidToken
		}
		return m.key, nil
	})
	if err != nil {
		if jwtErr, ok := err.(*jwtlib.ValidationError); ok && jwtErr.Errors&jwtlib.ValidationErrorExpired != 0 {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrInvalidToken.WithCause(err)
	}
	if !token.Valid {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}
