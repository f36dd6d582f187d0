// Package jwtmw issues and verifies the HS256 bearer tokens that guard the API.
package jwtmw

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EnvKeyJWTSecret is the environment variable holding the HMAC signing key.
const EnvKeyJWTSecret = "JWT_SECRET"

// Issuer is written to and required in the iss claim.
const Issuer = "stock-backtest"

// ErrEmptySecret is returned when no signing key is configured.
var ErrEmptySecret = errors.New("jwt secret is empty")

// SecretFromEnv returns JWT_SECRET or ErrEmptySecret.
func SecretFromEnv() (string, error) {
	s := os.Getenv(EnvKeyJWTSecret)
	if s == "" {
		return "", ErrEmptySecret
	}
	return s, nil
}

// Generator signs API tokens for client IDs.
type Generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *Generator {
	return &Generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates a signed token whose subject is clientID.
func (g *Generator) GenerateToken(clientID string) (string, error) {
	if len(g.secret) == 0 {
		return "", ErrEmptySecret
	}
	now := g.now()
	claims := jwt.RegisteredClaims{
		Subject:   clientID,
		Issuer:    Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.expiration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
