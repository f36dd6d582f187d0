package jwtmw

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_GenerateToken(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		clientID   string
		expiration time.Duration
	}{
		{"dashboard client", "dashboard", time.Hour},
		{"batch runner", "nightly-batch", 24 * time.Hour * 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := NewGenerator("test-secret", tt.expiration)
			gen.now = func() time.Time { return fixed }

			signed, err := gen.GenerateToken(tt.clientID)
			require.NoError(t, err)

			var claims jwt.RegisteredClaims
			_, err = jwt.NewParser(jwt.WithTimeFunc(func() time.Time { return fixed })).
				ParseWithClaims(signed, &claims, func(*jwt.Token) (interface{}, error) {
					return []byte("test-secret"), nil
				})
			require.NoError(t, err)

			assert.Equal(t, tt.clientID, claims.Subject)
			assert.Equal(t, Issuer, claims.Issuer)
			assert.Equal(t, fixed.Unix(), claims.IssuedAt.Unix())
			assert.Equal(t, fixed.Add(tt.expiration).Unix(), claims.ExpiresAt.Unix())
		})
	}
}

func TestGenerator_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator("", time.Hour).GenerateToken("x")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestSecretFromEnv(t *testing.T) {
	t.Setenv(EnvKeyJWTSecret, "")
	_, err := SecretFromEnv()
	assert.ErrorIs(t, err, ErrEmptySecret)

	t.Setenv(EnvKeyJWTSecret, "s3cret")
	s, err := SecretFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", s)
}
