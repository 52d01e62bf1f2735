package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/domain"
	"quill/internal/domain/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func signClaims(t *testing.T, key *rsa.PrivateKey, claims *models.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() *models.Claims {
	now := time.Now()
	return &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "0b9f6c1e-4a7c-4a43-9d8a-3f2c1a7e5b10",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Role: "authenticated",
	}
}

func TestJWKSVerifier_VerifyToken(t *testing.T) {
	key := generateTestKey(t)
	v := newKeyfuncVerifier(func(*jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, discardLogger())

	t.Run("valid token", func(t *testing.T) {
		claims, err := v.VerifyToken(signClaims(t, key, validClaims()))
		require.NoError(t, err)
		assert.Equal(t, "0b9f6c1e-4a7c-4a43-9d8a-3f2c1a7e5b10", claims.GetUserID())
	})

	tests := []struct {
		name   string
		mutate func(c *models.Claims)
	}{
		{"expired", func(c *models.Claims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute)) }},
		{"no expiry", func(c *models.Claims) { c.ExpiresAt = nil }},
		{"anonymous role", func(c *models.Claims) { c.Role = "anon" }},
		{"missing subject", func(c *models.Claims) { c.Subject = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			tt.mutate(claims)
			_, err := v.VerifyToken(signClaims(t, key, claims))
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}

	t.Run("wrong key", func(t *testing.T) {
		other := generateTestKey(t)
		_, err := v.VerifyToken(signClaims(t, other, validClaims()))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("HMAC token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = v.VerifyToken(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.VerifyToken("not-a-jwt")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestNewJWTVerifier_RequiresURL(t *testing.T) {
	_, err := NewJWTVerifier("", discardLogger())
	assert.Error(t, err)
}

func TestDevVerifier(t *testing.T) {
	v := NewDevVerifier(discardLogger())

	claims, err := v.VerifyToken(" user-1 ")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.GetUserID())

	_, err = v.VerifyToken("  ")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
