package auth

import "quill/internal/domain/models"

// JWTVerifier defines the interface for JWT token verification.
// The middleware only needs a user ID out of a bearer token, so it stays
// agnostic of how the token is checked.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}
