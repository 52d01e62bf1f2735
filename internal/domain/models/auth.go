package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the access token payload issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims        // sub, iss, aud, exp, iat
	Email                string `json:"email"`
	Role                 string `json:"role"` // "authenticated" or "anon"
	SessionID            string `json:"session_id"`
	IsAnonymous          bool   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
// Projects are owned by this ID.
func (c *Claims) GetUserID() string {
	return c.Subject
}
