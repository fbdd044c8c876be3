package auth

import "github.com/golang-jwt/jwt/v5"

// AccessTokenClaims is the JWT issued by the marketplace auth service. The
// subject carries the user id; notifications are always scoped to it.
type AccessTokenClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the authenticated user id.
func (c *AccessTokenClaims) UserID() string {
	return c.Subject
}
