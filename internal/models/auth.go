package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the session token payload.
type JWTClaims struct {
	UserID string   `json:"id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry the admin role.
func (c *JWTClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
