package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims represents the JWT claims issued by the identity provider.
// The subject claim is the external identity key users are stored under.
type IdentityClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Name                 string `json:"name"`
	Picture              string `json:"picture"`
}

// ExternalID returns the external identity key from the subject claim.
func (c *IdentityClaims) ExternalID() string {
	return c.Subject
}
