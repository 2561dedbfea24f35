package auth

import "github.com/krismatterz/ten-chat-sub000/internal/domain/models"

// JWTVerifier validates identity-provider tokens and extracts claims.
type JWTVerifier interface {
	// VerifyToken validates a JWT and returns its claims, or an error if
	// the token is invalid, expired or malformed.
	VerifyToken(tokenString string) (*models.IdentityClaims, error)

	// Close releases resources held by the verifier.
	Close() error
}
