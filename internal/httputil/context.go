package httputil

import (
	"context"
	"net/http"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const claimsKey contextKey = "identityClaims"

// WithClaims adds verified identity claims to the request context
func WithClaims(r *http.Request, claims *models.IdentityClaims) *http.Request {
	ctx := context.WithValue(r.Context(), claimsKey, claims)
	return r.WithContext(ctx)
}

// GetClaims retrieves verified identity claims from context, nil if absent
func GetClaims(r *http.Request) *models.IdentityClaims {
	claims, _ := r.Context().Value(claimsKey).(*models.IdentityClaims)
	return claims
}

// GetSubject retrieves the external identity key from context, empty string
// if the request is anonymous
func GetSubject(r *http.Request) string {
	if claims := GetClaims(r); claims != nil {
		return claims.Subject
	}
	return ""
}
