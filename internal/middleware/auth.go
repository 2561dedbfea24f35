package middleware

import (
	"net/http"
	"strings"

	"github.com/krismatterz/ten-chat-sub000/internal/auth"
	"github.com/krismatterz/ten-chat-sub000/internal/httputil"
)

// Auth verifies the bearer token on /api routes and stores the verified
// claims in the request context. Requests without a resolvable identity are
// rejected here; handlers downstream can assume a subject is present.
func Auth(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Health checks stay anonymous
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithClaims(r, claims))
		})
	}
}
