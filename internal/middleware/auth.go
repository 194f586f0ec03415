package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/forkful/dealfeed/internal/auth"
)

// Authenticate validates Bearer tokens and stamps the authenticated user
// ID onto the request context. Requests without an Authorization header
// pass through anonymously; handlers decide whether a user is required.
// A present-but-invalid token is rejected with 401.
func Authenticate(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeAuthError(w, r, "Authorization header must use the Bearer scheme")
				return
			}

			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				writeAuthError(w, r, "Invalid or expired token")
				return
			}
			if claims.Type != auth.TokenTypeAccess {
				writeAuthError(w, r, "Refresh tokens cannot be used for API access")
				return
			}

			ctx := SetUserID(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, r *http.Request, details string) {
	*r = *r.WithContext(SetErrorCode(r.Context(), "auth_failed"))

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "auth_failed",
		"details": details,
	})
}
