package middleware

import (
	"net/http"
	"strings"

	"github.com/joakmannn/SocialMed/internal/core/services"
)

// AuthMiddleware resolves the Bearer token into a session and attaches it to
// the request context. Tokens revoked by sign-out fail here even before
// their JWT expiry.
func AuthMiddleware(sessionSvc *services.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
				return
			}
			sess, err := sessionSvc.Resolve(r.Context(), parts[1])
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := services.WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
