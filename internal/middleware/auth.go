package middleware

import (
	"net/http"

	"github.com/yalasurf/yalasurf/internal/session"
)

// RequireAuth rejects requests made without a stored access token.
func RequireAuth(sessions *session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions.Token() == "" {
				http.Error(w, "Not logged in", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates a handler on the stored session role. A logged-out
// session gets 401; a logged-in session with the wrong role gets 403.
func RequireRole(sessions *session.Service, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := sessions.Role()
			if got == "" {
				http.Error(w, "Not logged in", http.StatusUnauthorized)
				return
			}
			if got != role {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
