package httpapi

import (
	"context"
	"net/http"
	"strings"

	"homelist/auth"
)

type contextKey int

const userContextKey contextKey = iota

// UserFromContext returns the identity the Authenticate middleware resolved
// for this request.
func UserFromContext(ctx context.Context) (auth.User, bool) {
	user, ok := ctx.Value(userContextKey).(auth.User)
	return user, ok
}

// Authenticate extracts the bearer token, resolves it to a user record and
// attaches it to the request context. Both "no token" and "bad token" are 401;
// the messages differ only for client diagnostics.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		user, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			// Covers bad signatures, expiry and users deleted after issuance.
			respondError(w, http.StatusUnauthorized, "Token is not valid")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates a route to admins. It must be chained after Authenticate.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return s.requireRole(next, auth.RoleAdmin, "Access denied. Admin privileges required.")
}

// RequireAgent gates a route to agents. It must be chained after Authenticate.
func (s *Server) RequireAgent(next http.Handler) http.Handler {
	return s.requireRole(next, auth.RoleAgent, "Access denied. Agent privileges required.")
}

// RequireVerified gates a route to accounts with a verified e-mail address.
// It must be chained after Authenticate.
func (s *Server) RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}
		if !user.IsVerified {
			respondError(w, http.StatusForbidden, "Please verify your email address to access this resource.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireRole(next http.Handler, role auth.Role, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}
		if user.Role != role {
			respondError(w, http.StatusForbidden, message)
			return
		}
		next.ServeHTTP(w, r)
	})
}
