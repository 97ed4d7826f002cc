// internal/auth/basic.go
package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"svpay-balance/internal/domain"
)

// LookupFunc resolves an operator account by username.
type LookupFunc func(ctx context.Context, username string) (*domain.User, error)

// BasicAuth returns a middleware enforcing HTTP Basic authentication against
// bcrypt-hashed operator accounts.
func BasicAuth(lookup LookupFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			user, err := lookup(r.Context(), username)
			if err != nil {
				// Unknown user and bad password answer identically.
				unauthorized(w)
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
				logger.Warn("Rejected basic auth attempt", "username", username)
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="svpay"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Incorrect username or password"})
}
