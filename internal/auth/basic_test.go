// internal/auth/basic_test.go
package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"svpay-balance/internal/domain"
	"svpay-balance/internal/util"
)

func newProtectedHandler(t *testing.T) http.Handler {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	lookup := func(ctx context.Context, username string) (*domain.User, error) {
		if username != "admin" {
			return nil, util.ErrUserNotFound
		}
		return &domain.User{ID: 1, Username: "admin", HashedPassword: string(hash)}, nil
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return BasicAuth(lookup, util.GetLogger())(next)
}

func TestBasicAuth(t *testing.T) {
	protected := newProtectedHandler(t)

	t.Run("ValidCredentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
		req.SetBasicAuth("admin", "secret")
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
		req.SetBasicAuth("admin", "wrong")
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, `Basic realm="svpay"`, rr.Header().Get("WWW-Authenticate"))
		assert.JSONEq(t, `{"error": "Incorrect username or password"}`, rr.Body.String())
	})

	t.Run("UnknownUser", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
		req.SetBasicAuth("nobody", "secret")
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error": "Incorrect username or password"}`, rr.Body.String())
	})

	t.Run("MissingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, `Basic realm="svpay"`, rr.Header().Get("WWW-Authenticate"))
	})
}
