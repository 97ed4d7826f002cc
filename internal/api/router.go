// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"svpay-balance/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router. authMW, when non-nil,
// guards the management routes; the scanner-facing uid routes stay open
// because the reader has no credential store.
func NewRouter(cardHandler *handler.CardHandler, authMW func(http.Handler) http.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	// Generous per-IP limit: the scanner retries in a tight loop on each
	// physical scan and must not be starved.
	r.Use(httprate.LimitByIP(300, time.Minute))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		// Device-facing routes (ESP8266)
		r.Get("/cards/uid/{rfidUID}", cardHandler.GetCardByTag)
		r.Post("/cards/uid/{rfidUID}/use", cardHandler.UseCard)

		// Management routes
		r.Group(func(r chi.Router) {
			if authMW != nil {
				r.Use(authMW)
			}
			r.Get("/cards", cardHandler.ListCards)
			r.Post("/cards", cardHandler.CreateCard)
			r.Get("/cards/{cardID}", cardHandler.GetCard)
			r.Put("/cards/{cardID}", cardHandler.UpdateCard)
			r.Delete("/cards/{cardID}", cardHandler.DeleteCard)
			r.Post("/cards/{cardID}/add-balance", cardHandler.AddBalance)
			r.Get("/transactions/{cardID}", cardHandler.GetTransactions)
		})
	})

	return r
}
