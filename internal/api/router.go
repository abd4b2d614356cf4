/**
 * @description
 * This file sets up the HTTP router using the go-chi/chi router. It defines
 * the API routes, applies middleware for logging, CORS, and authentication,
 * and maps the routes to their corresponding handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a Chi router and registers all API routes under
// /api/v1.
func NewRouter(h *Handler, jwtSecret string, users PrincipalSource) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Subscription API is healthy"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-up", h.handleSignUp)
			r.Post("/sign-in", h.handleSignIn)
			r.Post("/sign-out", h.handleSignOut)
			r.Get("/activate/{token}", h.handleActivate)
			r.Post("/resend-activation", h.handleResendActivation)
		})

		// Everything else requires an authenticated principal.
		r.Group(func(r chi.Router) {
			r.Use(Authenticator(jwtSecret, users))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.handleListUsers)
				r.Post("/", h.handleCreateUser)
				r.Get("/me", h.handleGetCurrentUser)
				r.Get("/{id}", h.handleGetUser)
				r.Put("/{id}", h.handleUpdateUser)
				r.Delete("/{id}", h.handleDeleteUser)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", h.handleListSubscriptions)
				r.Post("/", h.handleCreateSubscription)
				r.Get("/upcoming-renewals", h.handleUpcomingRenewals)
				r.Get("/user/{id}", h.handleListUserSubscriptions)
				r.Get("/{id}", h.handleGetSubscription)
				r.Put("/{id}", h.handleUpdateSubscription)
				r.Put("/{id}/cancel", h.handleCancelSubscription)
				r.Delete("/{id}", h.handleDeleteSubscription)
			})
		})
	})

	return r
}
