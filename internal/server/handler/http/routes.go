// Package http provides HTTP routing and middleware configuration
// for the auth service.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/matthewvu2719/Journey-sub002/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// auth API. It applies JSON content-type enforcement and request
// logging, and mounts the auth endpoints under /api/auth.
//
// Routes:
//
//	POST /api/auth/login    → authHandler.Login
//	POST /api/auth/signup   → authHandler.SignUp
//	POST /api/auth/guest    → authHandler.GuestLogin
//	POST /api/auth/logout   → authHandler.Logout (bearer-protected)
//	GET  /api/auth/me       → authHandler.Me     (bearer-protected)
func NewRouter(
	authHandler *AuthHandler,
	parser middleware.TokenParser,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Mount API routes
	r.Route("/api/auth", func(r chi.Router) {
		// Public endpoints
		r.Post("/login", authHandler.Login)
		r.Post("/signup", authHandler.SignUp)
		r.Post("/guest", authHandler.GuestLogin)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(parser))
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
	})

	return r
}
