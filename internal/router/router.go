// Package router sets up all HTTP routes and middleware chains for the
// SmartParts API. Everything lives under /api/v1 except the health check.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartparts/internal/handlers"
	"smartparts/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(rl *middleware.RateLimiter, categories *handlers.Categories, parts *handlers.Parts, attachments *handlers.Attachments) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(rl.Middleware)

	// Health check.
	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// Category tree.
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categories.List)
			r.Post("/", categories.Create)
			r.Get("/tree", categories.Tree)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", categories.Get)
				r.Patch("/", categories.Update)
				r.Delete("/", categories.Delete)
				r.Post("/move", categories.Move)
				r.Get("/children", categories.Children)
				r.Get("/descendants", categories.Descendants)
				r.Get("/breadcrumbs", categories.Breadcrumbs)
				r.Get("/fields", categories.GetFields)
				r.Put("/fields", categories.PutFields)
				r.Get("/parts", categories.Parts)
			})
		})

		// Parts.
		r.Route("/parts", func(r chi.Router) {
			r.Get("/", parts.List)
			r.Post("/", parts.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", parts.Get)
				r.Patch("/", parts.Update)
				r.Delete("/", parts.Delete)
				r.Post("/attachments", attachments.Upload)
				r.Get("/attachments", attachments.List)
			})
		})

		// Attachments addressed by their own ID.
		r.Route("/attachments/{id}", func(r chi.Router) {
			r.Get("/", attachments.Download)
			r.Delete("/", attachments.Delete)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
