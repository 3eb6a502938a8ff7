/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the scoring screen

SECURITY NOTE:
  No authentication middleware; the club site fronts this service and
  handles scorer auth.
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/formats", h.ListFormats)

		r.Route("/matches", func(r chi.Router) {
			r.Post("/", h.StartMatch)
			r.Get("/{id}", h.GetMatch)
			r.Post("/{id}/innings", h.StartInnings)
		})

		r.Route("/innings/{id}", func(r chi.Router) {
			r.Get("/", h.GetInnings)
			r.Post("/batsmen", h.SetBatsmen)
			r.Post("/bowler", h.SetBowler)
			r.Post("/balls", h.RecordBall)
			r.Delete("/balls/last", h.UndoLastBall)
			r.Post("/swap", h.SwapBatsmen)
		})

		r.Get("/sync/failures", h.ListSyncFailures)
	})

	return r
}
