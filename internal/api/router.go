// Package api assembles the HTTP surface: the read-only REST endpoints, the
// WebSocket upgrade route, health, and metrics.
package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor/internal/api/middleware"
	"github.com/parlorchat/parlor/internal/chat"
	"github.com/parlorchat/parlor/internal/config"
	"github.com/parlorchat/parlor/internal/handlers"
	"github.com/parlorchat/parlor/internal/ws"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg *config.Config, logger zerolog.Logger, svc *chat.Service, hub *ws.Hub) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware first to capture all requests.
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.ClientOrigin,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(svc, hub)
	wsHandler := ws.NewHandler(hub, svc, cfg, logger)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	// Persistent bidirectional socket
	r.Get("/ws", wsHandler.ServeHTTP)

	// Read-only snapshots of rooms, history, and presence
	r.Get("/api/messages", h.Messages)
	r.Get("/api/rooms", h.Rooms)
	r.Get("/api/users", h.Users)
	r.Get("/api/users/{id}", h.UserByID)
	r.Get("/api/stats", h.Stats)

	return r
}
