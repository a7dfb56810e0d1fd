package handlers

import (
	"net/http"
	"time"
)

const version = "0.1.0"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Connections int    `json:"connections"`
	Uptime      string `json:"uptime"`
	Timestamp   string `json:"timestamp"`
}

// Health handles the health check endpoint. All state is in-process, so the
// relay is healthy whenever it can answer.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.chat.Snapshot()

	h.JSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Version:     version,
		Connections: h.hub.Count(),
		Uptime:      time.Since(stats.StartedAt).Round(time.Second).String(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

// RootResponse represents the root endpoint response.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Root handles the root endpoint.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, RootResponse{
		Name:    "Parlor",
		Version: version,
	})
}
