package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/parlorchat/parlor/internal/chat"
	"github.com/parlorchat/parlor/internal/ws"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	chat *chat.Service
	hub  *ws.Hub
}

// NewHandler creates a new Handler over the chat core and connection hub.
func NewHandler(svc *chat.Service, hub *ws.Hub) *Handler {
	return &Handler{chat: svc, hub: hub}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
