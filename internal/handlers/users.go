package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Users serves every live presence record.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.chat.Users())
}

// UserByID serves the presence record for a single connection id.
func (h *Handler) UserByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, ok := h.chat.UserByID(id)
	if !ok {
		h.Error(w, http.StatusNotFound, "connection not found")
		return
	}

	h.JSON(w, http.StatusOK, user)
}
