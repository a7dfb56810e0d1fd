package handlers

import "net/http"

// Stats returns in-memory totals: live connections, known rooms, stored
// messages, and the busiest rooms.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.chat.Snapshot())
}
