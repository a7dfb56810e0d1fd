package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/parlorchat/parlor/internal/chat"
	"github.com/parlorchat/parlor/internal/models"
)

// MessagesResponse is the room history page returned by GET /api/messages.
type MessagesResponse struct {
	Room     string           `json:"room"`
	Messages []models.Message `json:"messages"`
	HasMore  bool             `json:"hasMore"`
}

// Messages serves a read-only page of a room's message history. The before
// cursor (RFC 3339) restricts the page to strictly older messages, which is
// how clients page backwards through history.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")

	limit := chat.HistoryPageSize
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	var before time.Time
	if beforeStr := r.URL.Query().Get("before"); beforeStr != "" {
		parsed, err := time.Parse(time.RFC3339, beforeStr)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid before cursor, expected RFC 3339 timestamp")
			return
		}
		before = parsed
	}

	target, messages, hasMore := h.chat.History(room, limit, before)

	h.JSON(w, http.StatusOK, MessagesResponse{
		Room:     target,
		Messages: messages,
		HasMore:  hasMore,
	})
}
