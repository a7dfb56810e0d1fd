package handlers

import "net/http"

// RoomsResponse lists the preset rooms and the default room.
type RoomsResponse struct {
	Rooms       []string `json:"rooms"`
	DefaultRoom string   `json:"defaultRoom"`
}

// Rooms serves the preset room list.
func (h *Handler) Rooms(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, RoomsResponse{
		Rooms:       h.chat.PresetRooms(),
		DefaultRoom: h.chat.DefaultRoom(),
	})
}
