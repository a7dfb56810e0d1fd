package chat

import (
	"strings"

	"github.com/parlorchat/parlor/internal/models"
)

// roomState is the lazily created per-room state bundle: the bounded message
// log and the set of currently typing connections.
type roomState struct {
	log    []*models.Message
	typing map[string]string // conn id -> display name
}

// RoomRegistry tracks every room name the process has seen. Rooms are created
// on first reference and never destroyed. Callers must hold the owning
// Service lock; the registry itself is not safe for concurrent use.
type RoomRegistry struct {
	rooms       map[string]*roomState
	defaultRoom string
}

// NewRoomRegistry creates a registry with the given default room and ensures
// state for every preset room name.
func NewRoomRegistry(defaultRoom string, presets []string) *RoomRegistry {
	r := &RoomRegistry{
		rooms:       make(map[string]*roomState),
		defaultRoom: defaultRoom,
	}
	for _, name := range presets {
		r.Ensure(r.Normalize(name))
	}
	return r
}

// Normalize maps an empty or whitespace-only room name to the default room.
// Any other name is trimmed and taken as-is; there is no format constraint.
func (r *RoomRegistry) Normalize(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return r.defaultRoom
	}
	return trimmed
}

// Ensure creates empty state for a room if absent. Idempotent.
func (r *RoomRegistry) Ensure(name string) *roomState {
	state, ok := r.rooms[name]
	if !ok {
		state = &roomState{typing: make(map[string]string)}
		r.rooms[name] = state
	}
	return state
}

// DefaultRoom returns the configured default room name.
func (r *RoomRegistry) DefaultRoom() string {
	return r.defaultRoom
}

// Count returns the number of known rooms.
func (r *RoomRegistry) Count() int {
	return len(r.rooms)
}
