package chat

import "sort"

// TypingTracker maintains each room's set of currently typing connections.
// Entries are purely ephemeral: removed on a stop-typing signal, room switch,
// or disconnect. Callers must hold the owning Service lock.
type TypingTracker struct {
	registry *RoomRegistry
}

// NewTypingTracker creates a tracker over the registry's room state.
func NewTypingTracker(registry *RoomRegistry) *TypingTracker {
	return &TypingTracker{registry: registry}
}

// Set adds or removes the connection from the room's typing set and returns
// the updated display-name list for broadcast.
func (t *TypingTracker) Set(room, connID, username string, isTyping bool) []string {
	state := t.registry.Ensure(room)
	if isTyping {
		state.typing[connID] = username
	} else {
		delete(state.typing, connID)
	}
	return t.Names(room)
}

// Clear removes any typing entry for the connection. The second return
// reports whether an entry existed, letting cleanup paths skip a redundant
// broadcast.
func (t *TypingTracker) Clear(room, connID string) ([]string, bool) {
	state := t.registry.Ensure(room)
	_, existed := state.typing[connID]
	delete(state.typing, connID)
	return t.Names(room), existed
}

// Names returns the sorted display names of everyone typing in the room.
func (t *TypingTracker) Names(room string) []string {
	state := t.registry.Ensure(room)
	names := make([]string, 0, len(state.typing))
	for _, name := range state.typing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
