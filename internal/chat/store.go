package chat

import (
	"time"

	"github.com/parlorchat/parlor/internal/metrics"
	"github.com/parlorchat/parlor/internal/models"
)

// MessageStore keeps the per-room bounded message logs plus a global index
// from message id to its record for O(1) read-receipt lookup. Callers must
// hold the owning Service lock.
type MessageStore struct {
	registry *RoomRegistry
	index    map[int64]*models.Message
	cap      int
	lastID   int64
}

// NewMessageStore creates a store whose room logs are trimmed to cap entries.
func NewMessageStore(registry *RoomRegistry, cap int) *MessageStore {
	if cap <= 0 {
		cap = 200
	}
	return &MessageStore{
		registry: registry,
		index:    make(map[int64]*models.Message),
		cap:      cap,
	}
}

// NextID returns a fresh message id. Ids are seeded from wall-clock Unix
// milliseconds but forced strictly monotonic so two sends in the same
// millisecond never collide.
func (s *MessageStore) NextID() int64 {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Append stores the message at the tail of the room's log and indexes it by
// id. When the log exceeds the cap the oldest entry is evicted and its id
// removed from the index.
func (s *MessageStore) Append(room string, msg *models.Message) {
	state := s.registry.Ensure(room)
	state.log = append(state.log, msg)
	s.index[msg.ID] = msg

	if len(state.log) > s.cap {
		evicted := state.log[0]
		state.log = state.log[1:]
		delete(s.index, evicted.ID)
		metrics.MessagesEvicted.Inc()
	}
}

// Recent returns up to limit messages from the room's log in chronological
// order. A non-zero before cursor restricts the pool to messages strictly
// older than it; otherwise the most recent limit messages are returned.
func (s *MessageStore) Recent(room string, limit int, before time.Time) []models.Message {
	pool := s.olderThan(room, before)
	if limit > 0 && len(pool) > limit {
		pool = pool[len(pool)-limit:]
	}

	out := make([]models.Message, 0, len(pool))
	for _, msg := range pool {
		out = append(out, msg.Clone())
	}
	return out
}

// HasMore reports whether messages older than what Recent(room, limit,
// before) returns remain in the log.
func (s *MessageStore) HasMore(room string, limit int, before time.Time) bool {
	pool := s.olderThan(room, before)
	return limit > 0 && len(pool) > limit
}

func (s *MessageStore) olderThan(room string, before time.Time) []*models.Message {
	state := s.registry.Ensure(room)
	if before.IsZero() {
		return state.log
	}
	// The log is in arrival order, so everything older than the cursor is a
	// prefix of it.
	cut := len(state.log)
	for i, msg := range state.log {
		if !msg.Timestamp.Before(before) {
			cut = i
			break
		}
	}
	return state.log[:cut]
}

// MarkRead records that reader has seen the message. Adding a reader twice is
// a no-op, as is marking an unknown or evicted id. The returned room and
// sender id drive notification fan-out; notify is false when nothing changed.
func (s *MessageStore) MarkRead(messageID int64, readerID string) (room, senderID string, notify bool) {
	msg, ok := s.index[messageID]
	if !ok {
		return "", "", false
	}
	for _, id := range msg.ReadBy {
		if id == readerID {
			return "", "", false
		}
	}
	msg.ReadBy = append(msg.ReadBy, readerID)
	return msg.Room, msg.SenderID, true
}

// Len returns the number of messages currently stored for the room.
func (s *MessageStore) Len(room string) int {
	return len(s.registry.Ensure(room).log)
}

// Total returns the number of messages across all room logs.
func (s *MessageStore) Total() int {
	return len(s.index)
}

// Cap returns the configured per-room log cap.
func (s *MessageStore) Cap() int {
	return s.cap
}
