// Package chat implements the room and message coordination core: per-room
// membership, typing state, bounded message history, and read-receipt
// fan-out across concurrent connections.
package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor/internal/metrics"
	"github.com/parlorchat/parlor/internal/models"
)

// HistoryPageSize is the number of messages sent in a room snapshot and the
// default page size for history pagination.
const HistoryPageSize = 25

// AnonymousSender is stamped on messages from connections that never joined.
const AnonymousSender = "Anonymous"

// PrivateRoom is the pseudo-room name stamped on direct messages. It has no
// server-side log.
const PrivateRoom = "private"

// Options configures a Service.
type Options struct {
	DefaultRoom  string
	PresetRooms  []string
	HistoryLimit int
}

// Service is the owned state container for all room, presence, message, and
// typing state. Every mutation is serialized behind one mutex, preserving the
// single-writer discipline even though protocol events arrive from
// per-connection reader goroutines. All payloads handed to the Broadcaster
// are snapshots taken under the lock.
type Service struct {
	mu       sync.Mutex
	rooms    *RoomRegistry
	presence *PresenceTracker
	store    *MessageStore
	typing   *TypingTracker

	presets []string
	b       Broadcaster
	log     zerolog.Logger
	started time.Time
}

// NewService creates the coordination core with empty state and the preset
// rooms ensured.
func NewService(opts Options, b Broadcaster, logger zerolog.Logger) *Service {
	if opts.DefaultRoom == "" {
		opts.DefaultRoom = "general"
	}
	registry := NewRoomRegistry(opts.DefaultRoom, opts.PresetRooms)

	return &Service{
		rooms:    registry,
		presence: NewPresenceTracker(),
		store:    NewMessageStore(registry, opts.HistoryLimit),
		typing:   NewTypingTracker(registry),
		presets:  append([]string(nil), opts.PresetRooms...),
		b:        b,
		log:      logger,
		started:  time.Now(),
	}
}

// Connect greets a freshly registered connection with the preset room list.
func (s *Service) Connect(connID string) {
	s.b.ToConnection(connID, EventRoomList, s.PresetRooms())
	s.log.Debug().Str("conn", connID).Msg("connection established")
}

// Join registers the connection's presence in the requested room (default
// room when unset), announces it to the room, and replies to the requester
// with a room snapshot. A join from an already joined connection establishes
// a fresh room assignment.
func (s *Service) Join(connID, username, room string) {
	if username == "" {
		s.log.Debug().Str("conn", connID).Msg("join without username dropped")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.rooms.Normalize(room)
	s.rooms.Ensure(target)
	s.presence.Join(connID, username, target)

	s.emitUserList(target)
	s.toRoom(target, EventUserJoined, UserEvent{Username: username, ID: connID, Room: target})
	s.b.ToConnection(connID, EventRoomJoined, s.snapshot(target))

	metrics.RoomJoins.Inc()
	s.log.Info().Str("conn", connID).Str("username", username).Str("room", target).Msg("user joined")
}

// SwitchRoom moves a joined connection into the target room, notifying both
// rooms and replying to the requester with a snapshot of the new room.
// Switching into the current room is a no-op.
func (s *Service) SwitchRoom(connID, room string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.presence.Get(connID)
	if !ok {
		return
	}

	target := s.rooms.Normalize(room)
	if user.Room == target {
		return
	}

	previous := user.Room
	s.rooms.Ensure(target)
	s.presence.Join(connID, user.Username, target)

	if names, existed := s.typing.Clear(previous, connID); existed {
		s.toRoom(previous, EventTypingUsers, TypingUsers{Room: previous, Users: names})
	}
	s.toRoom(previous, EventUserLeft, UserEvent{Username: user.Username, ID: connID, Room: previous})
	s.emitUserList(previous)
	s.emitUserList(target)
	s.toRoom(target, EventUserJoined, UserEvent{Username: user.Username, ID: connID, Room: target})
	s.b.ToConnection(connID, EventRoomJoined, s.snapshot(target))

	metrics.RoomJoins.Inc()
	s.log.Info().Str("conn", connID).Str("from", previous).Str("to", target).Msg("user switched room")
}

// SendMessage appends a message to the target room's log and broadcasts it to
// every member, including the sender. The target defaults to the sender's
// current room. Sender identity is always stamped from the connection.
func (s *Service) SendMessage(connID, body string, file *models.Attachment, room string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, joined := s.presence.Get(connID)

	target := room
	if target == "" && joined {
		target = user.Room
	}
	target = s.rooms.Normalize(target)
	s.rooms.Ensure(target)

	sender := AnonymousSender
	if joined {
		sender = user.Username
	}

	msg := &models.Message{
		ID:        s.store.NextID(),
		Room:      target,
		Sender:    sender,
		SenderID:  connID,
		Body:      body,
		File:      file,
		Timestamp: time.Now().UTC(),
		ReadBy:    []string{},
	}
	s.store.Append(target, msg)

	s.toRoom(target, EventReceiveMessage, msg.Clone())
	metrics.MessagesSent.Inc()
}

// SetTyping updates the sender's entry in the target room's typing set and
// broadcasts the updated name list. The target defaults to the sender's
// current room; un-joined connections are ignored.
func (s *Service) SetTyping(connID string, isTyping bool, room string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.presence.Get(connID)
	if !ok {
		return
	}

	target := room
	if target == "" {
		target = user.Room
	}
	target = s.rooms.Normalize(target)

	names := s.typing.Set(target, connID, user.Username, isTyping)
	s.toRoom(target, EventTypingUsers, TypingUsers{Room: target, Users: names})
}

// SendPrivate delivers a direct message to the named recipient connection and
// echoes it back to the sender. Private messages bypass room broadcast and
// are never stored, so they cannot be paged back via history.
func (s *Service) SendPrivate(connID, to, body string) {
	if to == "" {
		s.log.Debug().Str("conn", connID).Msg("private message without recipient dropped")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sender := AnonymousSender
	if user, ok := s.presence.Get(connID); ok {
		sender = user.Username
	}

	msg := models.Message{
		ID:        s.store.NextID(),
		Room:      PrivateRoom,
		Sender:    sender,
		SenderID:  connID,
		Body:      body,
		Timestamp: time.Now().UTC(),
		IsPrivate: true,
		ReadBy:    []string{},
	}

	s.b.ToConnection(to, EventPrivateMessage, msg)
	s.b.ToConnection(connID, EventPrivateMessage, msg)
	metrics.PrivateMessagesSent.Inc()
}

// MarkRead records a read receipt for the message and notifies the target
// room plus, individually, the original sender's connection. Unknown or
// evicted ids and repeated receipts are silent no-ops. The reader need not be
// a member of the message's room.
func (s *Service) MarkRead(connID string, messageID int64, room string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgRoom, senderID, notify := s.store.MarkRead(messageID, connID)
	if !notify {
		return
	}

	target := room
	if target == "" {
		target = msgRoom
	}

	receipt := ReadReceipt{MessageID: messageID, ReaderID: connID, Room: target}
	s.toRoom(target, EventMessageRead, receipt)
	if senderID != "" {
		s.b.ToConnection(senderID, EventMessageRead, receipt)
	}
	metrics.ReadReceipts.Inc()
}

// Disconnect cleans up the connection's typing entry and presence and
// notifies its room. Safe to call for connections that never joined.
func (s *Service) Disconnect(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.presence.Leave(connID)
	if !ok {
		return
	}

	if names, existed := s.typing.Clear(user.Room, connID); existed {
		s.toRoom(user.Room, EventTypingUsers, TypingUsers{Room: user.Room, Users: names})
	}
	s.toRoom(user.Room, EventUserLeft, UserEvent{Username: user.Username, ID: connID, Room: user.Room})
	s.emitUserList(user.Room)

	s.log.Info().Str("conn", connID).Str("username", user.Username).Str("room", user.Room).Msg("user left")
}

// History returns up to limit messages from the room strictly older than the
// before cursor (all when zero), plus whether older messages remain. Used by
// the read-only HTTP surface.
func (s *Service) History(room string, limit int, before time.Time) (string, []models.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = HistoryPageSize
	}
	if limit > s.store.Cap() {
		limit = s.store.Cap()
	}

	target := s.rooms.Normalize(room)
	s.rooms.Ensure(target)
	return target, s.store.Recent(target, limit, before), s.store.HasMore(target, limit, before)
}

// PresetRooms returns the configured preset room names.
func (s *Service) PresetRooms() []string {
	return append([]string(nil), s.presets...)
}

// DefaultRoom returns the configured default room name.
func (s *Service) DefaultRoom() string {
	return s.rooms.DefaultRoom()
}

// Users returns every live presence record.
func (s *Service) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presence.All()
}

// UserByID returns the presence record for one connection.
func (s *Service) UserByID(connID string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presence.Get(connID)
}

// RoomCount is a room name with its stored message count.
type RoomCount struct {
	Room     string `json:"room"`
	Messages int    `json:"messages"`
}

// Stats is a point-in-time summary of the relay's in-memory state.
type Stats struct {
	Connections int         `json:"connections"`
	Rooms       int         `json:"rooms"`
	Messages    int         `json:"messages"`
	TopRooms    []RoomCount `json:"topRooms"`
	StartedAt   time.Time   `json:"startedAt"`
}

// Snapshot returns current totals for the stats endpoint.
func (s *Service) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	top := make([]RoomCount, 0, len(s.rooms.rooms))
	for name, state := range s.rooms.rooms {
		if len(state.log) == 0 {
			continue
		}
		top = append(top, RoomCount{Room: name, Messages: len(state.log)})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Messages != top[j].Messages {
			return top[i].Messages > top[j].Messages
		}
		return top[i].Room < top[j].Room
	})
	if len(top) > 5 {
		top = top[:5]
	}

	return Stats{
		Connections: s.presence.Count(),
		Rooms:       s.rooms.Count(),
		Messages:    s.store.Total(),
		TopRooms:    top,
		StartedAt:   s.started,
	}
}

// toRoom resolves the room's current membership through the presence tracker
// and hands the broadcaster the resolved connection set.
func (s *Service) toRoom(room, event string, payload interface{}) {
	ids := s.presence.ConnIDsIn(room)
	if len(ids) == 0 {
		return
	}
	s.b.ToConnections(ids, event, payload)
}

func (s *Service) emitUserList(room string) {
	s.toRoom(room, EventUserList, UserList{Room: room, Users: s.presence.UsersIn(room)})
}

func (s *Service) snapshot(room string) RoomSnapshot {
	return RoomSnapshot{
		Room:     room,
		Users:    s.presence.UsersIn(room),
		Messages: s.store.Recent(room, HistoryPageSize, time.Time{}),
		HasMore:  s.store.HasMore(room, HistoryPageSize, time.Time{}),
	}
}
