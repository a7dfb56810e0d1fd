package chat

import "github.com/parlorchat/parlor/internal/models"

// Event names carried in the envelope on the wire.
const (
	// client -> server
	EventUserJoin       = "user_join"
	EventSwitchRoom     = "switch_room"
	EventSendMessage    = "send_message"
	EventTyping         = "typing"
	EventPrivateMessage = "private_message"
	EventMessageRead    = "message_read"

	// server -> client
	EventRoomList       = "room_list"
	EventRoomJoined     = "room_joined"
	EventUserList       = "user_list"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventReceiveMessage = "receive_message"
	EventTypingUsers    = "typing_users"
)

// Broadcaster delivers events to live connections. Delivery is
// fire-and-forget: implementations must never block the caller and must
// swallow failures to write to a dead or backed-up connection.
type Broadcaster interface {
	ToConnections(connIDs []string, event string, payload interface{})
	ToConnection(connID string, event string, payload interface{})
}

// RoomSnapshot is the reply sent to a single connection after it joins or
// switches into a room.
type RoomSnapshot struct {
	Room     string           `json:"room"`
	Users    []models.User    `json:"users"`
	Messages []models.Message `json:"messages"`
	HasMore  bool             `json:"hasMore"`
}

// UserList is broadcast to a room whenever its membership changes.
type UserList struct {
	Room  string        `json:"room"`
	Users []models.User `json:"users"`
}

// UserEvent announces one connection joining or leaving a room.
type UserEvent struct {
	Username string `json:"username"`
	ID       string `json:"id"`
	Room     string `json:"room"`
}

// TypingUsers is broadcast to a room whenever its typing set changes.
type TypingUsers struct {
	Room  string   `json:"room"`
	Users []string `json:"users"`
}

// ReadReceipt announces that a connection has read a message.
type ReadReceipt struct {
	MessageID int64  `json:"messageId"`
	ReaderID  string `json:"readerId"`
	Room      string `json:"room"`
}
