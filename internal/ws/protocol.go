package ws

import (
	"encoding/json"

	"github.com/parlorchat/parlor/internal/models"
)

// Envelope frames every event exchanged on the socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type joinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// decodeJoin accepts the current {username, room?} object or the legacy bare
// username string. ok is false when no username can be extracted.
func decodeJoin(raw json.RawMessage) (username, room string, ok bool) {
	var legacy string
	if err := json.Unmarshal(raw, &legacy); err == nil {
		return legacy, "", legacy != ""
	}

	var payload joinPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", "", false
	}
	return payload.Username, payload.Room, payload.Username != ""
}

type typingPayload struct {
	IsTyping bool   `json:"isTyping"`
	Room     string `json:"room"`
}

// decodeTyping accepts the boolean shorthand (applies to the sender's current
// room) or an explicit {isTyping, room?} object.
func decodeTyping(raw json.RawMessage) (isTyping bool, room string, ok bool) {
	var flag bool
	if err := json.Unmarshal(raw, &flag); err == nil {
		return flag, "", true
	}

	var payload typingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false, "", false
	}
	return payload.IsTyping, payload.Room, true
}

// decodeString decodes a bare JSON string payload (switch_room).
func decodeString(raw json.RawMessage) (string, bool) {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

type sendPayload struct {
	Message string             `json:"message"`
	File    *models.Attachment `json:"file"`
	Room    string             `json:"room"`
}

type privatePayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type readPayload struct {
	MessageID int64  `json:"messageId"`
	Room      string `json:"room"`
}
