package models

import "time"

// Attachment is an inline file payload carried on a message. The data field
// holds whatever the client encoded (typically a data URL); the server treats
// it as opaque.
type Attachment struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
	Data string `json:"data"`
}

// Message is a chat message as stored in a room log and sent on the wire.
// Sender and SenderID are always stamped server-side from the originating
// connection; client-supplied values are ignored.
type Message struct {
	ID        int64       `json:"id"`
	Room      string      `json:"room"`
	Sender    string      `json:"sender"`
	SenderID  string      `json:"senderId"`
	Body      string      `json:"message,omitempty"`
	File      *Attachment `json:"file,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	IsPrivate bool        `json:"isPrivate,omitempty"`
	ReadBy    []string    `json:"readBy"`
}

// Clone returns a copy of the message safe to hand outside the owning lock.
// The ReadBy slice is copied; the attachment is immutable once created and
// shared as-is.
func (m *Message) Clone() Message {
	out := *m
	if m.ReadBy != nil {
		out.ReadBy = append([]string(nil), m.ReadBy...)
	} else {
		out.ReadBy = []string{}
	}
	return out
}
