// Package parlor provides a client for the Parlor chat relay protocol.
package parlor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Event names exchanged with the relay.
const (
	EventUserJoin       = "user_join"
	EventSwitchRoom     = "switch_room"
	EventSendMessage    = "send_message"
	EventTyping         = "typing"
	EventPrivateMessage = "private_message"
	EventMessageRead    = "message_read"

	EventRoomList       = "room_list"
	EventRoomJoined     = "room_joined"
	EventUserList       = "user_list"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventReceiveMessage = "receive_message"
	EventTypingUsers    = "typing_users"
)

// Event is one envelope received from the relay.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Message is a chat message as delivered by the relay.
type Message struct {
	ID        int64     `json:"id"`
	Room      string    `json:"room"`
	Sender    string    `json:"sender"`
	SenderID  string    `json:"senderId"`
	Body      string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	IsPrivate bool      `json:"isPrivate,omitempty"`
	ReadBy    []string  `json:"readBy"`
}

// User is one presence record as delivered by the relay.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Room     string `json:"room"`
}

// RoomSnapshot is the reply to a join or room switch.
type RoomSnapshot struct {
	Room     string    `json:"room"`
	Users    []User    `json:"users"`
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"hasMore"`
}

// ReadReceipt announces that a connection has read a message.
type ReadReceipt struct {
	MessageID int64  `json:"messageId"`
	ReaderID  string `json:"readerId"`
	Room      string `json:"room"`
}

// Client is a connected Parlor client.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to the relay's WebSocket endpoint. baseURL may use the http,
// https, ws, or wss scheme; the /ws path is appended when missing.
func Dial(baseURL string) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}

	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}

	if !strings.HasSuffix(parsed.Path, "/ws") {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/ws"
	}

	conn, _, err := websocket.DefaultDialer.Dial(parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", parsed.String(), err)
	}

	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Join announces the client's username and target room (the relay's default
// room when empty).
func (c *Client) Join(username, room string) error {
	return c.send(EventUserJoin, map[string]string{"username": username, "room": room})
}

// SwitchRoom moves the client into another room.
func (c *Client) SwitchRoom(room string) error {
	return c.send(EventSwitchRoom, room)
}

// SendMessage sends a text message. An empty room targets the client's
// current room.
func (c *Client) SendMessage(body, room string) error {
	return c.send(EventSendMessage, map[string]string{"message": body, "room": room})
}

// Typing signals whether the client is typing in its current room.
func (c *Client) Typing(isTyping bool) error {
	return c.send(EventTyping, isTyping)
}

// SendPrivate sends a direct message to the given connection id.
func (c *Client) SendPrivate(to, body string) error {
	return c.send(EventPrivateMessage, map[string]string{"to": to, "message": body})
}

// MarkRead acknowledges that the client has read the message.
func (c *Client) MarkRead(messageID int64, room string) error {
	return c.send(EventMessageRead, map[string]interface{}{"messageId": messageID, "room": room})
}

// ReadEvent blocks until the next event arrives.
func (c *Client) ReadEvent() (Event, error) {
	var event Event
	_, raw, err := c.conn.ReadMessage()
	if err != nil {
		return event, err
	}
	if err := json.Unmarshal(raw, &event); err != nil {
		return event, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}

// WaitFor reads events until one with the given name arrives, discarding
// everything else, or the timeout elapses.
func (c *Client) WaitFor(event string, timeout time.Duration) (Event, error) {
	deadline := time.Now().Add(timeout)
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return Event{}, err
	}
	defer c.conn.SetReadDeadline(time.Time{})

	for {
		received, err := c.ReadEvent()
		if err != nil {
			return Event{}, fmt.Errorf("waiting for %q: %w", event, err)
		}
		if received.Event == event {
			return received, nil
		}
		if time.Now().After(deadline) {
			return Event{}, errors.New("timed out waiting for " + event)
		}
	}
}

func (c *Client) send(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}
