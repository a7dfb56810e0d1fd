package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor/internal/chat"
	"github.com/parlorchat/parlor/internal/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Outbound buffer size per connection.
	sendBuffer = 256
)

// Client is one live WebSocket connection bound to the chat core.
type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	closed  bool
	addr    string
	hub     *Hub
	chat    *chat.Service
	limiter *rateLimiter
	log     zerolog.Logger
}

func newClient(id string, conn *websocket.Conn, hub *Hub, svc *chat.Service, maxMessageSize int64, limiter *rateLimiter, logger zerolog.Logger) *Client {
	conn.SetReadLimit(maxMessageSize)
	return &Client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		addr:    conn.RemoteAddr().String(),
		hub:     hub,
		chat:    svc,
		limiter: limiter,
		log:     logger.With().Str("conn", id).Logger(),
	}
}

// readPump reads inbound frames and dispatches protocol events until the
// connection dies, then runs the disconnect cleanup path.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c.id)
		c.chat.Disconnect(c.id)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("unexpected websocket close")
			}
			return
		}

		if c.limiter != nil && !c.limiter.allow() {
			metrics.EventsRateLimited.Inc()
			c.log.Debug().Msg("inbound event rate limited")
			continue
		}

		c.dispatch(raw)
	}
}

// dispatch decodes one inbound envelope and hands it to the chat core.
// Malformed payloads are dropped; the protocol has no error channel back to
// the client and a bad frame must never take down the connection.
func (c *Client) dispatch(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Debug().Err(err).Msg("malformed envelope dropped")
		return
	}

	switch env.Event {
	case chat.EventUserJoin:
		username, room, ok := decodeJoin(env.Data)
		if !ok {
			c.log.Debug().Msg("malformed join dropped")
			return
		}
		c.chat.Join(c.id, username, room)

	case chat.EventSwitchRoom:
		room, ok := decodeString(env.Data)
		if !ok {
			c.log.Debug().Msg("malformed switch_room dropped")
			return
		}
		c.chat.SwitchRoom(c.id, room)

	case chat.EventSendMessage:
		var payload sendPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.log.Debug().Err(err).Msg("malformed send_message dropped")
			return
		}
		c.chat.SendMessage(c.id, payload.Message, payload.File, payload.Room)

	case chat.EventTyping:
		isTyping, room, ok := decodeTyping(env.Data)
		if !ok {
			c.log.Debug().Msg("malformed typing dropped")
			return
		}
		c.chat.SetTyping(c.id, isTyping, room)

	case chat.EventPrivateMessage:
		var payload privatePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.log.Debug().Err(err).Msg("malformed private_message dropped")
			return
		}
		c.chat.SendPrivate(c.id, payload.To, payload.Message)

	case chat.EventMessageRead:
		var payload readPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.log.Debug().Err(err).Msg("malformed message_read dropped")
			return
		}
		c.chat.MarkRead(c.id, payload.MessageID, payload.Room)

	default:
		c.log.Debug().Str("event", env.Event).Msg("unknown event dropped")
	}
}

// writePump drains the send channel onto the connection and keeps it alive
// with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
