// Package ws binds WebSocket connections to the chat core: the Hub tracks
// live clients and fans events out to them, while each Client runs the
// gorilla read/write pumps and dispatches inbound protocol events.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor/internal/metrics"
)

// Hub tracks every live client connection by id and implements the chat
// Broadcaster. Delivery is fire-and-forget: an event for a connection whose
// send buffer is full or already closed is dropped, never retried.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		log:     logger,
	}
}

// Register adds the client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	metrics.ConnectionsTotal.Inc()
	metrics.ConnectionsActive.Set(float64(total))
	h.log.Info().Str("conn", c.id).Str("addr", c.addr).Int("total", total).Msg("client registered")
}

// Unregister removes the client and closes its send channel. Idempotent.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		c.closed = true
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	// Close the channel after releasing the lock; senders check closed under
	// the read lock so nobody writes past this point.
	close(c.send)

	metrics.ConnectionsActive.Set(float64(total))
	h.log.Info().Str("conn", id).Int("total", total).Msg("client unregistered")
}

// ToConnection delivers one event to a single connection. Unknown ids are a
// silent no-op.
func (h *Hub) ToConnection(connID string, event string, payload interface{}) {
	frame, err := marshalEnvelope(event, payload)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode outbound event")
		return
	}
	h.trySend(connID, frame)
}

// ToConnections delivers one event to each of the given connections.
func (h *Hub) ToConnections(connIDs []string, event string, payload interface{}) {
	frame, err := marshalEnvelope(event, payload)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode outbound event")
		return
	}
	for _, id := range connIDs {
		h.trySend(id, frame)
	}
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll closes every client's underlying connection, unblocking their read
// pumps so they unwind through the normal disconnect path.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
	h.log.Info().Int("count", len(clients)).Msg("closed all client connections")
}

func (h *Hub) trySend(connID string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connID]
	if !ok || c.closed {
		return
	}

	select {
	case c.send <- frame:
	default:
		metrics.DeliveriesDropped.Inc()
		h.log.Warn().Str("conn", connID).Msg("send buffer full, event dropped")
	}
}

func marshalEnvelope(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
