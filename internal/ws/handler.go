package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor/internal/chat"
	"github.com/parlorchat/parlor/internal/config"
	"github.com/parlorchat/parlor/internal/ident"
)

// Handler upgrades HTTP requests to WebSocket connections and wires each one
// into the hub and the chat core.
type Handler struct {
	hub      *Hub
	chat     *chat.Service
	cfg      *config.Config
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewHandler creates the upgrade handler with the configured origin policy.
func NewHandler(hub *Hub, svc *chat.Service, cfg *config.Config, logger zerolog.Logger) *Handler {
	checker := newOriginChecker(cfg.ClientOrigin)
	return &Handler{
		hub:  hub,
		chat: svc,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checker.check,
		},
		log: logger,
	}
}

// ServeHTTP handles the WebSocket upgrade, registers the new connection, and
// starts its pumps. The connection id is assigned here and stays opaque to
// the client except where the protocol echoes it back.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	id := ident.NewConnectionID()
	limiter := newRateLimiter(h.cfg.RateLimitBurst, h.cfg.RateLimitRefill)
	client := newClient(id, conn, h.hub, h.chat, h.cfg.MaxMessageSize, limiter, h.log)

	h.hub.Register(client)
	go client.writePump()
	go client.readPump()

	h.chat.Connect(id)
}
