package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mssola/useragent"

	"storefront/internal/presence"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Handler upgrades /ws requests and bridges each socket onto the hub.
type Handler struct {
	hub      *Hub
	log      *slog.Logger
	presence *presence.Service
	upgrader websocket.Upgrader
}

// HandlerOption configures the websocket transport.
type HandlerOption func(*Handler)

// WithPresence marks shoppers online on join-user and offline on disconnect.
func WithPresence(p *presence.Service) HandlerOption {
	return func(h *Handler) { h.presence = p }
}

// NewHandler builds the websocket transport. Origin checking is left to the
// deployment's proxy layer, matching the permissive CORS of the HTTP API.
func NewHandler(hub *Hub, log *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := h.hub.Register()
	ua := useragent.New(r.UserAgent())
	browser, _ := ua.Browser()
	h.log.InfoContext(r.Context(), "websocket connected",
		"connection_id", c.ID.String(),
		"browser", browser,
		"os", ua.OS(),
		"mobile", ua.Mobile(),
	)

	go h.writePump(c, socket)
	h.readPump(c, socket)
}

// readPump decodes inbound frames and routes them until the socket drops.
// Disconnect, however it happens, funnels into a single Unregister.
func (h *Handler) readPump(c *Conn, socket *websocket.Conn) {
	var shopperID string
	defer func() {
		h.hub.Unregister(c.ID)
		_ = socket.Close()
		if h.presence != nil && shopperID != "" {
			h.presence.Set(context.Background(), shopperID, false, time.Now())
		}
		h.log.Info("websocket disconnected", "connection_id", c.ID.String())
	}()

	socket.SetReadLimit(1 << 20)
	_ = socket.SetReadDeadline(time.Now().Add(pongWait))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := socket.ReadMessage()
		if err != nil {
			return
		}
		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			// Not an error class we surface: an undecodable frame is ignored.
			h.log.Debug("ignoring undecodable frame", "connection_id", c.ID.String(), "error", err)
			continue
		}
		if sid := h.route(c, frame); sid != "" {
			shopperID = sid
			if h.presence != nil {
				h.presence.Set(context.Background(), shopperID, true, time.Now())
			}
		}
	}
}

// route implements the client→server protocol. Payloads are forwarded
// opaquely; only the fields needed for scoping are decoded. The returned
// shopper ID is non-empty only for a join-user frame.
func (h *Handler) route(c *Conn, frame Frame) string {
	switch frame.Event {
	case "join-admin":
		h.hub.Join(c.ID, AdminRoom)
	case "join-user":
		var shopperID string
		if err := json.Unmarshal(frame.Data, &shopperID); err != nil || shopperID == "" {
			h.log.Debug("ignoring join-user without shopper id", "connection_id", c.ID.String())
			return ""
		}
		h.hub.Join(c.ID, UserRoom(shopperID))
		return shopperID
	case "product-created":
		h.hub.Publish(KindProductCreated, frame.Data, Broadcast())
	case "product-updated":
		h.hub.Publish(KindProductUpdated, frame.Data, Broadcast())
	case "product-deleted":
		h.hub.Publish(KindProductDeleted, frame.Data, Broadcast())
	case "purchase-created":
		h.hub.Publish(KindPurchaseCreated, frame.Data, ToAdmins())
	case "cart-updated":
		var cart struct {
			UserID string `json:"userId"`
		}
		if err := json.Unmarshal(frame.Data, &cart); err != nil || cart.UserID == "" {
			h.log.Debug("ignoring cart-updated without user id", "connection_id", c.ID.String())
			return ""
		}
		h.hub.Publish(KindCartUpdated, frame.Data, ToUser(cart.UserID))
	case "user-activity":
		h.hub.Publish(KindUserActivity, frame.Data, ToAdmins())
	default:
		h.log.Debug("ignoring unknown event", "connection_id", c.ID.String(), "event", frame.Event)
	}
	return ""
}

// writePump drains the connection FIFO onto the socket, preserving the order
// events were published to this connection's rooms.
func (h *Handler) writePump(c *Conn, socket *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = socket.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send():
			_ = socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := socket.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
