package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	dErrors "storefront/pkg/domain-errors"
)

const writeWait = 10 * time.Second

// frame is the wire shape shared with the server.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client is a websocket consumer of the realtime feed. Inbound events are
// projected into its NotificationStore; outbound emits mirror what a
// storefront session produces.
type Client struct {
	log   *slog.Logger
	conn  *websocket.Conn
	store *NotificationStore

	writeMu   sync.Mutex
	connected atomic.Bool
	done      chan struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithStore substitutes the notification store, letting callers inject one
// built with a short TTL or a fake clock.
func WithStore(store *NotificationStore) Option {
	return func(c *Client) {
		if store != nil {
			c.store = store
		}
	}
}

// Dial connects to the realtime endpoint and starts the read loop.
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	c := &Client{
		log:   slog.Default(),
		store: NewNotificationStore(),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "dialing realtime endpoint", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	c.conn = conn
	c.connected.Store(true)

	go c.readLoop()
	return c, nil
}

// Notifications returns the currently visible notifications.
func (c *Client) Notifications() []Notification { return c.store.Notifications() }

// Store exposes the underlying notification store.
func (c *Client) Store() *NotificationStore { return c.store }

// IsConnected reports whether the read loop is still live.
func (c *Client) IsConnected() bool { return c.connected.Load() }

// Done is closed when the read loop exits.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close tears the connection down. The read loop exits shortly after.
func (c *Client) Close() error {
	c.connected.Store(false)
	return c.conn.Close()
}

// JoinAdmin subscribes this connection to the admin room.
func (c *Client) JoinAdmin() error {
	return c.emitRaw("join-admin", nil)
}

// JoinUser subscribes this connection to the per-shopper room.
func (c *Client) JoinUser(shopperID string) error {
	return c.Emit("join-user", shopperID)
}

// EmitProductCreated announces a new product to every consumer.
func (c *Client) EmitProductCreated(product any) error {
	return c.Emit("product-created", product)
}

// EmitProductUpdated announces a product change to every consumer.
func (c *Client) EmitProductUpdated(product any) error {
	return c.Emit("product-updated", product)
}

// EmitProductDeleted announces a deletion to every consumer.
func (c *Client) EmitProductDeleted(productID any) error {
	return c.Emit("product-deleted", productID)
}

// EmitPurchaseCreated reports a completed purchase to the admin room.
func (c *Client) EmitPurchaseCreated(purchase any) error {
	return c.Emit("purchase-created", purchase)
}

// EmitCartUpdated notifies the shopper named inside the payload.
func (c *Client) EmitCartUpdated(cart any) error {
	return c.Emit("cart-updated", cart)
}

// Emit sends an arbitrary client event with a JSON payload.
func (c *Client) Emit(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInvalidInput, "encoding event payload", err)
	}
	return c.emitRaw(event, raw)
}

func (c *Client) emitRaw(event string, data json.RawMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(frame{Event: event, Data: data}); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "writing event frame", err)
	}
	return nil
}

func (c *Client) readLoop() {
	defer func() {
		c.connected.Store(false)
		close(c.done)
	}()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("realtime connection closed", "error", err)
			}
			return
		}
		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			c.log.Debug("ignoring undecodable frame", "error", err)
			continue
		}
		c.store.OnEvent(f.Event, f.Data)
	}
}
