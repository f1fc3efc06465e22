package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"storefront/internal/platform/metrics"
	"storefront/pkg/domain"
)

// Journal receives a best-effort copy of every published envelope. It must
// never block; the hub calls it from its event loop.
type Journal interface {
	Append(Envelope)
}

// Conn is the hub's handle for one live connection. The hub owns its room set
// and is the only writer to its send channel.
type Conn struct {
	ID    domain.ConnectionID
	send  chan []byte
	rooms map[string]struct{}
}

// Send exposes the outbound frame stream for the connection's write pump.
// The channel is closed when the connection is unregistered.
func (c *Conn) Send() <-chan []byte { return c.send }

// Hub is the connection registry, room membership service, and event
// broadcaster in one. All state is owned by a single goroutine (Run); every
// operation is a command on one channel, so no two joins or publishes ever
// interleave mid-operation and the room map needs no locking.
//
// Delivery is at-most-once and best-effort: no acknowledgment, no retry, no
// buffering beyond the per-connection FIFO. A connection not joined to the
// target room at publish time never receives that event.
type Hub struct {
	log     *slog.Logger
	metrics *metrics.Metrics
	journal Journal

	sendBuffer int
	commands   chan command
	done       chan struct{}

	// loop-owned state
	conns map[domain.ConnectionID]*Conn
	rooms map[string]map[domain.ConnectionID]*Conn
}

type command struct {
	register   *Conn
	registered chan struct{}

	unregister domain.ConnectionID

	joinID   domain.ConnectionID
	joinRoom string

	publish *Envelope

	members      *Scope
	membersReply chan []domain.ConnectionID
}

// Option configures a Hub.
type Option func(*Hub)

// WithJournal attaches an egress sink for published envelopes.
func WithJournal(j Journal) Option {
	return func(h *Hub) { h.journal = j }
}

// WithSendBuffer overrides the per-connection outbound buffer size.
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// NewHub constructs the hub. It is inert until Run is called.
func NewHub(log *slog.Logger, m *metrics.Metrics, opts ...Option) *Hub {
	h := &Hub{
		log:        log,
		metrics:    m,
		sendBuffer: 64,
		commands:   make(chan command, 256),
		done:       make(chan struct{}),
		conns:      make(map[domain.ConnectionID]*Conn),
		rooms:      make(map[string]map[domain.ConnectionID]*Conn),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes commands until ctx is cancelled, then tears down every
// remaining connection.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id := range h.conns {
				h.drop(id)
			}
			return ctx.Err()
		case cmd := <-h.commands:
			h.handle(cmd)
		}
	}
}

func (h *Hub) handle(cmd command) {
	switch {
	case cmd.register != nil:
		h.conns[cmd.register.ID] = cmd.register
		if h.metrics != nil {
			h.metrics.ConnectionsActive.Inc()
		}
		close(cmd.registered)
	case !cmd.unregister.IsNil():
		h.drop(cmd.unregister)
	case cmd.joinRoom != "":
		h.join(cmd.joinID, cmd.joinRoom)
	case cmd.publish != nil:
		h.fanOut(*cmd.publish)
	case cmd.members != nil:
		cmd.membersReply <- h.membersOf(*cmd.members)
	}
}

// Register allocates a connection identity and adds it to the registry with no
// rooms joined.
func (h *Hub) Register() *Conn {
	c := &Conn{
		ID:    domain.NewConnectionID(),
		send:  make(chan []byte, h.sendBuffer),
		rooms: make(map[string]struct{}),
	}
	registered := make(chan struct{})
	select {
	case h.commands <- command{register: c, registered: registered}:
		<-registered
	case <-h.done:
	}
	return c
}

// Unregister removes the connection from every room it belongs to, then
// discards it. This is the only teardown path; calling it for an unknown or
// already-removed connection is a no-op.
func (h *Hub) Unregister(id domain.ConnectionID) {
	select {
	case h.commands <- command{unregister: id}:
	case <-h.done:
	}
}

// Join adds the connection to a named room. Idempotent: joining a room already
// joined is a no-op, not an error.
func (h *Hub) Join(id domain.ConnectionID, room string) {
	if room == "" {
		return
	}
	select {
	case h.commands <- command{joinID: id, joinRoom: room}:
	case <-h.done:
	}
}

// Publish fires a domain event to the resolved audience. Best-effort: an empty
// room delivers to zero recipients, a member that disconnected between resolve
// and send is silently skipped, and there is no error to return.
func (h *Hub) Publish(kind Kind, payload any, scope Scope) {
	raw, ok := payload.(json.RawMessage)
	if !ok {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			h.log.Warn("drop unmarshalable event payload", "kind", kind, "error", err)
			return
		}
	}
	env := Envelope{Kind: kind, Payload: raw, Scope: scope, EmittedAt: time.Now()}
	select {
	case h.commands <- command{publish: &env}:
	case <-h.done:
	}
}

// Members resolves a scope to the connection IDs currently in it. Used by
// tests and the admin surface; delivery resolves inside the loop itself.
func (h *Hub) Members(scope Scope) []domain.ConnectionID {
	reply := make(chan []domain.ConnectionID, 1)
	select {
	case h.commands <- command{members: &scope, membersReply: reply}:
		return <-reply
	case <-h.done:
		return nil
	}
}

func (h *Hub) join(id domain.ConnectionID, room string) {
	c, ok := h.conns[id]
	if !ok {
		return
	}
	if _, already := c.rooms[room]; already {
		return
	}
	c.rooms[room] = struct{}{}
	members := h.rooms[room]
	if members == nil {
		members = make(map[domain.ConnectionID]*Conn)
		h.rooms[room] = members
	}
	members[id] = c
	if h.metrics != nil {
		h.metrics.RoomMembers.WithLabelValues(room).Inc()
	}
	h.log.Debug("connection joined room", "connection_id", id.String(), "room", room)
}

// drop detaches a connection from every room and closes its send channel.
// Keeps both sides of the membership index consistent.
func (h *Hub) drop(id domain.ConnectionID) {
	c, ok := h.conns[id]
	if !ok {
		return
	}
	for room := range c.rooms {
		delete(h.rooms[room], id)
		if h.metrics != nil {
			h.metrics.RoomMembers.WithLabelValues(room).Dec()
		}
	}
	delete(h.conns, id)
	close(c.send)
	if h.metrics != nil {
		h.metrics.ConnectionsActive.Dec()
	}
	h.log.Debug("connection removed", "connection_id", id.String())
}

func (h *Hub) membersOf(scope Scope) []domain.ConnectionID {
	room, scoped := scope.Room()
	if !scoped {
		out := make([]domain.ConnectionID, 0, len(h.conns))
		for id := range h.conns {
			out = append(out, id)
		}
		return out
	}
	out := make([]domain.ConnectionID, 0, len(h.rooms[room]))
	for id := range h.rooms[room] {
		out = append(out, id)
	}
	return out
}

func (h *Hub) fanOut(env Envelope) {
	if h.metrics != nil {
		h.metrics.EventsPublished.WithLabelValues(string(env.Kind)).Inc()
	}
	if h.journal != nil {
		h.journal.Append(env)
	}

	frame, err := json.Marshal(Frame{Event: env.Kind.WireName(), Data: env.Payload})
	if err != nil {
		h.log.Warn("drop unencodable frame", "kind", env.Kind, "error", err)
		return
	}

	room, scoped := env.Scope.Room()
	if scoped {
		for _, c := range h.rooms[room] {
			h.push(c, env.Kind, frame)
		}
		return
	}
	for _, c := range h.conns {
		h.push(c, env.Kind, frame)
	}
}

// push hands a frame to the connection's FIFO. A full buffer means the client
// is not keeping up; the frame is dropped rather than blocking the loop.
func (h *Hub) push(c *Conn, kind Kind, frame []byte) {
	select {
	case c.send <- frame:
		if h.metrics != nil {
			h.metrics.EventsDelivered.WithLabelValues(string(kind)).Inc()
		}
	default:
		if h.metrics != nil {
			h.metrics.EventsDropped.WithLabelValues(string(kind)).Inc()
		}
	}
}
