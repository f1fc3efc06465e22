package realtime

import (
	"encoding/json"
	"time"
)

// Kind identifies a domain event flowing through the broadcaster.
type Kind string

const (
	KindProductCreated  Kind = "product-created"
	KindProductUpdated  Kind = "product-updated"
	KindProductDeleted  Kind = "product-deleted"
	KindPurchaseCreated Kind = "purchase-created"
	KindCartUpdated     Kind = "cart-updated"
	KindUserActivity    Kind = "user-activity"
)

// WireName is the server→client event name. Two kinds rename on the wire; the
// rest pass through unchanged. These strings are part of the wire contract and
// must match the client exactly.
func (k Kind) WireName() string {
	switch k {
	case KindProductCreated:
		return "new-product"
	case KindPurchaseCreated:
		return "new-purchase"
	default:
		return string(k)
	}
}

// Room naming convention shared with clients. Do not alter independently.
const AdminRoom = "admin-room"

// UserRoom derives the per-shopper room name. Deterministic, so two shoppers
// never collide and multiple sessions of one shopper share a room.
func UserRoom(shopperID string) string {
	return "user-" + shopperID
}

type scopeKind int

const (
	scopeBroadcast scopeKind = iota
	scopeRoom
)

// Scope is the resolved audience of a published event: everyone, the admin
// room, or one shopper's room.
type Scope struct {
	kind scopeKind
	room string
}

// Broadcast targets every live connection.
func Broadcast() Scope { return Scope{kind: scopeBroadcast} }

// ToAdmins targets the admin room.
func ToAdmins() Scope { return Scope{kind: scopeRoom, room: AdminRoom} }

// ToUser targets a single shopper's room.
func ToUser(shopperID string) Scope {
	return Scope{kind: scopeRoom, room: UserRoom(shopperID)}
}

// Room returns the target room name, or ok=false for a broadcast.
func (s Scope) Room() (name string, ok bool) {
	if s.kind == scopeBroadcast {
		return "", false
	}
	return s.room, true
}

func (s Scope) String() string {
	if s.kind == scopeBroadcast {
		return "*"
	}
	return s.room
}

// Envelope is the typed, timestamped unit of data published through the
// broadcaster. Payload stays opaque JSON: this subsystem does not validate it,
// consumers deal with whatever they receive.
type Envelope struct {
	Kind      Kind            `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Scope     Scope           `json:"-"`
	EmittedAt time.Time       `json:"emittedAt"`
}

// Frame is the bidirectional wire format: one JSON object per websocket
// message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}
