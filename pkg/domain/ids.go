package domain

import "github.com/google/uuid"

// ConnectionID identifies a live realtime connection for the duration of its
// transport session. A typed wrapper so a connection handle can never be
// passed where a shopper or product identifier is expected.
type ConnectionID uuid.UUID

// NewConnectionID allocates a fresh connection identity.
func NewConnectionID() ConnectionID { return ConnectionID(uuid.New()) }

func (id ConnectionID) String() string { return uuid.UUID(id).String() }

func (id ConnectionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
