// File: troupe/ids.go
package troupe

import (
	"fmt"

	"github.com/google/uuid"
)

// ActorID is an opaque, globally unique identifier for a spawned actor.
// IDs are random 128-bit values and are never reused after release.
type ActorID uuid.UUID

// NewActorID allocates a fresh random ActorID.
func NewActorID() ActorID {
	return ActorID(uuid.New())
}

// IsZero reports whether the id is the zero value (never allocated).
func (id ActorID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id ActorID) String() string {
	return uuid.UUID(id).String()
}

// MessageID is an opaque, globally unique identifier stamped on every
// envelope at construction time.
type MessageID uuid.UUID

// NewMessageID allocates a fresh random MessageID.
func NewMessageID() MessageID {
	return MessageID(uuid.New())
}

// IsZero reports whether the id is the zero value (never allocated).
func (id MessageID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id MessageID) String() string {
	return uuid.UUID(id).String()
}

// Address identifies a spawned actor for routing purposes. Two addresses
// are equal iff their IDs match; Name is diagnostic metadata only and
// plays no part in routing identity.
type Address struct {
	ID   ActorID
	Name string
}

// NewAddress creates an address with a fresh ActorID. The name may be empty.
func NewAddress(name string) Address {
	return Address{ID: NewActorID(), Name: name}
}

// Equal reports whether both addresses refer to the same actor.
func (a Address) Equal(other Address) bool {
	return a.ID == other.ID
}

func (a Address) String() string {
	if a.Name == "" {
		return a.ID.String()
	}
	return fmt.Sprintf("%s[%s]", a.Name, a.ID)
}
