// File: troupe/broker.go
package troupe

import (
	"context"
	"errors"
	"sync"
)

// Broker routes envelopes from publishers to the destination actor's
// mailbox. It is generic over the message type, so dispatch stays fully
// static: one broker instance serves one message protocol, and a system
// may run any number of independent brokers.
//
// The routing table is the only state shared across actors. Lookups are
// concurrent; register/unregister take a short-held write lock.
type Broker[M Message] struct {
	mu     sync.RWMutex
	routes map[ActorID]*Mailbox[M]
}

// NewBroker creates an empty broker.
func NewBroker[M Message]() *Broker[M] {
	return &Broker[M]{routes: make(map[ActorID]*Mailbox[M])}
}

// Register installs a route for the address. Registering an address that
// is already present fails with ErrAlreadyRegistered.
func (b *Broker[M]) Register(addr Address, mb *Mailbox[M]) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.routes[addr.ID]; exists {
		return &DeliveryError{Addr: addr, Err: ErrAlreadyRegistered}
	}
	b.routes[addr.ID] = mb
	return nil
}

// Unregister removes the route for the address. Unknown addresses are a
// no-op; the actor may already have been removed by its own shutdown.
func (b *Broker[M]) Unregister(addr Address) {
	b.mu.Lock()
	delete(b.routes, addr.ID)
	b.mu.Unlock()
}

// Publish wraps the message in a fresh envelope and delivers it.
func (b *Broker[M]) Publish(ctx context.Context, to Address, msg M) error {
	return b.PublishEnvelope(ctx, to, NewEnvelope(msg))
}

// PublishEnvelope delivers an already-constructed envelope. Every failure
// is reported as a *DeliveryError naming the destination: ErrNotFound for
// unknown addresses, ErrMailboxClosed for stopped actors, ErrMailboxFull
// under the Reject policy. Under the Block policy the call suspends until
// space frees or ctx is cancelled.
func (b *Broker[M]) PublishEnvelope(ctx context.Context, to Address, env Envelope[M]) error {
	b.mu.RLock()
	mb, ok := b.routes[to.ID]
	b.mu.RUnlock()
	if !ok {
		return &DeliveryError{Addr: to, Err: ErrNotFound}
	}
	if err := mb.Push(ctx, env); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &DeliveryError{Addr: to, Err: err}
	}
	return nil
}

// Lookup reports whether an actor is currently registered at the address.
func (b *Broker[M]) Lookup(addr Address) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.routes[addr.ID]
	return ok
}

// ActorCount returns the number of registered routes.
func (b *Broker[M]) ActorCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.routes)
}
