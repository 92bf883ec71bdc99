// File: troupe/context.go
package troupe

import "context"

// Context is the runtime environment handed to an actor's hooks and
// Handle calls. It carries the actor's own address, the broker it was
// spawned on, and the envelope currently being processed. The broker is
// passed explicitly here rather than through any process-wide singleton,
// so multiple independent brokers coexist cleanly in one program.
type Context[M Message] struct {
	broker   *Broker[M]
	self     Address
	ctx      context.Context
	envelope *Envelope[M]
}

// Self returns the actor's own address.
func (c *Context[M]) Self() Address { return c.self }

// Broker returns the broker this actor was spawned on.
func (c *Context[M]) Broker() *Broker[M] { return c.broker }

// Context returns the actor's run context; it is cancelled when a stop is
// requested. Long-running work inside Handle should watch it.
func (c *Context[M]) Context() context.Context { return c.ctx }

// Done reports stop requests, mirroring context.Context.Done.
func (c *Context[M]) Done() <-chan struct{} { return c.ctx.Done() }

// Envelope returns the envelope currently being processed. Outside a
// Handle call (in PreStart or PostStop) there is none.
func (c *Context[M]) Envelope() (Envelope[M], bool) {
	if c.envelope == nil {
		return Envelope[M]{}, false
	}
	return *c.envelope, true
}

// Send publishes a message to another actor, stamping this actor's
// address as the reply target.
func (c *Context[M]) Send(to Address, msg M) error {
	env := NewEnvelope(msg).WithReplyTo(c.self)
	return c.broker.PublishEnvelope(c.ctx, to, env)
}

// Reply publishes a message back to the sender of the current envelope.
func (c *Context[M]) Reply(msg M) error {
	if c.envelope == nil || c.envelope.ReplyTo == nil {
		return &DeliveryError{Addr: c.self, Err: ErrNoReplyAddress}
	}
	env := NewEnvelope(msg).WithReplyTo(c.self)
	return c.broker.PublishEnvelope(c.ctx, *c.envelope.ReplyTo, env)
}
