// File: troupe/message.go
package troupe

import "time"

// Message is the constraint every actor payload must satisfy. Messages are
// plain values: safe to copy, safe to hand across goroutines, and tagged
// with a constant type string so diagnostics never need reflection.
type Message interface {
	MessageType() string
}

// Envelope wraps a message with its delivery metadata. Envelopes are
// immutable once constructed; the broker owns them in transit and the
// destination mailbox owns them afterwards.
type Envelope[M Message] struct {
	ID        MessageID
	Message   M
	Timestamp time.Time
	ReplyTo   *Address
}

// NewEnvelope stamps a message with a fresh id and the current time.
func NewEnvelope[M Message](msg M) Envelope[M] {
	return Envelope[M]{
		ID:        NewMessageID(),
		Message:   msg,
		Timestamp: time.Now(),
	}
}

// WithReplyTo returns a copy of the envelope carrying a reply address.
func (e Envelope[M]) WithReplyTo(addr Address) Envelope[M] {
	e.ReplyTo = &addr
	return e
}

// Sender returns the reply address, if the sender attached one.
func (e Envelope[M]) Sender() (Address, bool) {
	if e.ReplyTo == nil {
		return Address{}, false
	}
	return *e.ReplyTo, true
}
