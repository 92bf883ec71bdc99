// File: troupe/errors.go
package troupe

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no actor is registered at the
	// destination address.
	ErrNotFound = errors.New("actor not found")

	// ErrMailboxClosed is returned when the destination actor has stopped
	// and its mailbox no longer accepts envelopes.
	ErrMailboxClosed = errors.New("mailbox closed")

	// ErrMailboxFull is returned by a Reject-policy mailbox when the queue
	// is at capacity.
	ErrMailboxFull = errors.New("mailbox full")

	// ErrAlreadyRegistered is returned when registering an address that is
	// already present in the broker's routing table.
	ErrAlreadyRegistered = errors.New("address already registered")

	// ErrNoReplyAddress is returned by Context.Reply when the current
	// envelope carries no reply address.
	ErrNoReplyAddress = errors.New("envelope has no reply address")

	// ErrStopTimeout is returned by Handle.Stop when the actor does not
	// finish shutting down within the given timeout.
	ErrStopTimeout = errors.New("actor did not stop within timeout")
)

// DeliveryError describes a failed publish, naming the offending address
// and the underlying reason.
type DeliveryError struct {
	Addr Address
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Addr, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// StartError describes a PreStart hook failure during spawn or restart.
type StartError struct {
	Addr Address
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("actor %s failed to start: %v", e.Addr, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// PanicError wraps a panic recovered inside an actor's Handle call so it
// can travel the normal error path instead of crossing goroutines.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("actor panicked: %v", e.Value)
}
