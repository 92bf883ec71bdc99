// File: troupe/mailbox.go
package troupe

import (
	"context"
	"sync"
)

// OverflowPolicy decides what Push does when a bounded mailbox is full.
type OverflowPolicy int

const (
	// Block suspends the publisher until queue space frees. No message is
	// ever lost, at the cost of latency.
	Block OverflowPolicy = iota

	// DropNewest silently discards the incoming message. Best effort.
	DropNewest

	// Reject fails the publish with ErrMailboxFull so the caller can
	// decide whether to retry.
	Reject
)

func (p OverflowPolicy) String() string {
	switch p {
	case Block:
		return "block"
	case DropNewest:
		return "drop"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// DefaultMailboxCapacity is used when a SpawnConfig leaves the mailbox
// capacity unset.
const DefaultMailboxCapacity = 1024

// MailboxConfig configures a mailbox at spawn time. Capacity 0 means
// unbounded; the overflow policy is then irrelevant.
type MailboxConfig struct {
	Capacity int
	Policy   OverflowPolicy
}

// Mailbox is a per-actor FIFO queue. A single consumer (the owning actor)
// pops envelopes; any number of producers push. Arrival order is preserved
// in full, which implies per-sender FIFO.
type Mailbox[M Message] struct {
	mu       sync.Mutex
	buf      []Envelope[M]
	capacity int
	policy   OverflowPolicy
	closed   bool
	dropped  uint64

	notEmpty chan struct{}
	notFull  chan struct{}
	done     chan struct{}
}

// NewMailbox creates a mailbox. Capacity <= 0 means unbounded.
func NewMailbox[M Message](cfg MailboxConfig) *Mailbox[M] {
	return &Mailbox[M]{
		capacity: cfg.Capacity,
		policy:   cfg.Policy,
		notEmpty: make(chan struct{}, 1),
		notFull:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Push enqueues an envelope, applying the overflow policy when the queue
// is full. Blocking pushes honor ctx cancellation.
func (m *Mailbox[M]) Push(ctx context.Context, env Envelope[M]) error {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return ErrMailboxClosed
		}
		if m.capacity <= 0 || len(m.buf) < m.capacity {
			m.buf = append(m.buf, env)
			spare := m.capacity <= 0 || len(m.buf) < m.capacity
			m.mu.Unlock()
			signal(m.notEmpty)
			if spare {
				// Chain the wake-up so multiple blocked producers all
				// make progress when more than one slot frees at once.
				signal(m.notFull)
			}
			return nil
		}
		policy := m.policy
		switch policy {
		case Reject:
			m.mu.Unlock()
			return ErrMailboxFull
		case DropNewest:
			m.dropped++
			m.mu.Unlock()
			return nil
		}
		m.mu.Unlock()

		// Block: wait for space, shutdown, or caller cancellation.
		select {
		case <-m.notFull:
		case <-m.done:
			return ErrMailboxClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pop dequeues the next envelope, blocking until one arrives, the mailbox
// closes, or ctx is cancelled. After Close, remaining envelopes are still
// delivered before ErrMailboxClosed is reported.
func (m *Mailbox[M]) Pop(ctx context.Context) (Envelope[M], error) {
	for {
		m.mu.Lock()
		if len(m.buf) > 0 {
			env := m.buf[0]
			m.buf = m.buf[1:]
			m.mu.Unlock()
			signal(m.notFull)
			return env, nil
		}
		if m.closed {
			m.mu.Unlock()
			return Envelope[M]{}, ErrMailboxClosed
		}
		m.mu.Unlock()

		select {
		case <-m.notEmpty:
		case <-m.done:
		case <-ctx.Done():
			return Envelope[M]{}, ctx.Err()
		}
	}
}

// Close marks the mailbox closed and wakes every waiter. Idempotent.
func (m *Mailbox[M]) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()
	close(m.done)
}

// Drain discards all queued envelopes and reports how many were dropped.
func (m *Mailbox[M]) Drain() int {
	m.mu.Lock()
	n := len(m.buf)
	m.buf = nil
	m.dropped += uint64(n)
	m.mu.Unlock()
	signal(m.notFull)
	return n
}

// Len returns the number of queued envelopes.
func (m *Mailbox[M]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buf)
}

// Dropped returns how many envelopes were discarded by policy or drain.
func (m *Mailbox[M]) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Closed reports whether the mailbox has been closed.
func (m *Mailbox[M]) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Capacity returns the configured capacity, 0 meaning unbounded.
func (m *Mailbox[M]) Capacity() int { return m.capacity }

// Policy returns the configured overflow policy.
func (m *Mailbox[M]) Policy() OverflowPolicy { return m.policy }

// signal performs an edge-triggered, non-blocking wake-up.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
