// File: troupe/spawn.go
package troupe

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lguibr/troupe/monitoring"
)

// SpawnConfig configures a spawn. Zero values are usable: an anonymous
// actor with a default bounded Block mailbox and no monitoring.
type SpawnConfig struct {
	// Name is attached to the actor's address for diagnostics.
	Name string

	// Mailbox sets capacity and overflow policy. Capacity 0 with policy
	// Block falls back to DefaultMailboxCapacity; use Unbounded to opt
	// into a queue without a bound.
	Mailbox MailboxConfig

	// Unbounded disables the capacity fallback, yielding an unbounded
	// mailbox regardless of Mailbox.Capacity.
	Unbounded bool

	// Monitor receives lifecycle events. Defaults to monitoring.Noop.
	Monitor monitoring.Monitor
}

// Spawn registers a new actor on the broker and starts its message loop.
// The returned Handle is the caller's control surface; the actor itself is
// owned by its goroutine.
func Spawn[M Message](broker *Broker[M], produce Producer[M], cfg SpawnConfig) (*Handle[M], error) {
	if broker == nil {
		return nil, errors.New("spawn: nil broker")
	}
	if produce == nil {
		return nil, errors.New("spawn: nil producer")
	}
	if cfg.Monitor == nil {
		cfg.Monitor = monitoring.Noop{}
	}
	mbCfg := cfg.Mailbox
	if mbCfg.Capacity <= 0 && !cfg.Unbounded {
		mbCfg.Capacity = DefaultMailboxCapacity
	}
	if cfg.Unbounded {
		mbCfg.Capacity = 0
	}

	addr := NewAddress(cfg.Name)
	mb := NewMailbox[M](mbCfg)
	if err := broker.Register(addr, mb); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	h := &Handle[M]{
		addr:      addr,
		mailbox:   mb,
		lifecycle: NewLifecycle(),
		done:      make(chan struct{}),
		cancel:    cancel,
	}
	p := &process[M]{
		broker:  broker,
		produce: produce,
		mailbox: mb,
		handle:  h,
		monitor: cfg.Monitor,
		ctx:     runCtx,
	}
	go p.run()
	return h, nil
}

// Handle is the caller-side view of a spawned actor: its address, its
// lifecycle, and the means to stop it. The actor's state stays private to
// its goroutine; the handle never exposes it.
type Handle[M Message] struct {
	addr      Address
	mailbox   *Mailbox[M]
	lifecycle *Lifecycle
	done      chan struct{}
	cancel    context.CancelFunc

	mu      sync.Mutex
	failure error
}

// Address returns the actor's routing address.
func (h *Handle[M]) Address() Address { return h.addr }

// State returns the current lifecycle state.
func (h *Handle[M]) State() ActorState { return h.lifecycle.State() }

// RestartCount returns how many times the actor was restarted in place.
func (h *Handle[M]) RestartCount() uint32 { return h.lifecycle.RestartCount() }

// Lifecycle exposes the full lifecycle record.
func (h *Handle[M]) Lifecycle() *Lifecycle { return h.lifecycle }

// Done is closed once the actor's goroutine has fully exited.
func (h *Handle[M]) Done() <-chan struct{} { return h.done }

// Err returns the failure that terminated the actor, if any. It is only
// meaningful after Done is closed or State reports Failed.
func (h *Handle[M]) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failure
}

func (h *Handle[M]) setErr(err error) {
	h.mu.Lock()
	if h.failure == nil {
		h.failure = err
	}
	h.mu.Unlock()
}

// Stop requests cooperative shutdown and waits up to timeout for the
// actor to finish. A zero timeout does not wait (forceful abandonment is
// the caller's choice); a negative timeout waits indefinitely. Stopping
// an already-stopped actor returns nil immediately.
func (h *Handle[M]) Stop(timeout time.Duration) error {
	select {
	case <-h.done:
		return nil
	default:
	}
	h.cancel()
	if timeout == 0 {
		return nil
	}
	if timeout < 0 {
		<-h.done
		return nil
	}
	select {
	case <-h.done:
		return nil
	case <-time.After(timeout):
		return ErrStopTimeout
	}
}
