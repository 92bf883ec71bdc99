// File: supervisor/spec.go
package supervisor

import "time"

// RestartPolicy determines when a child is restarted after termination.
type RestartPolicy int

const (
	// Permanent children are always restarted on failure.
	Permanent RestartPolicy = iota

	// Transient children are restarted only after an abnormal exit, never
	// after a requested stop or normal completion.
	Transient

	// Temporary children are never restarted.
	Temporary
)

// ShouldRestart reports whether the policy allows a restart given whether
// the termination was abnormal.
func (p RestartPolicy) ShouldRestart(abnormal bool) bool {
	switch p {
	case Permanent:
		return true
	case Transient:
		return abnormal
	default:
		return false
	}
}

func (p RestartPolicy) String() string {
	switch p {
	case Permanent:
		return "permanent"
	case Transient:
		return "transient"
	case Temporary:
		return "temporary"
	default:
		return "unknown"
	}
}

// ShutdownPolicy determines how a child is stopped.
type ShutdownPolicy struct {
	mode    shutdownMode
	timeout time.Duration
}

type shutdownMode int

const (
	shutdownGraceful shutdownMode = iota
	shutdownBrutal
	shutdownInfinity
)

// ShutdownTimeout requests graceful shutdown, forcing after d.
func ShutdownTimeout(d time.Duration) ShutdownPolicy {
	return ShutdownPolicy{mode: shutdownGraceful, timeout: d}
}

// ShutdownBrutal requests immediate forceful termination.
func ShutdownBrutal() ShutdownPolicy {
	return ShutdownPolicy{mode: shutdownBrutal}
}

// ShutdownInfinity waits indefinitely for graceful shutdown.
func ShutdownInfinity() ShutdownPolicy {
	return ShutdownPolicy{mode: shutdownInfinity}
}

// Timeout returns the wait budget: (d, true) for graceful, (0, true) for
// brutal, (0, false) for infinity.
func (p ShutdownPolicy) Timeout() (time.Duration, bool) {
	switch p.mode {
	case shutdownGraceful:
		return p.timeout, true
	case shutdownBrutal:
		return 0, true
	default:
		return 0, false
	}
}

// IsBrutal reports whether the policy skips graceful shutdown entirely.
func (p ShutdownPolicy) IsBrutal() bool { return p.mode == shutdownBrutal }

func (p ShutdownPolicy) String() string {
	switch p.mode {
	case shutdownGraceful:
		return "timeout(" + p.timeout.String() + ")"
	case shutdownBrutal:
		return "brutal"
	default:
		return "infinity"
	}
}

// ChildSpec is the immutable supervision configuration of one child slot.
type ChildSpec struct {
	// ID identifies the slot; it survives restarts of the child.
	ID ChildID

	// Name is diagnostic metadata for events.
	Name string

	// Restart decides when the child is restarted.
	Restart RestartPolicy

	// Shutdown decides how the child is stopped.
	Shutdown ShutdownPolicy

	// Significant marks a child whose permanent failure escalates to the
	// parent even when its own restart policy would otherwise absorb it.
	Significant bool
}

// SpecOption customizes a ChildSpec.
type SpecOption func(*ChildSpec)

// WithRestart sets the restart policy (default Permanent).
func WithRestart(p RestartPolicy) SpecOption {
	return func(s *ChildSpec) { s.Restart = p }
}

// WithShutdown sets the shutdown policy (default 5s graceful timeout).
func WithShutdown(p ShutdownPolicy) SpecOption {
	return func(s *ChildSpec) { s.Shutdown = p }
}

// Significant marks the child significant.
func Significant() SpecOption {
	return func(s *ChildSpec) { s.Significant = true }
}

// DefaultShutdownTimeout is the graceful stop budget when unspecified.
const DefaultShutdownTimeout = 5 * time.Second

// NewChildSpec allocates a spec with a fresh ChildID and defaults:
// Permanent restart, graceful shutdown with DefaultShutdownTimeout.
func NewChildSpec(name string, opts ...SpecOption) ChildSpec {
	spec := ChildSpec{
		ID:       NewChildID(),
		Name:     name,
		Restart:  Permanent,
		Shutdown: ShutdownTimeout(DefaultShutdownTimeout),
	}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec
}
