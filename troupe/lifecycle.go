// File: troupe/lifecycle.go
package troupe

import (
	"sync"
	"time"
)

// ActorState is the lifecycle state of an actor instance.
type ActorState int

const (
	StateStarting ActorState = iota
	StateRunning
	StateStopping
	StateStopped
	StateFailed
)

// Terminal reports whether the state admits no further transitions.
// A "restarted" actor is a new lifecycle generation, not a revived one.
func (s ActorState) Terminal() bool {
	return s == StateStopped || s == StateFailed
}

func (s ActorState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Lifecycle tracks an actor's state, the time of its last transition, and
// how many times supervision has restarted it. LastStateChange increases
// strictly monotonically with every transition; RestartCount increments
// only on the Failed-to-Starting transition and never decrements.
type Lifecycle struct {
	mu           sync.Mutex
	state        ActorState
	lastChange   time.Time
	restartCount uint32
}

// NewLifecycle returns a lifecycle in the Starting state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateStarting, lastChange: time.Now()}
}

// TransitionTo moves to a new state, bumping the change timestamp.
func (l *Lifecycle) TransitionTo(state ActorState) {
	l.mu.Lock()
	l.state = state
	l.lastChange = l.bump()
	l.mu.Unlock()
}

// MarkRestarted performs the Failed-to-Starting transition, incrementing
// the restart counter. This begins a new lifecycle generation.
func (l *Lifecycle) MarkRestarted() {
	l.mu.Lock()
	l.state = StateStarting
	l.lastChange = l.bump()
	l.restartCount++
	l.mu.Unlock()
}

// bump returns a timestamp strictly after the previous change. Callers
// must hold the mutex.
func (l *Lifecycle) bump() time.Time {
	now := time.Now()
	if !now.After(l.lastChange) {
		now = l.lastChange.Add(time.Nanosecond)
	}
	return now
}

// State returns the current state.
func (l *Lifecycle) State() ActorState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// LastStateChange returns the timestamp of the most recent transition.
func (l *Lifecycle) LastStateChange() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastChange
}

// RestartCount returns how many times supervision restarted this actor.
func (l *Lifecycle) RestartCount() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.restartCount
}

// IsRunning reports whether the actor is processing messages.
func (l *Lifecycle) IsRunning() bool {
	return l.State() == StateRunning
}
