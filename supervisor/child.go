// File: supervisor/child.go

// Package supervisor implements BEAM-style supervision trees over a
// minimal Child contract. A Child is anything with a start/stop lifecycle:
// a wrapped actor, a background task, a connection pool, or another
// SupervisorNode. The contract deliberately has no dependency on the
// actor, context, or broker types. Supervision works on lifecycles, not
// on message passing, and an actor that wants to be supervised implements
// Child explicitly through its own adapter.
package supervisor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChildID is an opaque, globally unique identifier for a supervised child.
// It is preserved across restarts of the same child slot.
type ChildID uuid.UUID

// NewChildID allocates a fresh random ChildID.
func NewChildID() ChildID {
	return ChildID(uuid.New())
}

// IsZero reports whether the id was never allocated.
func (id ChildID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id ChildID) String() string {
	return uuid.UUID(id).String()
}

// SupervisorID is an opaque, globally unique identifier for a node.
type SupervisorID uuid.UUID

// NewSupervisorID allocates a fresh random SupervisorID.
func NewSupervisorID() SupervisorID {
	return SupervisorID(uuid.New())
}

func (id SupervisorID) String() string {
	return uuid.UUID(id).String()
}

// Child is the lifecycle contract consumed by supervision.
//
// Start brings the child up; it is called once at tree startup and again
// after every restart decision. Stop requests cooperative shutdown within
// the timeout; a zero timeout means immediate forceful abandonment and a
// negative timeout means wait indefinitely (the node derives these from
// the child's ShutdownPolicy).
type Child interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context, timeout time.Duration) error
}

// HealthReporter is an optional extension of Child. Children that do not
// implement it are considered always healthy.
type HealthReporter interface {
	HealthCheck() ChildHealth
}

// ChildHealth is the result of a health probe.
type ChildHealth struct {
	healthy bool
	reason  string
}

// Healthy reports a passing probe.
func Healthy() ChildHealth {
	return ChildHealth{healthy: true}
}

// Unhealthy reports a failing probe with a reason.
func Unhealthy(reason string) ChildHealth {
	return ChildHealth{reason: reason}
}

// IsHealthy reports whether the probe passed.
func (h ChildHealth) IsHealthy() bool { return h.healthy }

// Reason returns the failure reason for an unhealthy probe.
func (h ChildHealth) Reason() string { return h.reason }

func (h ChildHealth) String() string {
	if h.healthy {
		return "healthy"
	}
	if h.reason == "" {
		return "unhealthy"
	}
	return "unhealthy: " + h.reason
}
