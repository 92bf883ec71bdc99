// File: supervisor/errors.go
package supervisor

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAccepting is returned by AddChild when the node is stopping
	// or stopped.
	ErrNotAccepting = errors.New("supervisor is not accepting children")

	// ErrDuplicateChild is returned by AddChild for an already-registered
	// ChildID.
	ErrDuplicateChild = errors.New("child id already registered")

	// ErrUnknownChild is returned when a ChildID is not in the tree.
	ErrUnknownChild = errors.New("unknown child id")

	// ErrNotRunning is returned when an operation requires a running node.
	ErrNotRunning = errors.New("supervisor is not running")

	// ErrZeroChildID is returned by AddChild for a spec without an id.
	ErrZeroChildID = errors.New("child spec has zero id")
)

// ChildError describes a failed start or stop of a specific child.
type ChildError struct {
	ID   ChildID
	Name string
	Op   string
	Err  error
}

func (e *ChildError) Error() string {
	return fmt.Sprintf("child %s (%s) %s failed: %v", e.Name, e.ID, e.Op, e.Err)
}

func (e *ChildError) Unwrap() error { return e.Err }

// EscalationError surfaces an unresolved failure to whatever supervises
// the node. When the node is the root, receiving this means the subtree
// has already been shut down.
type EscalationError struct {
	Supervisor string
	Child      ChildID
	ChildName  string
	Err        error
}

func (e *EscalationError) Error() string {
	return fmt.Sprintf("supervisor %s escalating failure of child %s (%s): %v",
		e.Supervisor, e.ChildName, e.Child, e.Err)
}

func (e *EscalationError) Unwrap() error { return e.Err }

// HealthError is the synthetic failure cause produced when a child stays
// unhealthy past the configured threshold.
type HealthError struct {
	Reason string
	Checks int
}

func (e *HealthError) Error() string {
	return fmt.Sprintf("unhealthy for %d consecutive checks: %s", e.Checks, e.Reason)
}
