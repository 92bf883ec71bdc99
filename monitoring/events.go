// File: monitoring/events.go
package monitoring

import "time"

// ActorEvent reports a lifecycle transition of a single actor.
type ActorEvent struct {
	Time     time.Time `json:"time"`
	Actor    string    `json:"actor"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Restarts uint32    `json:"restarts"`
	Reason   string    `json:"reason,omitempty"`
}

func (e ActorEvent) EventTime() time.Time { return e.Time }

func (e ActorEvent) Severity() EventSeverity {
	switch e.To {
	case "failed":
		return SeverityError
	case "stopping", "stopped":
		return SeverityInfo
	default:
		if e.Restarts > 0 && e.To == "starting" {
			return SeverityWarning
		}
		return SeverityInfo
	}
}

func (e ActorEvent) EventKind() string { return "actor." + e.To }

// SupervisionEventKind names what happened to a supervised child.
type SupervisionEventKind string

const (
	ChildStarted   SupervisionEventKind = "child_started"
	ChildStopped   SupervisionEventKind = "child_stopped"
	ChildRestarted SupervisionEventKind = "child_restarted"
	ChildFailed    SupervisionEventKind = "child_failed"
	ChildUnhealthy SupervisionEventKind = "child_unhealthy"
	Escalated      SupervisionEventKind = "escalated"
	TreeStopped    SupervisionEventKind = "tree_stopped"
)

// SupervisionEvent reports a supervision action on a child (or, for
// Escalated and TreeStopped, on the node itself).
type SupervisionEvent struct {
	Time       time.Time            `json:"time"`
	Supervisor string               `json:"supervisor"`
	Child      string               `json:"child,omitempty"`
	What       SupervisionEventKind `json:"what"`
	Strategy   string               `json:"strategy,omitempty"`
	Reason     string               `json:"reason,omitempty"`
}

func (e SupervisionEvent) EventTime() time.Time { return e.Time }

func (e SupervisionEvent) Severity() EventSeverity {
	switch e.What {
	case ChildFailed, Escalated:
		return SeverityError
	case ChildUnhealthy, ChildRestarted:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

func (e SupervisionEvent) EventKind() string { return "supervision." + string(e.What) }
