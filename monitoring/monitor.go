// File: monitoring/monitor.go

// Package monitoring is the observability sink for the actor runtime.
// Lifecycle and supervision events are reported to a Monitor; the runtime
// itself never logs. Implementations range from Noop through an in-memory
// ring buffer to a bbolt-backed journal, and Tee fans events out to
// several sinks at once.
package monitoring

import "time"

// EventSeverity orders events for filtering.
type EventSeverity int

const (
	SeverityDebug EventSeverity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s EventSeverity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a single observable occurrence inside the runtime.
type Event interface {
	EventTime() time.Time
	Severity() EventSeverity
	EventKind() string
}

// Monitor receives events. Record must be safe for concurrent use and
// must not block the caller for long; the runtime calls it inline from
// actor and supervisor goroutines.
type Monitor interface {
	Record(e Event)
}

// Noop discards every event. It is the default sink.
type Noop struct{}

func (Noop) Record(Event) {}

// Tee fans events out to every given monitor, in order.
func Tee(monitors ...Monitor) Monitor {
	return teeMonitor(monitors)
}

type teeMonitor []Monitor

func (t teeMonitor) Record(e Event) {
	for _, m := range t {
		if m != nil {
			m.Record(e)
		}
	}
}
