// File: troupe/actor.go
package troupe

// Actor is the behavior contract for a message-processing unit. It is
// generic over its message type, so the runtime dispatches handler calls
// through compile-time instantiation, never through an erased value.
//
// Handle is invoked once per dequeued envelope, always on the actor's own
// goroutine; the runtime never calls it concurrently for one instance.
type Actor[M Message] interface {
	Handle(ctx *Context[M], msg M) error
}

// Producer creates a fresh actor instance. Spawn calls it once at startup
// and again on every restart: a restarted actor is a new instance, never a
// reused one.
type Producer[M Message] func() Actor[M]

// Initializer is an optional hook invoked exactly once before the first
// message is processed. A PreStart error fails the spawn.
type Initializer[M Message] interface {
	PreStart(ctx *Context[M]) error
}

// Finalizer is an optional hook invoked exactly once after the last
// message is processed, during shutdown or teardown before a restart.
type Finalizer[M Message] interface {
	PostStop(ctx *Context[M])
}

// ErrorHandler is an optional hook consulted when Handle returns an error
// (or panics). Without it the runtime applies ActionStop.
type ErrorHandler[M Message] interface {
	OnError(ctx *Context[M], err error) ErrorAction
}

// ErrorAction tells the runtime how to react to a processing error.
type ErrorAction int

const (
	// ActionResume drops the offending message and keeps processing.
	ActionResume ErrorAction = iota

	// ActionRestart tears the actor down and reinitializes it from its
	// producer. Pending mailbox messages are preserved; nothing is replayed.
	ActionRestart

	// ActionStop transitions the actor to Stopped, draining the mailbox
	// without processing.
	ActionStop

	// ActionEscalate marks the actor Failed and surfaces the error through
	// Handle.Err so an enclosing supervisor can react.
	ActionEscalate
)

func (a ErrorAction) String() string {
	switch a {
	case ActionResume:
		return "resume"
	case ActionRestart:
		return "restart"
	case ActionStop:
		return "stop"
	case ActionEscalate:
		return "escalate"
	default:
		return "unknown"
	}
}
