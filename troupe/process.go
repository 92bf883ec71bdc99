// File: troupe/process.go
package troupe

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/lguibr/troupe/monitoring"
)

// loopVerdict is the outcome of one message-loop generation.
type loopVerdict int

const (
	verdictStop loopVerdict = iota
	verdictRestart
	verdictFail
)

// process runs a single actor: it owns the goroutine, drives the
// lifecycle state machine, and turns errors and panics into ErrorAction
// outcomes. Failures never leave this goroutine as panics; they become
// state transitions and Handle.Err values.
type process[M Message] struct {
	broker  *Broker[M]
	produce Producer[M]
	mailbox *Mailbox[M]
	handle  *Handle[M]
	monitor monitoring.Monitor
	ctx     context.Context
}

func (p *process[M]) run() {
	defer func() {
		p.broker.Unregister(p.handle.addr)
		p.mailbox.Close()
		p.mailbox.Drain()
		close(p.handle.done)
	}()

	for {
		actor := p.produce()
		if actor == nil {
			p.fail(&StartError{Addr: p.handle.addr, Err: errors.New("producer returned nil actor")})
			return
		}
		cctx := &Context[M]{broker: p.broker, self: p.handle.addr, ctx: p.ctx}

		if init, ok := actor.(Initializer[M]); ok {
			if err := p.invokeHook(func() error { return init.PreStart(cctx) }); err != nil {
				p.fail(&StartError{Addr: p.handle.addr, Err: err})
				return
			}
		}
		p.transition(StateRunning, "")

		verdict, cause := p.loop(actor, cctx)
		switch verdict {
		case verdictRestart:
			p.finalize(actor, cctx)
			p.transition(StateFailed, reason(cause))
			p.handle.lifecycle.MarkRestarted()
			p.emit(StateFailed, StateStarting, reason(cause))
			continue

		case verdictStop:
			p.transition(StateStopping, "")
			p.mailbox.Close()
			p.mailbox.Drain()
			p.finalize(actor, cctx)
			p.transition(StateStopped, "")
			return

		case verdictFail:
			p.handle.setErr(cause)
			p.transition(StateFailed, reason(cause))
			return
		}
	}
}

// loop processes messages until a stop, restart, or failure verdict.
func (p *process[M]) loop(actor Actor[M], cctx *Context[M]) (loopVerdict, error) {
	for {
		env, err := p.mailbox.Pop(p.ctx)
		if err != nil {
			// Cancelled (stop requested) or mailbox closed: either way the
			// loop ends cooperatively.
			return verdictStop, nil
		}

		cctx.envelope = &env
		handleErr := p.invoke(actor, cctx, env.Message)
		cctx.envelope = nil
		if handleErr == nil {
			continue
		}

		action := ActionStop
		if eh, ok := actor.(ErrorHandler[M]); ok {
			action = eh.OnError(cctx, handleErr)
		}
		switch action {
		case ActionResume:
			continue
		case ActionRestart:
			return verdictRestart, handleErr
		case ActionEscalate:
			return verdictFail, handleErr
		default:
			return verdictStop, nil
		}
	}
}

// invoke calls Handle with panic protection; a panic becomes a
// *PanicError on the normal error path.
func (p *process[M]) invoke(actor Actor[M], cctx *Context[M], msg M) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return actor.Handle(cctx, msg)
}

// invokeHook runs a lifecycle hook with the same panic protection.
func (p *process[M]) invokeHook(hook func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return hook()
}

// finalize runs PostStop, swallowing panics; teardown must always finish.
func (p *process[M]) finalize(actor Actor[M], cctx *Context[M]) {
	fin, ok := actor.(Finalizer[M])
	if !ok {
		return
	}
	defer func() { _ = recover() }()
	fin.PostStop(cctx)
}

func (p *process[M]) fail(err error) {
	p.handle.setErr(err)
	p.transition(StateFailed, reason(err))
}

// transition moves the lifecycle and reports the change to the monitor.
func (p *process[M]) transition(to ActorState, why string) {
	from := p.handle.lifecycle.State()
	p.handle.lifecycle.TransitionTo(to)
	p.emit(from, to, why)
}

func (p *process[M]) emit(from, to ActorState, why string) {
	p.monitor.Record(monitoring.ActorEvent{
		Time:     time.Now(),
		Actor:    p.handle.addr.String(),
		From:     from.String(),
		To:       to.String(),
		Restarts: p.handle.lifecycle.RestartCount(),
		Reason:   why,
	})
}

func reason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
