// File: supervisor/health.go
package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/lguibr/troupe/monitoring"
)

// HealthConfig controls the periodic health sweep of a node. Children
// that implement HealthReporter are polled every CheckInterval; a child
// reporting unhealthy for UnhealthyThreshold consecutive sweeps is
// treated as failed and routed through the node's strategy when
// RestartOnUnhealthy is set, otherwise only an event is emitted.
type HealthConfig struct {
	CheckInterval      time.Duration
	UnhealthyThreshold int
	RestartOnUnhealthy bool
}

// DefaultHealthConfig polls every 10 seconds and reacts after 3
// consecutive unhealthy reports.
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		CheckInterval:      10 * time.Second,
		UnhealthyThreshold: 3,
		RestartOnUnhealthy: true,
	}
}

type healthLoop struct {
	node *SupervisorNode
	cfg  HealthConfig
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func startHealthLoop(n *SupervisorNode, cfg HealthConfig) *healthLoop {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultHealthConfig().CheckInterval
	}
	if cfg.UnhealthyThreshold <= 0 {
		cfg.UnhealthyThreshold = 1
	}
	l := &healthLoop{
		node: n,
		cfg:  cfg,
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *healthLoop) run() {
	defer close(l.done)
	ticker := time.NewTicker(l.cfg.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.quit:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// interrupt requests the loop to exit without waiting for it. Safe to
// call any number of times, from any goroutine, including the loop's own
// sweep (which cannot wait for itself).
func (l *healthLoop) interrupt() {
	l.once.Do(func() { close(l.quit) })
}

func (l *healthLoop) stop() {
	l.interrupt()
	<-l.done
}

// sweep polls every reporting child once. Failures detected here are
// handed to HandleChildFailure without the node lock held: the handler
// takes the lock itself, and a restart may call back into child code.
func (l *healthLoop) sweep() {
	n := l.node

	// A stale sweep must not probe a node that escalated and was brought
	// back by its parent; the fresh loop owns that node now.
	select {
	case <-l.quit:
		return
	default:
	}

	type probe struct {
		id       ChildID
		name     string
		reporter HealthReporter
	}

	n.mu.Lock()
	if n.state != nodeRunning {
		n.mu.Unlock()
		return
	}
	probes := make([]probe, 0, len(n.order))
	for _, id := range n.order {
		h := n.children[id]
		if h.state != ChildRunning {
			continue
		}
		if r, ok := h.child.(HealthReporter); ok {
			probes = append(probes, probe{id: id, name: h.spec.Name, reporter: r})
		}
	}
	n.mu.Unlock()

	type incident struct {
		id     ChildID
		name   string
		reason string
		checks int
	}
	var failing []incident

	for _, p := range probes {
		health := p.reporter.HealthCheck()

		n.mu.Lock()
		h, ok := n.children[p.id]
		if !ok || h.state != ChildRunning {
			n.mu.Unlock()
			continue
		}
		if health.IsHealthy() {
			h.streak = 0
			n.mu.Unlock()
			continue
		}
		h.streak++
		streak := h.streak
		n.mu.Unlock()

		n.emit(monitoring.SupervisionEvent{
			Time:       time.Now(),
			Supervisor: n.label(),
			Child:      p.name,
			What:       monitoring.ChildUnhealthy,
			Strategy:   n.strategy.Name(),
			Reason:     health.Reason(),
		})
		if streak >= l.cfg.UnhealthyThreshold && l.cfg.RestartOnUnhealthy {
			failing = append(failing, incident{
				id:     p.id,
				name:   p.name,
				reason: health.Reason(),
				checks: streak,
			})
		}
	}

	for _, f := range failing {
		cause := &HealthError{Reason: f.reason, Checks: f.checks}
		if err := n.HandleChildFailure(context.Background(), f.id, cause); err != nil {
			// The node escalated or shut down; the sweep stops mattering.
			return
		}
	}
}
