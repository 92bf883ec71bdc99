// File: supervisor/node.go
package supervisor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lguibr/troupe/monitoring"
)

// ChildState is the supervision-side view of a child slot.
type ChildState int

const (
	// ChildPending: registered but not yet started.
	ChildPending ChildState = iota

	// ChildRunning: started and not known to have terminated.
	ChildRunning

	// ChildStopped: stopped by request or by decision; not failed.
	ChildStopped

	// ChildFailed: terminated abnormally; awaiting a decision or final.
	ChildFailed
)

func (s ChildState) String() string {
	switch s {
	case ChildPending:
		return "pending"
	case ChildRunning:
		return "running"
	case ChildStopped:
		return "stopped"
	case ChildFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type nodeState int

const (
	nodeIdle nodeState = iota
	nodeRunning
	nodeStopping
	nodeStopped
)

// childHandle is the node-private bookkeeping for one child slot. The
// tree is an id-keyed arena: children are always looked up by ChildID,
// never held by back-pointer.
type childHandle struct {
	spec     ChildSpec
	child    Child
	state    ChildState
	restarts uint32
	streak   int
	lastErr  error
}

// SupervisorNode owns a set of ChildSpec+Child pairs, starts them in
// registration order, routes detected failures through its strategy, and
// executes the resulting decision. A node implements Child itself, so
// trees of arbitrary depth compose naturally.
type SupervisorNode struct {
	id        SupervisorID
	name      string
	strategy  Strategy
	monitor   monitoring.Monitor
	intensity RestartIntensity
	healthCfg *HealthConfig

	mu       sync.Mutex
	children map[ChildID]*childHandle
	order    []ChildID
	window   restartWindow
	state    nodeState
	health   *healthLoop
}

// NodeOption customizes a SupervisorNode.
type NodeOption func(*SupervisorNode)

// WithMonitor sets the observability sink (default monitoring.Noop).
func WithMonitor(m monitoring.Monitor) NodeOption {
	return func(n *SupervisorNode) { n.monitor = m }
}

// WithIntensity sets the restart budget (default 5 restarts per minute).
func WithIntensity(intensity RestartIntensity) NodeOption {
	return func(n *SupervisorNode) { n.intensity = intensity }
}

// WithHealthChecks enables periodic health monitoring once the node
// starts.
func WithHealthChecks(cfg HealthConfig) NodeOption {
	return func(n *SupervisorNode) { n.healthCfg = &cfg }
}

// NewNode creates a supervisor node with the given strategy.
func NewNode(name string, strategy Strategy, opts ...NodeOption) *SupervisorNode {
	n := &SupervisorNode{
		id:        NewSupervisorID(),
		name:      name,
		strategy:  strategy,
		monitor:   monitoring.Noop{},
		intensity: DefaultIntensity(),
		children:  make(map[ChildID]*childHandle),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ID returns the node's unique id.
func (n *SupervisorNode) ID() SupervisorID { return n.id }

// Name returns the node's diagnostic name.
func (n *SupervisorNode) Name() string { return n.name }

// AddChild registers a child under its spec. It fails when the id is
// zero, already registered, or the node is no longer accepting children.
// On a running node the child is started immediately.
func (n *SupervisorNode) AddChild(spec ChildSpec, child Child) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if spec.ID.IsZero() {
		return ErrZeroChildID
	}
	if n.state == nodeStopping || n.state == nodeStopped {
		return ErrNotAccepting
	}
	if _, exists := n.children[spec.ID]; exists {
		return &ChildError{ID: spec.ID, Name: spec.Name, Op: "add", Err: ErrDuplicateChild}
	}

	h := &childHandle{spec: spec, child: child}
	n.children[spec.ID] = h
	n.order = append(n.order, spec.ID)

	if n.state == nodeRunning {
		if err := n.startChild(context.Background(), h); err != nil {
			delete(n.children, spec.ID)
			n.order = n.order[:len(n.order)-1]
			return err
		}
	}
	return nil
}

// StartAllChildren starts every registered child in registration order.
// If any start fails, the already-started children are stopped in reverse
// order and the error is returned.
func (n *SupervisorNode) StartAllChildren(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == nodeRunning {
		return nil
	}
	if n.state == nodeStopping {
		return ErrNotAccepting
	}

	var started []*childHandle
	for _, id := range n.order {
		h := n.children[id]
		if err := n.startChild(ctx, h); err != nil {
			for i := len(started) - 1; i >= 0; i-- {
				_ = n.stopChild(ctx, started[i])
			}
			return err
		}
		started = append(started, h)
	}
	n.state = nodeRunning
	n.window.reset()
	if n.healthCfg != nil {
		n.health = startHealthLoop(n, *n.healthCfg)
	}
	return nil
}

// StopAllChildren shuts the whole subtree down in reverse start order,
// honoring each child's ShutdownPolicy. Stopping an already-stopped node
// is a no-op success.
func (n *SupervisorNode) StopAllChildren(ctx context.Context) error {
	n.mu.Lock()
	if n.state == nodeStopped || n.state == nodeStopping {
		n.mu.Unlock()
		return nil
	}
	n.state = nodeStopping
	loop := n.health
	n.health = nil
	n.mu.Unlock()

	if loop != nil {
		loop.stop()
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	err := n.stopSubtreeLocked(ctx)
	n.state = nodeStopped
	n.emit(monitoring.SupervisionEvent{
		Time:       time.Now(),
		Supervisor: n.label(),
		What:       monitoring.TreeStopped,
		Strategy:   n.strategy.Name(),
	})
	return err
}

// HandleChildFailure routes a detected failure through the strategy and
// executes the decision. A nil cause records a normal exit, which matters
// for Transient restart policies. The returned error is nil when the
// failure was absorbed, or a *EscalationError when it must travel up the
// tree (in which case the subtree has been stopped).
func (n *SupervisorNode) HandleChildFailure(ctx context.Context, id ChildID, cause error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != nodeRunning {
		return ErrNotRunning
	}
	h, ok := n.children[id]
	if !ok {
		return &ChildError{ID: id, Op: "handle failure", Err: ErrUnknownChild}
	}

	h.state = ChildFailed
	h.lastErr = cause
	n.emit(monitoring.SupervisionEvent{
		Time:       time.Now(),
		Supervisor: n.label(),
		Child:      h.spec.Name,
		What:       monitoring.ChildFailed,
		Strategy:   n.strategy.Name(),
		Reason:     errString(cause),
	})

	// The intensity budget trumps the strategy: too many failures in the
	// window and the node gives up on local recovery.
	if n.window.record(time.Now(), n.intensity) {
		return n.escalateLocked(ctx, h, errors.New("restart intensity exceeded"))
	}

	decision := n.strategy.Decide(n.viewLocked(cause == nil), id)
	switch decision.Kind {
	case DecideRestart:
		return n.executeRestartLocked(ctx, decision.Targets)
	case DecideStop:
		n.stopTargetsLocked(ctx, decision.Targets)
		return nil
	default:
		return n.escalateLocked(ctx, h, cause)
	}
}

// executeRestartLocked stops the targets in reverse listed order, then
// starts them again in listed order. ChildIDs are preserved; per-child
// restart counters increment and health streaks reset.
func (n *SupervisorNode) executeRestartLocked(ctx context.Context, targets []ChildID) error {
	n.stopTargetsLocked(ctx, targets)

	for _, id := range targets {
		h, ok := n.children[id]
		if !ok {
			continue
		}
		if err := n.startChild(ctx, h); err != nil {
			return n.escalateLocked(ctx, h, err)
		}
		h.restarts++
		h.streak = 0
		n.emit(monitoring.SupervisionEvent{
			Time:       time.Now(),
			Supervisor: n.label(),
			Child:      h.spec.Name,
			What:       monitoring.ChildRestarted,
			Strategy:   n.strategy.Name(),
		})
	}
	return nil
}

// stopTargetsLocked stops the listed children in reverse order. Children
// that are not running (including the failed one) are skipped.
func (n *SupervisorNode) stopTargetsLocked(ctx context.Context, targets []ChildID) {
	for i := len(targets) - 1; i >= 0; i-- {
		if h, ok := n.children[targets[i]]; ok {
			_ = n.stopChild(ctx, h)
		}
	}
}

// escalateLocked shuts the subtree down and packages the failure for the
// parent. If this node is the root, the caller receiving the error is the
// end of the line for this subtree.
func (n *SupervisorNode) escalateLocked(ctx context.Context, h *childHandle, cause error) error {
	n.emit(monitoring.SupervisionEvent{
		Time:       time.Now(),
		Supervisor: n.label(),
		Child:      h.spec.Name,
		What:       monitoring.Escalated,
		Strategy:   n.strategy.Name(),
		Reason:     errString(cause),
	})
	_ = n.stopSubtreeLocked(ctx)
	n.state = nodeStopped
	// The health loop may be the very goroutine executing this escalation,
	// so only signal it here; it drains on its own once the mutex frees.
	// Waiting for it under the lock would deadlock against a sweep.
	if loop := n.health; loop != nil {
		n.health = nil
		loop.interrupt()
	}
	return &EscalationError{
		Supervisor: n.label(),
		Child:      h.spec.ID,
		ChildName:  h.spec.Name,
		Err:        cause,
	}
}

// stopSubtreeLocked stops every running child in reverse start order.
func (n *SupervisorNode) stopSubtreeLocked(ctx context.Context) error {
	var errs []error
	for i := len(n.order) - 1; i >= 0; i-- {
		if h, ok := n.children[n.order[i]]; ok {
			if err := n.stopChild(ctx, h); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// startChild starts one child and records the outcome.
func (n *SupervisorNode) startChild(ctx context.Context, h *childHandle) error {
	if h.state == ChildRunning {
		return nil
	}
	if err := h.child.Start(ctx); err != nil {
		h.state = ChildFailed
		h.lastErr = err
		return &ChildError{ID: h.spec.ID, Name: h.spec.Name, Op: "start", Err: err}
	}
	h.state = ChildRunning
	h.lastErr = nil
	n.emit(monitoring.SupervisionEvent{
		Time:       time.Now(),
		Supervisor: n.label(),
		Child:      h.spec.Name,
		What:       monitoring.ChildStarted,
		Strategy:   n.strategy.Name(),
	})
	return nil
}

// stopChild stops one child according to its ShutdownPolicy. Stopping a
// child that is not running is a no-op success, so double stops are safe.
func (n *SupervisorNode) stopChild(ctx context.Context, h *childHandle) error {
	if h.state != ChildRunning {
		return nil
	}

	timeout, bounded := h.spec.Shutdown.Timeout()
	stopCtx := ctx
	var cancel context.CancelFunc
	switch {
	case h.spec.Shutdown.IsBrutal():
		timeout = 0
	case !bounded:
		timeout = -1
	case timeout > 0:
		stopCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := h.child.Stop(stopCtx, timeout); err != nil {
		// Timeout(d) is graceful-then-force: once the window closed, the
		// child is abandoned and the slot counts as stopped. Any other
		// stop error still marks the slot failed.
		if cancel != nil && (stopCtx.Err() != nil || errors.Is(err, context.DeadlineExceeded)) {
			h.state = ChildStopped
			h.lastErr = nil
			n.emit(monitoring.SupervisionEvent{
				Time:       time.Now(),
				Supervisor: n.label(),
				Child:      h.spec.Name,
				What:       monitoring.ChildStopped,
				Strategy:   n.strategy.Name(),
				Reason:     "shutdown timeout, abandoned",
			})
			return nil
		}
		h.state = ChildFailed
		h.lastErr = err
		return &ChildError{ID: h.spec.ID, Name: h.spec.Name, Op: "stop", Err: err}
	}
	h.state = ChildStopped
	n.emit(monitoring.SupervisionEvent{
		Time:       time.Now(),
		Supervisor: n.label(),
		Child:      h.spec.Name,
		What:       monitoring.ChildStopped,
		Strategy:   n.strategy.Name(),
	})
	return nil
}

// viewLocked snapshots the tree state for a strategy decision.
func (n *SupervisorNode) viewLocked(normalExit bool) FailureView {
	order := make([]ChildID, len(n.order))
	copy(order, n.order)
	policies := make(map[ChildID]RestartPolicy, len(n.children))
	significant := make(map[ChildID]bool, len(n.children))
	for id, h := range n.children {
		policies[id] = h.spec.Restart
		significant[id] = h.spec.Significant
	}
	return FailureView{
		Order:       order,
		Policies:    policies,
		Significant: significant,
		NormalExit:  normalExit,
	}
}

// ChildStatus is a point-in-time view of one child slot.
type ChildStatus struct {
	ID       ChildID `json:"id"`
	Name     string  `json:"name"`
	State    string  `json:"state"`
	Restarts uint32  `json:"restarts"`
	Policy   string  `json:"policy"`
	LastErr  string  `json:"lastError,omitempty"`
}

// Children returns the status of every child slot in start order.
func (n *SupervisorNode) Children() []ChildStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ChildStatus, 0, len(n.order))
	for _, id := range n.order {
		h := n.children[id]
		out = append(out, ChildStatus{
			ID:       id,
			Name:     h.spec.Name,
			State:    h.state.String(),
			Restarts: h.restarts,
			Policy:   h.spec.Restart.String(),
			LastErr:  errString(h.lastErr),
		})
	}
	return out
}

// ChildCount returns the number of registered child slots.
func (n *SupervisorNode) ChildCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.children)
}

// HasChild reports whether a slot is registered under the id.
func (n *SupervisorNode) HasChild(id ChildID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.children[id]
	return ok
}

// ChildRestarts returns the restart counter of a slot.
func (n *SupervisorNode) ChildRestarts(id ChildID) (uint32, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	h, ok := n.children[id]
	if !ok {
		return 0, false
	}
	return h.restarts, true
}

// --- Child implementation: a node is itself supervisable ---

// Start implements Child by starting the whole subtree.
func (n *SupervisorNode) Start(ctx context.Context) error {
	return n.StartAllChildren(ctx)
}

// Stop implements Child by stopping the whole subtree. A positive timeout
// bounds the total shutdown; zero and negative follow the Child contract.
func (n *SupervisorNode) Stop(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return n.StopAllChildren(ctx)
}

// HealthCheck implements HealthReporter: a node is healthy while it is
// running and none of its children sit in the failed state.
func (n *SupervisorNode) HealthCheck() ChildHealth {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != nodeRunning {
		return Unhealthy("supervisor is not running")
	}
	for _, id := range n.order {
		if h := n.children[id]; h.state == ChildFailed {
			return Unhealthy("child " + h.spec.Name + " failed")
		}
	}
	return Healthy()
}

func (n *SupervisorNode) emit(e monitoring.SupervisionEvent) {
	n.monitor.Record(e)
}

func (n *SupervisorNode) label() string {
	return n.name + "[" + n.id.String() + "]"
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
