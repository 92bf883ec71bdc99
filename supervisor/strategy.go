// File: supervisor/strategy.go
package supervisor

// FailureView is the read-only tree state a strategy decides over: the
// children in start order with their policies and significance flags,
// plus whether the triggering exit was normal. Strategies are pure
// functions of this view; all execution state stays in the node.
type FailureView struct {
	Order       []ChildID
	Policies    map[ChildID]RestartPolicy
	Significant map[ChildID]bool
	NormalExit  bool
}

// DecisionKind classifies a supervision decision.
type DecisionKind int

const (
	// DecideRestart restarts the listed children: stop in reverse listed
	// order, start in listed order.
	DecideRestart DecisionKind = iota

	// DecideStop stops the listed children without restarting them.
	DecideStop

	// DecideEscalate surfaces the failure to whatever supervises the node.
	DecideEscalate
)

func (k DecisionKind) String() string {
	switch k {
	case DecideRestart:
		return "restart"
	case DecideStop:
		return "stop"
	default:
		return "escalate"
	}
}

// Decision is the unambiguous output of a strategy: a kind and, for
// Restart and Stop, the explicit ordered target set.
type Decision struct {
	Kind    DecisionKind
	Targets []ChildID
}

// Restart builds a restart decision over the given targets.
func Restart(targets ...ChildID) Decision {
	return Decision{Kind: DecideRestart, Targets: targets}
}

// StopChildren builds a stop decision over the given targets.
func StopChildren(targets ...ChildID) Decision {
	return Decision{Kind: DecideStop, Targets: targets}
}

// Escalate builds an escalate decision.
func Escalate() Decision {
	return Decision{Kind: DecideEscalate}
}

// Strategy maps a child failure to a supervision decision. Implementations
// must be pure: same view and failed id, same decision.
type Strategy interface {
	Name() string
	Decide(view FailureView, failed ChildID) Decision
}

// OneForOne restarts only the failed child. Use it when children are
// independent of each other.
type OneForOne struct{}

func (OneForOne) Name() string { return "one_for_one" }

func (OneForOne) Decide(view FailureView, failed ChildID) Decision {
	if view.Policies[failed].ShouldRestart(!view.NormalExit) {
		return Restart(failed)
	}
	if view.Significant[failed] {
		return Escalate()
	}
	return StopChildren(failed)
}

// OneForAll stops all children and restarts them in their original start
// order whenever any one of them fails. Use it when children share state
// that a partial restart would corrupt.
//
// A failed child whose own policy forbids restart does not exempt its
// siblings: the group decision is taken over all policies, and the group
// restarts if any member's policy allows it.
type OneForAll struct{}

func (OneForAll) Name() string { return "one_for_all" }

func (OneForAll) Decide(view FailureView, failed ChildID) Decision {
	if anyShouldRestart(view) {
		return Restart(view.Order...)
	}
	if view.Significant[failed] {
		return Escalate()
	}
	return StopChildren(view.Order...)
}

// RestForOne restarts the failed child and every child started after it,
// leaving earlier children untouched. It models a dependency chain where
// later children may depend on earlier ones but never the reverse.
type RestForOne struct{}

func (RestForOne) Name() string { return "rest_for_one" }

func (RestForOne) Decide(view FailureView, failed ChildID) Decision {
	idx := -1
	for i, id := range view.Order {
		if id == failed {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Unknown child: nothing to decide over.
		return StopChildren(failed)
	}
	rest := view.Order[idx:]
	if view.Policies[failed].ShouldRestart(!view.NormalExit) {
		targets := make([]ChildID, len(rest))
		copy(targets, rest)
		return Restart(targets...)
	}
	if view.Significant[failed] {
		return Escalate()
	}
	targets := make([]ChildID, len(rest))
	copy(targets, rest)
	return StopChildren(targets...)
}

// anyShouldRestart reports whether at least one child's policy allows a
// restart for the triggering exit.
func anyShouldRestart(view FailureView) bool {
	for _, policy := range view.Policies {
		if policy.ShouldRestart(!view.NormalExit) {
			return true
		}
	}
	return false
}
