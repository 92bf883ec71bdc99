// File: supervisor/health_test.go
package supervisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/troupe/monitoring"
)

// probedChild is a fakeChild whose health probe is scriptable.
type probedChild struct {
	fakeChild

	healthMu sync.Mutex
	health   ChildHealth
}

func (c *probedChild) HealthCheck() ChildHealth {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()
	return c.health
}

func (c *probedChild) setHealth(h ChildHealth) {
	c.healthMu.Lock()
	c.health = h
	c.healthMu.Unlock()
}

func TestHealthLoop_RestartsPersistentlyUnhealthyChild(t *testing.T) {
	memory := monitoring.NewMemory(100)
	node := NewNode("root", OneForOne{},
		WithMonitor(memory),
		WithHealthChecks(HealthConfig{
			CheckInterval:      20 * time.Millisecond,
			UnhealthyThreshold: 2,
			RestartOnUnhealthy: true,
		}))

	child := &probedChild{fakeChild: fakeChild{name: "sick"}, health: Healthy()}
	spec := NewChildSpec("sick")
	require.NoError(t, node.AddChild(spec, child))
	require.NoError(t, node.StartAllChildren(context.Background()))
	defer func() { _ = node.StopAllChildren(context.Background()) }()

	child.setHealth(Unhealthy("stuck"))

	require.Eventually(t, func() bool {
		return child.Starts() >= 2
	}, 2*time.Second, 10*time.Millisecond,
		"two consecutive unhealthy probes should trigger a restart")

	child.setHealth(Healthy())

	var sawUnhealthy, sawRestart bool
	var healthCause bool
	for _, e := range memory.Events() {
		se, ok := e.(monitoring.SupervisionEvent)
		if !ok {
			continue
		}
		switch se.What {
		case monitoring.ChildUnhealthy:
			sawUnhealthy = true
		case monitoring.ChildRestarted:
			sawRestart = true
		case monitoring.ChildFailed:
			healthCause = healthCause || se.Reason != ""
		}
	}
	assert.True(t, sawUnhealthy, "unhealthy probes are reported")
	assert.True(t, sawRestart, "the restart is reported")
	assert.True(t, healthCause, "the synthetic failure carries the probe reason")

	restarts, ok := node.ChildRestarts(spec.ID)
	require.True(t, ok)
	assert.GreaterOrEqual(t, restarts, uint32(1))
}

func TestHealthLoop_ReportsWithoutRestartingWhenDisabled(t *testing.T) {
	memory := monitoring.NewMemory(100)
	node := NewNode("root", OneForOne{},
		WithMonitor(memory),
		WithHealthChecks(HealthConfig{
			CheckInterval:      15 * time.Millisecond,
			UnhealthyThreshold: 1,
			RestartOnUnhealthy: false,
		}))

	child := &probedChild{fakeChild: fakeChild{name: "flaky"}, health: Unhealthy("degraded")}
	require.NoError(t, node.AddChild(NewChildSpec("flaky"), child))
	require.NoError(t, node.StartAllChildren(context.Background()))
	defer func() { _ = node.StopAllChildren(context.Background()) }()

	require.Eventually(t, func() bool {
		for _, e := range memory.Events() {
			if se, ok := e.(monitoring.SupervisionEvent); ok && se.What == monitoring.ChildUnhealthy {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, child.Starts(), "reporting-only mode never restarts")
}

func TestHealthLoop_SkipsHealthyAndNonReportingChildren(t *testing.T) {
	node := NewNode("root", OneForOne{},
		WithHealthChecks(HealthConfig{
			CheckInterval:      10 * time.Millisecond,
			UnhealthyThreshold: 1,
			RestartOnUnhealthy: true,
		}))

	plain := &fakeChild{name: "plain"}
	probed := &probedChild{fakeChild: fakeChild{name: "fine"}, health: Healthy()}
	require.NoError(t, node.AddChild(NewChildSpec("plain"), plain))
	require.NoError(t, node.AddChild(NewChildSpec("fine"), probed))
	require.NoError(t, node.StartAllChildren(context.Background()))

	time.Sleep(80 * time.Millisecond)
	require.NoError(t, node.StopAllChildren(context.Background()))

	assert.Equal(t, 1, plain.Starts(), "children without probes are left alone")
	assert.Equal(t, 1, probed.Starts(), "healthy children are left alone")
}

func TestNode_EscalationStopsHealthLoop(t *testing.T) {
	node := NewNode("root", OneForOne{},
		WithHealthChecks(HealthConfig{
			CheckInterval:      10 * time.Millisecond,
			UnhealthyThreshold: 1,
			RestartOnUnhealthy: true,
		}))
	child := &fakeChild{name: "vital"}
	spec := NewChildSpec("vital", WithRestart(Temporary), Significant())
	require.NoError(t, node.AddChild(spec, child))
	require.NoError(t, node.StartAllChildren(context.Background()))

	node.mu.Lock()
	loop := node.health
	node.mu.Unlock()
	require.NotNil(t, loop)

	err := node.HandleChildFailure(context.Background(), spec.ID, errors.New("gone"))
	var esc *EscalationError
	require.True(t, errors.As(err, &esc))

	select {
	case <-loop.done:
	case <-time.After(2 * time.Second):
		t.Fatal("health loop goroutine must exit after escalation")
	}

	node.mu.Lock()
	assert.Nil(t, node.health, "the escalated node no longer owns a loop")
	node.mu.Unlock()

	assert.NoError(t, node.StopAllChildren(context.Background()),
		"stopping an escalated node stays a no-op success")
}

func TestHealthLoop_StopsItselfAfterEscalation(t *testing.T) {
	node := NewNode("root", OneForOne{},
		WithHealthChecks(HealthConfig{
			CheckInterval:      10 * time.Millisecond,
			UnhealthyThreshold: 1,
			RestartOnUnhealthy: true,
		}))
	child := &probedChild{fakeChild: fakeChild{name: "vital"}, health: Unhealthy("wedged")}
	spec := NewChildSpec("vital", WithRestart(Temporary), Significant())
	require.NoError(t, node.AddChild(spec, child))
	require.NoError(t, node.StartAllChildren(context.Background()))

	node.mu.Lock()
	loop := node.health
	node.mu.Unlock()
	require.NotNil(t, loop)

	// The sweep itself detects the unhealthy child, escalates, and must
	// still manage to wind its own goroutine down.
	select {
	case <-loop.done:
	case <-time.After(2 * time.Second):
		t.Fatal("health loop must exit after an escalation it triggered itself")
	}

	err := node.HandleChildFailure(context.Background(), spec.ID, errors.New("late"))
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestHealthError_Message(t *testing.T) {
	err := &HealthError{Reason: "deadlocked", Checks: 3}
	assert.Contains(t, err.Error(), "deadlocked")
	assert.Contains(t, err.Error(), "3")
	assert.False(t, errors.Is(err, context.Canceled))
}
