// File: monitoring/memory_test.go
package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actorEvent(to string, restarts uint32) ActorEvent {
	return ActorEvent{
		Time:     time.Now(),
		Actor:    "worker[0]",
		From:     "running",
		To:       to,
		Restarts: restarts,
	}
}

func TestMemory_RetainsInOrder(t *testing.T) {
	m := NewMemory(10)
	m.Record(actorEvent("running", 0))
	m.Record(actorEvent("stopping", 0))
	m.Record(actorEvent("stopped", 0))

	events := m.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "actor.running", events[0].EventKind())
	assert.Equal(t, "actor.stopped", events[2].EventKind())
}

func TestMemory_BoundsHistory(t *testing.T) {
	m := NewMemory(3)
	for i := 0; i < 10; i++ {
		m.Record(actorEvent("running", 0))
	}
	assert.Len(t, m.Events(), 3, "history must not grow past its bound")

	snap := m.Snapshot()
	assert.Equal(t, uint64(10), snap.Total, "counters see every event")
	assert.Equal(t, 3, snap.Retained)
}

func TestMemory_SeverityFilter(t *testing.T) {
	m := NewMemory(10)
	m.SetSeverityFilter(SeverityError)

	m.Record(actorEvent("running", 0)) // info
	m.Record(actorEvent("failed", 0))  // error

	events := m.Events()
	require.Len(t, events, 1, "only errors pass the filter")
	assert.Equal(t, "actor.failed", events[0].EventKind())

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.Total, "filtered events are still counted")
	assert.Equal(t, uint64(1), snap.Counts["info"])
	assert.Equal(t, uint64(1), snap.Counts["error"])
}

func TestActorEvent_Severities(t *testing.T) {
	assert.Equal(t, SeverityError, actorEvent("failed", 0).Severity())
	assert.Equal(t, SeverityWarning, actorEvent("starting", 1).Severity(),
		"a restart shows as a warning")
	assert.Equal(t, SeverityInfo, actorEvent("starting", 0).Severity())
	assert.Equal(t, SeverityInfo, actorEvent("stopped", 0).Severity())
}

func TestSupervisionEvent_Severities(t *testing.T) {
	mk := func(what SupervisionEventKind) SupervisionEvent {
		return SupervisionEvent{Time: time.Now(), Supervisor: "root", What: what}
	}
	assert.Equal(t, SeverityError, mk(ChildFailed).Severity())
	assert.Equal(t, SeverityError, mk(Escalated).Severity())
	assert.Equal(t, SeverityWarning, mk(ChildRestarted).Severity())
	assert.Equal(t, SeverityWarning, mk(ChildUnhealthy).Severity())
	assert.Equal(t, SeverityInfo, mk(ChildStarted).Severity())
	assert.Equal(t, "supervision.child_started", mk(ChildStarted).EventKind())
}

type countingMonitor struct{ n int }

func (c *countingMonitor) Record(Event) { c.n++ }

func TestTee_FansOutAndSkipsNil(t *testing.T) {
	a := &countingMonitor{}
	b := &countingMonitor{}
	tee := Tee(a, nil, b, Noop{})

	tee.Record(actorEvent("running", 0))
	tee.Record(actorEvent("stopped", 0))

	assert.Equal(t, 2, a.n)
	assert.Equal(t, 2, b.n)
}
