// File: monitoring/memory.go
package monitoring

import (
	"sync"
	"time"
)

// Memory keeps a bounded in-process history of events plus running
// severity counters. Useful for tests, status endpoints, and debugging.
type Memory struct {
	mu     sync.Mutex
	max    int
	filter EventSeverity
	events []Event
	counts map[EventSeverity]uint64
	total  uint64
}

// DefaultHistorySize bounds the event history when none is given.
const DefaultHistorySize = 1000

// NewMemory creates an in-memory monitor retaining at most max events.
func NewMemory(max int) *Memory {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &Memory{
		max:    max,
		filter: SeverityDebug,
		counts: make(map[EventSeverity]uint64),
	}
}

// SetSeverityFilter drops events below the given severity. Counters still
// include filtered events; only the retained history is affected.
func (m *Memory) SetSeverityFilter(min EventSeverity) {
	m.mu.Lock()
	m.filter = min
	m.mu.Unlock()
}

// Record implements Monitor.
func (m *Memory) Record(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total++
	m.counts[e.Severity()]++
	if e.Severity() < m.filter {
		return
	}
	m.events = append(m.events, e)
	if len(m.events) > m.max {
		m.events = m.events[len(m.events)-m.max:]
	}
}

// Events returns a copy of the retained history, oldest first.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Snapshot is a point-in-time summary of recorded events.
type Snapshot struct {
	Time     time.Time         `json:"time"`
	Total    uint64            `json:"total"`
	Counts   map[string]uint64 `json:"counts"`
	Retained int               `json:"retained"`
}

// Snapshot summarizes the monitor's counters.
func (m *Memory) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]uint64, len(m.counts))
	for sev, n := range m.counts {
		counts[sev.String()] = n
	}
	return Snapshot{
		Time:     time.Now(),
		Total:    m.total,
		Counts:   counts,
		Retained: len(m.events),
	}
}
