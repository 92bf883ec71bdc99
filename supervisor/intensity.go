// File: supervisor/intensity.go
package supervisor

import "time"

// RestartIntensity is the restart budget of one node: more than
// MaxRestarts qualifying failures within Window force an escalation
// regardless of strategy, preventing restart storms.
type RestartIntensity struct {
	MaxRestarts int
	Window      time.Duration
}

// DefaultIntensity allows 5 restarts per minute.
func DefaultIntensity() RestartIntensity {
	return RestartIntensity{MaxRestarts: 5, Window: time.Minute}
}

// restartWindow tracks failure timestamps for the sliding-window check.
// Owned by the node, guarded by the node's mutex.
type restartWindow struct {
	times []time.Time
}

// record prunes expired entries, appends now, and reports whether the
// budget is exceeded.
func (w *restartWindow) record(now time.Time, intensity RestartIntensity) bool {
	if intensity.MaxRestarts <= 0 || intensity.Window <= 0 {
		return false
	}
	cutoff := now.Add(-intensity.Window)
	kept := w.times[:0]
	for _, t := range w.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.times = append(kept, now)
	return len(w.times) > intensity.MaxRestarts
}

// reset clears the window.
func (w *restartWindow) reset() {
	w.times = w.times[:0]
}
