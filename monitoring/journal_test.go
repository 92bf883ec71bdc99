// File: monitoring/journal_test.go
package monitoring

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_AppendAndIterate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	journal, err := OpenJournal(path)
	require.NoError(t, err)
	defer journal.Close()

	journal.Record(SupervisionEvent{
		Time:       time.Now(),
		Supervisor: "root",
		Child:      "worker",
		What:       ChildStarted,
		Strategy:   "one_for_one",
	})
	journal.Record(SupervisionEvent{
		Time:       time.Now(),
		Supervisor: "root",
		Child:      "worker",
		What:       ChildFailed,
		Reason:     "crash",
	})

	n, err := journal.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var kinds []string
	var lastSeq uint64
	err = journal.Each(func(seq uint64, raw []byte) error {
		assert.Greater(t, seq, lastSeq, "iteration follows write order")
		lastSeq = seq

		var rec struct {
			Severity string          `json:"severity"`
			Kind     string          `json:"kind"`
			Event    json.RawMessage `json:"event"`
		}
		require.NoError(t, json.Unmarshal(raw, &rec))
		assert.NotEmpty(t, rec.Event)
		kinds = append(kinds, rec.Kind)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"supervision.child_started", "supervision.child_failed"}, kinds)
}

func TestJournal_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")

	journal, err := OpenJournal(path)
	require.NoError(t, err)
	journal.Record(ActorEvent{Time: time.Now(), Actor: "a", From: "starting", To: "running"})
	require.NoError(t, journal.Close())

	reopened, err := OpenJournal(path)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n, "journaled events persist across opens")
}

func TestJournal_EachStopsOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	journal, err := OpenJournal(path)
	require.NoError(t, err)
	defer journal.Close()

	for i := 0; i < 5; i++ {
		journal.Record(ActorEvent{Time: time.Now(), Actor: "a", To: "running"})
	}

	seen := 0
	sentinel := assert.AnError
	err = journal.Each(func(seq uint64, raw []byte) error {
		seen++
		if seen == 2 {
			return sentinel
		}
		return nil
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 2, seen)
}
