// File: monitoring/journal.go
package monitoring

import (
	"encoding/binary"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
)

var journalBucket = []byte("events")

// Journal is a bbolt-backed append-only event sink. Each event is stored
// as a JSON record under a big-endian sequence key, so iteration order is
// write order. Writes are best-effort: a failed append does not disturb
// the runtime that produced the event.
type Journal struct {
	db *bolt.DB
}

// journalRecord is the on-disk shape of one event.
type journalRecord struct {
	Time     time.Time       `json:"time"`
	Severity string          `json:"severity"`
	Kind     string          `json:"kind"`
	Event    json.RawMessage `json:"event"`
}

// OpenJournal opens (or creates) a journal file.
func OpenJournal(path string) (*Journal, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(journalBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Record implements Monitor.
func (j *Journal) Record(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		return
	}
	rec, err := json.Marshal(journalRecord{
		Time:     e.EventTime(),
		Severity: e.Severity().String(),
		Kind:     e.EventKind(),
		Event:    payload,
	})
	if err != nil {
		return
	}
	_ = j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(journalBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		var key [8]byte
		binary.BigEndian.PutUint64(key[:], seq)
		return b.Put(key[:], rec)
	})
}

// Len returns the number of journaled events.
func (j *Journal) Len() (int, error) {
	var n int
	err := j.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(journalBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Each iterates the journal in write order, handing each raw JSON record
// to fn. Returning an error from fn stops the iteration.
func (j *Journal) Each(fn func(seq uint64, raw []byte) error) error {
	return j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(journalBucket).ForEach(func(k, v []byte) error {
			return fn(binary.BigEndian.Uint64(k), v)
		})
	})
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
