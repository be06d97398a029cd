// Package repository persists the event journal of hosted games.
package repository

import (
	"context"
	"sync"

	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// EventStore is a journal that can also read a game's records back.
type EventStore interface {
	Append(ctx context.Context, gameID string, records []rules.Record) error
	Records(ctx context.Context, gameID string) ([]rules.Record, error)
	Close()
}

// MemoryJournal keeps records in process. It is used when no database is
// configured and in tests.
type MemoryJournal struct {
	mu      sync.RWMutex
	records map[string][]rules.Record
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{records: make(map[string][]rules.Record)}
}

// Append stores copies of records for gameID.
func (j *MemoryJournal) Append(_ context.Context, gameID string, records []rules.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, r := range records {
		j.records[gameID] = append(j.records[gameID], copyRecord(r))
	}
	return nil
}

// Records returns the journal of gameID in sequence order.
func (j *MemoryJournal) Records(_ context.Context, gameID string) ([]rules.Record, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	stored := j.records[gameID]
	out := make([]rules.Record, len(stored))
	for i, r := range stored {
		out[i] = copyRecord(r)
	}
	return out, nil
}

// Games returns the IDs with at least one record.
func (j *MemoryJournal) Games() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	ids := make([]string, 0, len(j.records))
	for id := range j.records {
		ids = append(ids, id)
	}
	return ids
}

// Close is a no-op.
func (j *MemoryJournal) Close() {}

func copyRecord(r rules.Record) rules.Record {
	if r.TargetIDs != nil {
		r.TargetIDs = append([]string(nil), r.TargetIDs...)
	}
	if r.Metadata != nil {
		meta := make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			meta[k] = v
		}
		r.Metadata = meta
	}
	return r
}
