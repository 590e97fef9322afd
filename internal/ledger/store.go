// Package ledger holds the in-memory expense ledger: the record store, the
// read-only views derived from it and the date-driven deletion flow.
package ledger

import (
	"sync"

	"tracker/internal/core"
)

// Store owns the ordered collection of records. Its methods are the only
// mutation path; every read hands out copies.
type Store struct {
	mu     sync.Mutex
	nextID core.ID
	items  []core.Record
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Append assigns a fresh identity to rec and adds it at the end.
func (s *Store) Append(rec core.Record) core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.allocID()
	s.items = append(s.items, rec)
	return rec
}

// DeleteByID removes the record with the given identity and returns it.
func (s *Store) DeleteByID(id core.ID) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.items {
		if rec.ID != id {
			continue
		}
		s.items = append(s.items[:i:i], s.items[i+1:]...)
		return rec, nil
	}
	return core.Record{}, core.Errorf(core.KindNotFound, "no record with id %d", id)
}

// Get returns the record with the given identity.
func (s *Store) Get(id core.ID) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.items {
		if rec.ID == id {
			return rec, nil
		}
	}
	return core.Record{}, core.Errorf(core.KindNotFound, "no record with id %d", id)
}

// Clear drops every record. Identities keep counting up.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// ReplaceAll discards the current collection and installs recs in their
// given order, each with a fresh identity. It is a full replace, not a merge.
func (s *Store) ReplaceAll(recs []core.Record) []core.Record {
	items := make([]core.Record, len(recs))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range recs {
		rec.ID = s.allocID()
		items[i] = rec
	}
	s.items = items
	return append([]core.Record(nil), items...)
}

// Len returns the number of live records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// All returns every record in ledger order.
func (s *Store) All() View {
	return s.filter(func(core.Record) bool { return true })
}

func (s *Store) filter(keep func(core.Record) bool) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(View, 0, len(s.items))
	for _, rec := range s.items {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// allocID must be called with mu held.
func (s *Store) allocID() core.ID {
	s.nextID++
	return s.nextID
}
