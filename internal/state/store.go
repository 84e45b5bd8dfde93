package state

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/modedeck/internal/modes"
)

var (
	// ErrNoMode is returned for a mode type the store was not built with.
	ErrNoMode = errors.New("mode not tracked")
	// ErrNoEntry is returned when an index is outside the current list.
	ErrNoEntry = errors.New("no entry at index")
)

// SyncState describes how a mode list relates to the backend's view of it.
type SyncState int

const (
	// Uninitialized lists hold only the defaults; no snapshot arrived yet.
	Uninitialized SyncState = iota
	// Synced lists match the latest snapshot.
	Synced
	// PendingLocalEdit lists carry at least one optimistic edit.
	PendingLocalEdit
)

func (s SyncState) String() string {
	switch s {
	case Synced:
		return "synced"
	case PendingLocalEdit:
		return "pending"
	default:
		return "uninitialized"
	}
}

// List is a copy of one mode list as seen at a point in time.
type List struct {
	Mode       modes.Type
	Entries    []modes.Entry
	State      SyncState
	LastSynced time.Time
}

// Link summarises backend reachability.
type Link struct {
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the backend has been unreachable for multiple polls.
func (l Link) IsOffline() bool {
	return l.ConsecutiveFailures >= 2
}

type list struct {
	entries    []modes.Entry
	state      SyncState
	lastSynced time.Time
}

// Store owns the mode lists. Every method is one atomic transition.
type Store struct {
	mu       sync.RWMutex
	ids      *modes.IDSource
	order    []modes.Type
	lists    map[modes.Type]*list
	link     Link
	revision uint64
}

// NewStore creates a store tracking the given schemas, each list starting
// with the schema's default entry.
func NewStore(ids *modes.IDSource, schemas ...modes.Schema) *Store {
	if ids == nil {
		ids = modes.NewIDSource()
	}
	s := &Store{ids: ids, lists: make(map[modes.Type]*list, len(schemas))}
	for _, schema := range schemas {
		if _, dup := s.lists[schema.Type]; dup {
			continue
		}
		s.order = append(s.order, schema.Type)
		s.lists[schema.Type] = &list{entries: []modes.Entry{schema.Default(ids)}}
	}
	return s
}

// IDs returns the id source shared by every list in the store.
func (s *Store) IDs() *modes.IDSource {
	return s.ids
}

// Modes returns the tracked mode types in registration order.
func (s *Store) Modes() []modes.Type {
	return slices.Clone(s.order)
}

// Revision increments on every change and lets readers skip redraws.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// List returns a copy of the list for mode.
func (s *Store) List(mode modes.Type) (List, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lists[mode]
	if !ok {
		return List{}, false
	}
	return List{
		Mode:       mode,
		Entries:    slices.Clone(l.entries),
		State:      l.state,
		LastSynced: l.lastSynced,
	}, true
}

// Entry returns the entry at index.
func (s *Store) Entry(mode modes.Type, index int) (modes.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lists[mode]
	if !ok || index < 0 || index >= len(l.entries) {
		return modes.Entry{}, false
	}
	return l.entries[index], true
}

// Edit replaces the entry at index with fn's result and marks the list as
// carrying a local edit. fn runs under the write lock and must not call back
// into the store.
func (s *Store) Edit(mode modes.Type, index int, fn func(modes.Entry) modes.Entry) (modes.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[mode]
	if !ok {
		return modes.Entry{}, fmt.Errorf("%w: %s", ErrNoMode, mode)
	}
	if index < 0 || index >= len(l.entries) {
		return modes.Entry{}, fmt.Errorf("%w: %s[%d]", ErrNoEntry, mode, index)
	}

	updated := fn(l.entries[index])
	updated.ID = l.entries[index].ID
	l.entries[index] = updated
	l.state = PendingLocalEdit
	s.revision++
	return updated, nil
}

// Replace swaps the whole list for mode and marks it synced.
func (s *Store) Replace(mode modes.Type, entries []modes.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[mode]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoMode, mode)
	}
	l.entries = slices.Clone(entries)
	l.state = Synced
	l.lastSynced = time.Now()
	s.revision++
	return nil
}

// RecordLink stores the outcome of a backend poll. When err is non-nil the
// failure counter grows; a nil err resets it.
func (s *Store) RecordLink(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.link.LastUpdated = time.Now()
	if err != nil {
		s.link.LastError = err
		s.link.ConsecutiveFailures++
	} else {
		s.link.LastError = nil
		s.link.ConsecutiveFailures = 0
	}
	s.revision++
}

// Link returns backend reachability.
func (s *Store) Link() Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link := s.link
	if s.link.LastError != nil {
		link.LastError = fmt.Errorf("%w", s.link.LastError)
	}
	return link
}
