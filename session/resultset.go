package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"resultflow/items"
)

// NoChild addresses a top-level entry rather than one of its children.
const NoChild = -1

// Entry is one top-level item together with the module that produced it.
type Entry struct {
	Module string
	Item   items.Item
}

// Ref addresses an item of one specific result set. A Ref outlives the set
// it points into, but resolving it after the set is replaced fails.
type Ref struct {
	Set   uuid.UUID
	Index int
	Child int
}

// ResultSet is the arena of items produced for one query. It holds the only
// session-side references to its items; releasing it drops them all at once.
type ResultSet struct {
	id      uuid.UUID
	query   string
	mu      sync.RWMutex
	entries []Entry
	closed  bool
}

func newResultSet(query string, entries []Entry) *ResultSet {
	return &ResultSet{
		id:      uuid.New(),
		query:   query,
		entries: entries,
	}
}

func (s *ResultSet) ID() uuid.UUID { return s.id }
func (s *ResultSet) Query() string { return s.query }

func (s *ResultSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a copy of the entries, empty once the set is released.
func (s *ResultSet) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.entries...)
}

func (s *ResultSet) Released() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *ResultSet) Ref(index int) Ref {
	return Ref{Set: s.id, Index: index, Child: NoChild}
}

func (s *ResultSet) ChildRef(index, child int) Ref {
	return Ref{Set: s.id, Index: index, Child: child}
}

func (s *ResultSet) resolve(ref Ref) (items.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || ref.Set != s.id {
		return nil, ErrStaleResult
	}
	if ref.Index < 0 || ref.Index >= len(s.entries) {
		return nil, fmt.Errorf("index %d of %d: %w", ref.Index, len(s.entries), ErrNoSuchItem)
	}

	item := s.entries[ref.Index].Item
	if ref.Child == NoChild {
		return item, nil
	}

	children := item.Children()
	if ref.Child < 0 || ref.Child >= len(children) {
		return nil, fmt.Errorf("child %d of %d under item %d: %w", ref.Child, len(children), ref.Index, ErrNoSuchItem)
	}
	return children[ref.Child], nil
}

func (s *ResultSet) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
}
