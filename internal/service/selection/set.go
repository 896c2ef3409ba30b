package selection

import (
	"sync"

	"github.com/sandevgo/policyadvisor/internal/core"
)

// Capacity is the most policies a side-by-side comparison can hold.
const Capacity = 3

// MinCompare is the fewest selections a comparison makes sense for.
const MinCompare = 2

type Entry struct {
	ID          string
	DisplayName string
}

// Set is the bounded pick of policies queued for comparison, plus the last
// comparison result produced from it. It is scoped to the visible result
// list: a session switch or a fresh result set invalidates both.
type Set struct {
	mu      sync.Mutex
	entries []Entry
	pending *core.Comparison
}

func NewSet() *Set {
	return &Set{}
}

// Toggle removes id when present, otherwise adds it if there is room.
// The return value reports whether id is selected afterwards; a rejected
// fourth addition returns false so the UI never pretends it succeeded.
func (s *Set) Toggle(id, displayName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return false
		}
	}

	if len(s.entries) >= Capacity {
		return false
	}
	s.entries = append(s.entries, Entry{ID: id, DisplayName: displayName})
	return true
}

func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (s *Set) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Set) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.ID)
	}
	return out
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// CanCompare reports whether enough policies are selected to compare.
func (s *Set) CanCompare() bool {
	return s.Len() >= MinCompare
}

// Clear drops the selection and any pending comparison result. Called on
// every session switch/create and whenever a new result set arrives, since
// stale ids must not be compared against a different list.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.pending = nil
}

func (s *Set) SetComparison(c *core.Comparison) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = c
}

func (s *Set) Comparison() *core.Comparison {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
