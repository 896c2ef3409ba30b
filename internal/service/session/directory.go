package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/sandevgo/policyadvisor/internal/core"
)

// Lister is the slice of the backend the directory needs.
type Lister interface {
	ListSessions(ctx context.Context) ([]core.SessionSummary, error)
}

// Directory is a lazily refreshed cache of session summaries for the history
// picker. It never refreshes on its own; staleness after a delete is fixed
// by removing the entry locally rather than refetching.
type Directory struct {
	mu       sync.Mutex
	backend  Lister
	sessions []core.SessionSummary
}

func NewDirectory(backend Lister) *Directory {
	return &Directory{backend: backend}
}

// Refresh fetches the current listing and replaces the cache.
func (d *Directory) Refresh(ctx context.Context) ([]core.SessionSummary, error) {
	sessions, err := d.backend.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session directory: %w", err)
	}

	d.mu.Lock()
	d.sessions = sessions
	d.mu.Unlock()
	return d.Cached(), nil
}

// Cached returns the last fetched listing, possibly stale, possibly empty.
func (d *Directory) Cached() []core.SessionSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]core.SessionSummary, len(d.sessions))
	copy(out, d.sessions)
	return out
}

// Remove drops an entry locally, reflecting a deletion immediately without
// a round trip.
func (d *Directory) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.sessions {
		if s.ID == id {
			d.sessions = append(d.sessions[:i], d.sessions[i+1:]...)
			return
		}
	}
}
