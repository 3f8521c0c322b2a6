package library

import (
	"context"
	"sync"
)

// Memory keeps each user's library in memory for duplicate checks and
// dashboards. Writes are last-write-wins; there is no version column.
type Memory struct {
	mu     sync.RWMutex
	repo   Repository
	byUser map[string][]Entry
	// version counts writes per user, loaded or not. A load that overlaps
	// a write is discarded and retried.
	version map[string]uint64
}

func NewMemory(repo Repository) *Memory {
	return &Memory{
		repo:    repo,
		byUser:  make(map[string][]Entry),
		version: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the user's entries in fetch order, loading them
// from the repository on first use.
func (m *Memory) Snapshot(ctx context.Context, userID string) ([]Entry, error) {
	for {
		m.mu.RLock()
		entries, ok := m.byUser[userID]
		seen := m.version[userID]
		m.mu.RUnlock()
		if ok {
			return cloneEntries(entries), nil
		}

		loaded, err := m.repo.List(ctx, Filter{UserID: userID})
		if err != nil {
			return nil, persistenceErr("list", err)
		}

		m.mu.Lock()
		if current, ok := m.byUser[userID]; ok {
			m.mu.Unlock()
			return cloneEntries(current), nil
		}
		if m.version[userID] == seen {
			m.byUser[userID] = loaded
			m.mu.Unlock()
			return cloneEntries(loaded), nil
		}
		m.mu.Unlock()

		// a write landed while List was running; the result may be stale
		if err := ctx.Err(); err != nil {
			return nil, persistenceErr("list", err)
		}
	}
}

// Put inserts or replaces an entry. New entries go to the front so the
// snapshot keeps newest-first order.
func (m *Memory) Put(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version[e.UserID]++
	entries, ok := m.byUser[e.UserID]
	if !ok {
		// not loaded yet; the next Snapshot reads it from the repository
		return
	}
	for i := range entries {
		if entries[i].ID == e.ID {
			entries[i] = e
			return
		}
	}
	m.byUser[e.UserID] = append([]Entry{e}, entries...)
}

func (m *Memory) Remove(userID, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version[userID]++
	entries := m.byUser[userID]
	for i := range entries {
		if entries[i].ID == id {
			m.byUser[userID] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Invalidate drops the cached copy so the next Snapshot reloads it.
func (m *Memory) Invalidate(userID string) {
	m.mu.Lock()
	delete(m.byUser, userID)
	m.version[userID]++
	m.mu.Unlock()
}

func cloneEntries(in []Entry) []Entry {
	out := make([]Entry, len(in))
	copy(out, in)
	return out
}
