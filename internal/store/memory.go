// Package store persists editing sessions for the core Service.
//
// Memory keeps saved sessions for the life of the process, which is enough
// to survive idle eviction. Postgres keeps them across restarts.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/sheets/internal/core"
)

type memoryEntry struct {
	state     core.WorkbookState
	updatedAt time.Time
}

// Memory is an in-process SessionStore.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Save stores state under id, replacing any previous state.
func (m *Memory) Save(_ context.Context, id string, state core.WorkbookState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{state: state, updatedAt: m.now()}
	return nil
}

// Load returns the state saved under id.
func (m *Memory) Load(_ context.Context, id string) (core.WorkbookState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return core.WorkbookState{}, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	return e.state, nil
}

// Delete removes the state saved under id.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	delete(m.entries, id)
	return nil
}

// Purge removes sessions not saved since before.
func (m *Memory) Purge(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.entries {
		if e.updatedAt.Before(before) {
			delete(m.entries, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of saved sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
