// Package session tracks which live connection speaks for which player.
package session

import (
	"fmt"
	"sort"
	"sync"
)

// Sender delivers an outbound message to one connection. Delivery is best
// effort; implementations swallow write failures.
type Sender interface {
	Send(msg any)
}

// Manager maps player ids to their connection's Sender.
// All methods are safe for concurrent use. Its lock is independent of the
// game room's lock and is never held while sending.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int]Sender // player id → sender
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int]Sender),
	}
}

// Register records the sender for a player.
//
// Precondition: s must be non-nil.
// Postcondition: Returns an error if the player id is already registered.
func (m *Manager) Register(playerID int, s Sender) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[playerID]; exists {
		return fmt.Errorf("player %d already has a session", playerID)
	}
	m.sessions[playerID] = s
	return nil
}

// Unregister removes a player's sender.
//
// Postcondition: Returns false if the player had no session.
func (m *Manager) Unregister(playerID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[playerID]; !exists {
		return false
	}
	delete(m.sessions, playerID)
	return true
}

// Get returns the sender for the given player.
//
// Postcondition: Returns (sender, true) if found, or (nil, false) otherwise.
func (m *Manager) Get(playerID int) (Sender, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[playerID]
	return s, ok
}

// Snapshot returns the current senders in ascending player id order.
// Sessions added or removed afterwards are not reflected.
func (m *Manager) Snapshot() []Sender {
	m.mu.RLock()
	ids := make([]int, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Sender, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.sessions[id])
	}
	m.mu.RUnlock()
	return out
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
