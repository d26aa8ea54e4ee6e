// Package history provides SessionHistory implementations: an in-process one
// for single-instance bots and a Redis-backed one for fleets.
package history

import (
	"container/list"
	"context"
	"sync"

	"voicebot/internal/ports/output"
)

const (
	// DefaultCapacity bounds the recent-use record per (user, key).
	DefaultCapacity = 3
	// DefaultMaxUsers bounds total memory at user granularity; the least
	// recently active user is evicted first once the cap is hit.
	DefaultMaxUsers = 10000
)

// Rough per-entry estimates for SizeBytes. Map headers, strings and list
// elements vary by runtime; this only needs to be the right order of
// magnitude for capacity planning.
const (
	bytesPerUser  = 96
	bytesPerEntry = 24
)

// Ensure Memory implements the output.SessionHistory port.
var _ output.SessionHistory = (*Memory)(nil)

// Memory is the in-process session history. Access for different users
// proceeds without contention beyond a brief index lookup; access for the
// same user is serialized on that user's own lock.
type Memory struct {
	mu       sync.Mutex // guards users and order
	users    map[string]*userHistory
	order    *list.List // user LRU, front = most recently active
	capacity int
	maxUsers int
}

type userHistory struct {
	mu   sync.Mutex
	id   string
	elem *list.Element
	keys map[string][]string // per key: most recent first, len <= capacity
}

// MemoryOption configures a Memory history.
type MemoryOption func(*Memory)

// WithCapacity sets the per-(user, key) bound.
func WithCapacity(capacity int) MemoryOption {
	return func(m *Memory) {
		if capacity > 0 {
			m.capacity = capacity
		}
	}
}

// WithMaxUsers sets the global cap on tracked users.
func WithMaxUsers(maxUsers int) MemoryOption {
	return func(m *Memory) {
		if maxUsers > 0 {
			m.maxUsers = maxUsers
		}
	}
}

// NewMemory builds an empty history with the default bounds.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		users:    make(map[string]*userHistory),
		order:    list.New(),
		capacity: DefaultCapacity,
		maxUsers: DefaultMaxUsers,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// user returns the entry for userID, creating it lazily and bumping its LRU
// position. Evicts the least recently active user when over the cap.
func (m *Memory) user(userID string) *userHistory {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[userID]; ok {
		m.order.MoveToFront(u.elem)
		return u
	}
	if len(m.users) >= m.maxUsers {
		if back := m.order.Back(); back != nil {
			evicted := back.Value.(*userHistory)
			m.order.Remove(back)
			delete(m.users, evicted.id)
		}
	}
	u := &userHistory{id: userID, keys: make(map[string][]string)}
	u.elem = m.order.PushFront(u)
	m.users[userID] = u
	return u
}

// Record implements output.SessionHistory.
func (m *Memory) Record(ctx context.Context, userID, key, variantID string) error {
	u := m.user(userID)

	u.mu.Lock()
	defer u.mu.Unlock()
	ring := u.keys[key]
	ring = append([]string{variantID}, ring...)
	if len(ring) > m.capacity {
		ring = ring[:m.capacity]
	}
	u.keys[key] = ring
	return nil
}

// RecentlyUsed implements output.SessionHistory.
func (m *Memory) RecentlyUsed(ctx context.Context, userID, key string) ([]string, error) {
	m.mu.Lock()
	u, ok := m.users[userID]
	if ok {
		m.order.MoveToFront(u.elem)
	}
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	ring := u.keys[key]
	out := make([]string, len(ring))
	copy(out, ring)
	return out, nil
}

// EvictUser implements output.SessionHistory. The next selection for the
// user behaves exactly like a first-ever selection.
func (m *Memory) EvictUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		m.order.Remove(u.elem)
		delete(m.users, userID)
	}
	return nil
}

// SizeBytes implements output.SessionHistory.
func (m *Memory) SizeBytes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total int64
	for _, u := range m.users {
		u.mu.Lock()
		total += bytesPerUser
		for key, ring := range u.keys {
			total += int64(len(key)) + int64(len(ring))*bytesPerEntry
		}
		u.mu.Unlock()
	}
	return total
}

// Users reports how many users are currently tracked.
func (m *Memory) Users() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}
