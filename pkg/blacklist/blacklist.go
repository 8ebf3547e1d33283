// Package blacklist remembers access tokens that must not be accepted again
// before they expire.
package blacklist

import (
	"context"
	"sync"
	"time"
)

// Blacklist records token IDs until their expiry.
type Blacklist interface {
	Add(ctx context.Context, jti string, exp time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// Memory is an in-process Blacklist. Entries vanish at their expiry.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemory returns an empty in-process blacklist.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]time.Time), now: time.Now}
}

// Add blacklists jti until exp. Tokens that already expired are ignored.
func (m *Memory) Add(_ context.Context, jti string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !exp.After(now) {
		return nil
	}
	m.entries[jti] = exp
	m.sweep(now)
	return nil
}

// Contains reports whether jti is blacklisted and not yet expired.
func (m *Memory) Contains(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if !exp.After(m.now()) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) sweep(now time.Time) {
	for jti, exp := range m.entries {
		if !exp.After(now) {
			delete(m.entries, jti)
		}
	}
}
