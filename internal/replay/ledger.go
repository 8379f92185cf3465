// Package replay remembers recently seen webhook signatures so an identical
// delivery replayed inside the freshness window is processed only once.
package replay

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	defaultTTL        = 6 * time.Minute
	defaultMaxEntries = 8192
)

var ErrEmptyKey = errors.New("replay: key is required")

// Ledger claims keys for a limited time. Claim returns true the first time a key
// is seen and false while an earlier claim is still live. Release drops a claim so
// the key can be claimed again, e.g. after the claimed delivery failed to record.
type Ledger interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Memory is a process-local Ledger. Suitable for a single replica.
type Memory struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]time.Time

	Now func() time.Time
}

func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Memory{
		maxEntries: maxEntries,
		entries:    map[string]time.Time{},
		Now:        time.Now,
	}
}

func (m *Memory) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, ErrEmptyKey
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked(now)
	if expiresAt, ok := m.entries[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	for len(m.entries) >= m.maxEntries {
		m.evictOldestLocked()
	}
	m.entries[key] = now.Add(ttl)
	return true, nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len reports live entries. Used by tests and metrics.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked(m.now())
	return len(m.entries)
}

func (m *Memory) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Memory) pruneLocked(now time.Time) {
	for key, expiresAt := range m.entries {
		if !now.Before(expiresAt) {
			delete(m.entries, key)
		}
	}
}

func (m *Memory) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, expiresAt := range m.entries {
		if oldestKey == "" || expiresAt.Before(oldest) {
			oldestKey = key
			oldest = expiresAt
		}
	}
	delete(m.entries, oldestKey)
}
