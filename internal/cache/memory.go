package cache

import (
	"context"
	"sync"
	"time"

	"github.com/qdoctor/agent/internal/core"
)

// Memory is the exact-match L1 store: TTL-bounded, size-capped, safe for
// concurrent use. Expired entries are dropped lazily on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]core.CacheEntry
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

func NewMemory(ttl time.Duration, maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = 128
	}
	return &Memory{
		entries: make(map[string]core.CacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key string) (core.FinalResponse, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return core.FinalResponse{}, false, nil
	}
	if entry.Expired(m.now()) {
		m.mu.Lock()
		// Re-check under the write lock; another writer may have refreshed it.
		if cur, ok := m.entries[key]; ok && cur.Expired(m.now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return core.FinalResponse{}, false, nil
	}

	return copyResponse(entry.Response), true, nil
}

func (m *Memory) Set(ctx context.Context, key string, resp core.FinalResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxSize {
		m.evictOldestLocked()
	}

	m.entries[key] = core.CacheEntry{
		Key:       key,
		Response:  copyResponse(resp),
		CreatedAt: m.now(),
		TTL:       m.ttl,
	}
	return nil
}

func (m *Memory) Invalidate(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Memory) Purge(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]core.CacheEntry)
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range m.entries {
		if first || e.CreatedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.CreatedAt
			first = false
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}

// copyResponse keeps callers from mutating cached state through the
// returned slice.
func copyResponse(resp core.FinalResponse) core.FinalResponse {
	out := resp
	if resp.Sources != nil {
		out.Sources = make([]string, len(resp.Sources))
		copy(out.Sources, resp.Sources)
	}
	return out
}
