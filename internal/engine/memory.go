package engine

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/conduitllm/admin/internal/cachemgmt"
)

// memoryStore is an in-process LRU with per-entry expiry.
type memoryStore struct {
	cache *lru.Cache[string, *record]

	// Serializes bookkeeping updates on shared records.
	mu sync.Mutex
}

func newMemoryStore(size int) (*memoryStore, error) {
	cache, err := lru.New[string, *record](size)
	if err != nil {
		return nil, err
	}
	return &memoryStore{cache: cache}, nil
}

func (m *memoryStore) kind() string { return cachemgmt.RegionTypeMemory }

func (m *memoryStore) get(_ context.Context, key string, now time.Time) (*record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}

	if rec.expired(now) {
		m.cache.Remove(key)
		return nil, true, nil
	}

	rec.LastAccessedAt = now
	rec.AccessCount++

	out := *rec
	return &out, false, nil
}

func (m *memoryStore) put(_ context.Context, key string, rec *record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cache.Add(key, rec) {
		return 1, nil
	}
	return 0, nil
}

func (m *memoryStore) remove(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cache.Remove(key), nil
}

func (m *memoryStore) touch(_ context.Context, key string, expiresAt, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.cache.Peek(key)
	if !ok {
		return false, nil
	}
	if rec.expired(now) {
		m.cache.Remove(key)
		return false, nil
	}

	rec.ExpiresAt = expiresAt
	return true, nil
}

func (m *memoryStore) clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.Purge()
	return nil
}

// entries lists live entries, most recently used first.
func (m *memoryStore) entries(_ context.Context, skip, take int, now time.Time) ([]cachemgmt.RawEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := m.cache.Keys()
	result := make([]cachemgmt.RawEntry, 0, min(take, len(keys)))

	seen := 0
	for i := len(keys) - 1; i >= 0 && len(result) < take; i-- {
		rec, ok := m.cache.Peek(keys[i])
		if !ok || rec.expired(now) {
			continue
		}
		if seen < skip {
			seen++
			continue
		}
		result = append(result, rec.rawEntry(keys[i]))
	}

	return result, nil
}

func (m *memoryStore) usage(_ context.Context, now time.Time) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count, bytes int64
	for _, key := range m.cache.Keys() {
		rec, ok := m.cache.Peek(key)
		if !ok || rec.expired(now) {
			continue
		}
		count++
		bytes += rec.Size
	}
	return count, bytes, nil
}

func (m *memoryStore) resize(size int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cache.Resize(size)
}
