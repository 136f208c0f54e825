package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oranba/product-catalog/pkg/logger"
)

// Memory is an in-process Store backed by a map with lazy TTL expiry.
// Suitable for single-node deployments and tests.
type Memory struct {
	mu     sync.RWMutex
	store  map[string]memoryEntry
	logger logger.Logger
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory(log logger.Logger) *Memory {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Memory{
		store:  make(map[string]memoryEntry),
		logger: log,
	}
}

// Get retrieves a cached value. Expired entries read as misses and are
// dropped on the next write pass.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, exists := m.store[key]
	m.mu.RUnlock()

	if !exists {
		m.logger.Debug("Cache miss", logger.Fields{"key": key})
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.logger.Debug("Cache entry expired", logger.Fields{"key": key})
		return "", false, nil
	}

	m.logger.Debug("Cache hit", logger.Fields{"key": key})
	return entry.value, true, nil
}

// Set stores a value with optional TTL. A zero TTL never expires.
func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.store[key] = entry
	m.mu.Unlock()

	m.logger.Debug("Cache set", logger.Fields{
		"key":     key,
		"has_ttl": ttl > 0,
	})
	return nil
}

// Delete removes the given keys.
func (m *Memory) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.store, key)
	}
	m.mu.Unlock()
	return nil
}

// DeletePrefix removes every key beginning with prefix, expired or not.
func (m *Memory) DeletePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	removed := 0
	for key := range m.store {
		if strings.HasPrefix(key, prefix) {
			delete(m.store, key)
			removed++
		}
	}
	m.mu.Unlock()

	m.logger.Debug("Cache region evicted", logger.Fields{
		"prefix":  prefix,
		"removed": removed,
	})
	return nil
}

// Ping always succeeds for the in-process backend.
func (m *Memory) Ping(ctx context.Context) error { return nil }

// Close drops all entries.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.store = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

// Len reports the number of entries including not-yet-collected expired ones.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}
