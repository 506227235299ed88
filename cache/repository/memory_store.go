package repository

import (
	"context"
	"sync"
	"time"

	"github.com/AzielCF/az-storage/cache/domain"
)

type memoryEntry struct {
	value     any
	expiresAt time.Time
}

// MemoryStore is an in-process namespace of the TTL cache. Expiry is lazy: an
// expired entry stays in the map until Get, Delete, Clear or Cleanup touches it.
type MemoryStore struct {
	cfg domain.NamespaceConfig
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an empty namespace with the given default lifetime.
func NewMemoryStore(cfg domain.NamespaceConfig, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Namespace() domain.Namespace { return s.cfg.Name }
func (s *MemoryStore) DefaultTTL() time.Duration   { return s.cfg.DefaultTTL }

func (s *MemoryStore) Get(ctx context.Context, key string) (any, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if cur, still := s.entries[key]; still && s.now().After(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	return entry.value, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value any) error {
	return s.SetWithTTL(ctx, key, value, s.cfg.DefaultTTL)
}

func (s *MemoryStore) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]memoryEntry)
	return nil
}

func (s *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}
