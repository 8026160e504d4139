package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"yatube-backend/pkg/cache"
)

// PageKeyPrefix namespaces full-page cache entries.
const PageKeyPrefix = "page:"

// CachedPage is a rendered HTTP response kept by the page cache.
type CachedPage struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// PageStore is a TTL key/value store for rendered pages.
// Concurrent writes to the same key are last-writer-wins; each write starts a fresh TTL.
type PageStore interface {
	Get(ctx context.Context, key string) (*CachedPage, bool, error)
	Set(ctx context.Context, key string, page *CachedPage, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}

// ========================================
// IN-MEMORY STORE
// ========================================

// memorySweepInterval bounds how often Set scans for expired entries.
const memorySweepInterval = time.Minute

type memoryEntry struct {
	page      CachedPage
	expiresAt time.Time
}

// MemoryPageStore keeps pages in process memory with explicit expiry timestamps.
type MemoryPageStore struct {
	mu      sync.RWMutex
	entries   map[string]memoryEntry
	now       func() time.Time
	nextSweep time.Time
}

var _ PageStore = (*MemoryPageStore)(nil)

func NewMemoryPageStore() *MemoryPageStore {
	return NewMemoryPageStoreWithClock(time.Now)
}

// NewMemoryPageStoreWithClock lets tests control time.
func NewMemoryPageStoreWithClock(now func() time.Time) *MemoryPageStore {
	return &MemoryPageStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func (s *MemoryPageStore) Get(_ context.Context, key string) (*CachedPage, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		s.mu.Lock()
		// re-check: another writer may have refreshed the entry meanwhile
		if current, ok := s.entries[key]; ok && !s.now().Before(current.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	page := entry.page
	page.Body = append([]byte(nil), entry.page.Body...)
	return &page, true, nil
}

func (s *MemoryPageStore) Set(_ context.Context, key string, page *CachedPage, ttl time.Duration) error {
	if page == nil {
		return fmt.Errorf("page cache: nil page for %s", key)
	}
	stored := *page
	stored.Body = append([]byte(nil), page.Body...)

	now := s.now()

	s.mu.Lock()
	if !now.Before(s.nextSweep) {
		s.sweepLocked(now)
	}
	s.entries[key] = memoryEntry{page: stored, expiresAt: now.Add(ttl)}
	s.mu.Unlock()
	return nil
}

// sweepLocked drops expired entries; keys that are never read again would otherwise stay forever.
func (s *MemoryPageStore) sweepLocked(now time.Time) {
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
	s.nextSweep = now.Add(memorySweepInterval)
}

func (s *MemoryPageStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryPageStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryPageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// ========================================
// REDIS-BACKED STORE
// ========================================

// RedisPageStore keeps pages in the shared cache so every API replica sees the same entry.
type RedisPageStore struct {
	cache cache.Cache
}

var _ PageStore = (*RedisPageStore)(nil)

func NewRedisPageStore(c cache.Cache) *RedisPageStore {
	return &RedisPageStore{cache: c}
}

func (s *RedisPageStore) Get(ctx context.Context, key string) (*CachedPage, bool, error) {
	var page CachedPage
	found, err := s.cache.Get(ctx, key, &page)
	if err != nil || !found {
		return nil, false, err
	}
	return &page, true, nil
}

func (s *RedisPageStore) Set(ctx context.Context, key string, page *CachedPage, ttl time.Duration) error {
	return s.cache.Set(ctx, key, page, ttl)
}

func (s *RedisPageStore) Delete(ctx context.Context, keys ...string) error {
	return s.cache.Delete(ctx, keys...)
}

func (s *RedisPageStore) Clear(ctx context.Context) error {
	return s.cache.DeletePattern(ctx, PageKeyPrefix+"*")
}
