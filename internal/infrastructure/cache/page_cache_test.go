package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPageStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryPageStoreWithClock(func() time.Time { return now })

	require.NoError(t, store.Set(ctx, "page:index_page:/", &CachedPage{Status: 200, Body: []byte("R1")}, 20*time.Second))

	page, found, err := store.Get(ctx, "page:index_page:/")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "R1", string(page.Body))

	now = now.Add(20 * time.Second)
	_, found, err = store.Get(ctx, "page:index_page:/")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryPageStore_LastWriteWinsWithFreshTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryPageStoreWithClock(func() time.Time { return now })

	require.NoError(t, store.Set(ctx, "k", &CachedPage{Body: []byte("old")}, 10*time.Second))
	now = now.Add(8 * time.Second)
	require.NoError(t, store.Set(ctx, "k", &CachedPage{Body: []byte("new")}, 10*time.Second))
	now = now.Add(8 * time.Second)

	page, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "new", string(page.Body))
}

func TestMemoryPageStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPageStore()
	body := []byte("abc")

	require.NoError(t, store.Set(ctx, "k", &CachedPage{Body: body}, time.Minute))
	body[0] = 'x'

	page, _, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(page.Body))
}

func TestMemoryPageStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPageStore()
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, k, &CachedPage{}, time.Minute))
	}

	require.NoError(t, store.Delete(ctx, "a"))
	assert.Equal(t, 2, store.Len())

	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryPageStore_RejectsNilPage(t *testing.T) {
	assert.Error(t, NewMemoryPageStore().Set(context.Background(), "k", nil, time.Minute))
}

type recordingCache struct {
	values  map[string]interface{}
	pattern string
}

func (r *recordingCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	v, ok := r.values[key]
	if !ok {
		return false, nil
	}
	*(dest.(*CachedPage)) = *(v.(*CachedPage))
	return true, nil
}

func (r *recordingCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	r.values[key] = value
	return nil
}

func (r *recordingCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}

func (r *recordingCache) DeletePattern(_ context.Context, pattern string) error {
	r.pattern = pattern
	r.values = map[string]interface{}{}
	return nil
}

func (r *recordingCache) Ping(context.Context) error { return nil }

func TestRedisPageStore_DelegatesToCache(t *testing.T) {
	ctx := context.Background()
	backend := &recordingCache{values: map[string]interface{}{}}
	store := NewRedisPageStore(backend)

	_, found, err := store.Get(ctx, "page:index_page:/")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "page:index_page:/", &CachedPage{Status: 200, Body: []byte("R1")}, time.Minute))
	page, found, err := store.Get(ctx, "page:index_page:/")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "R1", string(page.Body))

	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, "page:*", backend.pattern)
	assert.Empty(t, backend.values)
}

func TestMemoryPageStore_SetSweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryPageStoreWithClock(func() time.Time { return now })

	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("page:index_page:/:u:%d", i)
		require.NoError(t, store.Set(ctx, key, &CachedPage{Status: 200}, 20*time.Second))
	}
	require.Equal(t, 1000, store.Len())

	now = now.Add(time.Hour)
	require.NoError(t, store.Set(ctx, "page:index_page:/", &CachedPage{Status: 200}, 20*time.Second))
	assert.Equal(t, 1, store.Len())

	_, found, err := store.Get(ctx, "page:index_page:/")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMemoryPageStore_SweepKeepsLiveEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryPageStoreWithClock(func() time.Time { return now })

	require.NoError(t, store.Set(ctx, "short", &CachedPage{}, 20*time.Second))
	require.NoError(t, store.Set(ctx, "long", &CachedPage{}, time.Hour))

	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Set(ctx, "fresh", &CachedPage{}, 20*time.Second))

	assert.Equal(t, 2, store.Len())
	_, found, _ := store.Get(ctx, "long")
	assert.True(t, found)
}
