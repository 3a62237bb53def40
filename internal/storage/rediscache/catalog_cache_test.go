package rediscache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
	"github.com/vladislavdragonenkov/subscriptions/internal/storage/memory"
)

type fakeBackend struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	failAll error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeBackend) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return redis.NewStringResult("", f.failAll)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeBackend) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return redis.NewStatusResult("", f.failAll)
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeBackend) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return redis.NewIntResult(0, f.failAll)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeBackend) Ping(context.Context) *redis.StatusCmd {
	if f.failAll != nil {
		return redis.NewStatusResult("", f.failAll)
	}
	return redis.NewStatusResult("PONG", nil)
}

type countingCatalog struct {
	domain.RecurrenceCatalogStore
	lookups int
}

func (c *countingCatalog) RecurrenceProductByProductID(ctx context.Context, productID string) (*domain.RecurrenceSettings, error) {
	c.lookups++
	return c.RecurrenceCatalogStore.RecurrenceProductByProductID(ctx, productID)
}

func newFixture(t *testing.T) (*CatalogCache, *countingCatalog, *fakeBackend) {
	t.Helper()
	catalog := &countingCatalog{RecurrenceCatalogStore: memory.NewRecurrenceCatalog()}
	require.NoError(t, catalog.UpsertRecurrenceProduct(context.Background(), domain.RecurrenceSettings{
		ProductID:   "sku-1",
		Cycles:      12,
		BillingType: domain.BillingTypePrepaid,
	}))
	backend := newFakeBackend()
	return newCatalogCache(catalog, backend, WithTTL(time.Hour)), catalog, backend
}

func TestCatalogCache_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cache, catalog, backend := newFixture(t)

	first, err := cache.RecurrenceProductByProductID(ctx, "sku-1")
	require.NoError(t, err)
	require.NotNil(t, first)
	require.Equal(t, 12, first.Cycles)
	require.Equal(t, time.Hour, backend.ttls[cacheKey("sku-1")])

	second, err := cache.RecurrenceProductByProductID(ctx, "sku-1")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, catalog.lookups)
}

func TestCatalogCache_CachesMissingProduct(t *testing.T) {
	ctx := context.Background()
	cache, catalog, backend := newFixture(t)

	for i := 0; i < 2; i++ {
		settings, err := cache.RecurrenceProductByProductID(ctx, "sku-plain")
		require.NoError(t, err)
		require.Nil(t, settings)
	}
	require.Equal(t, 1, catalog.lookups)
	require.Equal(t, nullMarker, backend.values[cacheKey("sku-plain")])
	require.Equal(t, nullMarkerTTL, backend.ttls[cacheKey("sku-plain")])
}

func TestCatalogCache_UpsertInvalidates(t *testing.T) {
	ctx := context.Background()
	cache, catalog, _ := newFixture(t)

	_, err := cache.RecurrenceProductByProductID(ctx, "sku-1")
	require.NoError(t, err)

	require.NoError(t, cache.UpsertRecurrenceProduct(ctx, domain.RecurrenceSettings{ProductID: "sku-1", Cycles: 3}))

	updated, err := cache.RecurrenceProductByProductID(ctx, "sku-1")
	require.NoError(t, err)
	require.Equal(t, 3, updated.Cycles)
	require.Equal(t, 2, catalog.lookups)
}

func TestCatalogCache_CorruptedEntryFallsBack(t *testing.T) {
	ctx := context.Background()
	cache, catalog, backend := newFixture(t)
	backend.values[cacheKey("sku-1")] = "{not json"

	settings, err := cache.RecurrenceProductByProductID(ctx, "sku-1")
	require.NoError(t, err)
	require.Equal(t, 12, settings.Cycles)
	require.Equal(t, 1, catalog.lookups)
}

func TestCatalogCache_RedisUnavailable(t *testing.T) {
	ctx := context.Background()
	cache, catalog, backend := newFixture(t)
	backend.failAll = errors.New("connection refused")

	settings, err := cache.RecurrenceProductByProductID(ctx, "sku-1")
	require.NoError(t, err)
	require.Equal(t, 12, settings.Cycles)
	require.Equal(t, 1, catalog.lookups)

	require.NoError(t, cache.UpsertRecurrenceProduct(ctx, domain.RecurrenceSettings{ProductID: "sku-2"}))
	require.Error(t, cache.Ping(ctx))
}
