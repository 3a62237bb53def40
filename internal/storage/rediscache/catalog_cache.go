// Package rediscache реализует read-through кэш каталога рекуррентных товаров в Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

const (
	keyPrefix     = "subscriptions:recurrence-product:"
	defaultTTL    = 10 * time.Minute
	nullMarkerTTL = time.Minute
	// nullMarker кэширует "товар не рекуррентный", чтобы не ходить в базу повторно.
	nullMarker = "null"
)

// cacheBackend — подмножество *redis.Client, которое использует кэш.
type cacheBackend interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// CatalogCache оборачивает каталог и кэширует результаты поиска по товару.
// Ошибки Redis не ломают поиск: запрос уходит в исходный каталог.
type CatalogCache struct {
	next    domain.RecurrenceCatalogStore
	backend cacheBackend
	ttl     time.Duration
	logger  *log.Entry
}

// Option настраивает CatalogCache.
type Option func(*CatalogCache)

// WithTTL задаёт время жизни записи кэша.
func WithTTL(ttl time.Duration) Option {
	return func(c *CatalogCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(c *CatalogCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient создаёт Redis-клиент по адресу host:port.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewCatalogCache создаёт кэш поверх next.
func NewCatalogCache(next domain.RecurrenceCatalogStore, client *redis.Client, opts ...Option) *CatalogCache {
	return newCatalogCache(next, client, opts...)
}

func newCatalogCache(next domain.RecurrenceCatalogStore, backend cacheBackend, opts ...Option) *CatalogCache {
	c := &CatalogCache{
		next:    next,
		backend: backend,
		ttl:     defaultTTL,
		logger:  log.New().WithField("component", "catalog-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(productID string) string {
	return keyPrefix + productID
}

// RecurrenceProductByProductID ищет настройки в Redis, при промахе читает каталог и кэширует ответ.
func (c *CatalogCache) RecurrenceProductByProductID(ctx context.Context, productID string) (*domain.RecurrenceSettings, error) {
	key := cacheKey(productID)

	cached, err := c.backend.Get(ctx, key).Result()
	switch {
	case err == nil:
		settings, decodeErr := decode(cached)
		if decodeErr == nil {
			return settings, nil
		}
		c.logger.WithError(decodeErr).WithField("product_id", productID).Warn("drop corrupted catalog cache entry")
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WithError(err).WithField("product_id", productID).Warn("catalog cache read failed")
	}

	settings, err := c.next.RecurrenceProductByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, settings)
	return settings, nil
}

// UpsertRecurrenceProduct пишет в каталог и сбрасывает запись кэша.
func (c *CatalogCache) UpsertRecurrenceProduct(ctx context.Context, settings domain.RecurrenceSettings) error {
	if err := c.next.UpsertRecurrenceProduct(ctx, settings); err != nil {
		return err
	}
	if err := c.backend.Del(ctx, cacheKey(settings.ProductID)).Err(); err != nil {
		c.logger.WithError(err).WithField("product_id", settings.ProductID).Warn("catalog cache invalidation failed")
	}
	return nil
}

// Ping проверяет доступность Redis.
func (c *CatalogCache) Ping(ctx context.Context) error {
	return c.backend.Ping(ctx).Err()
}

func (c *CatalogCache) store(ctx context.Context, key string, settings *domain.RecurrenceSettings) {
	value, ttl := nullMarker, nullMarkerTTL
	if settings != nil {
		data, err := json.Marshal(settings)
		if err != nil {
			c.logger.WithError(err).WithField("product_id", settings.ProductID).Warn("encode catalog cache entry")
			return
		}
		value, ttl = string(data), c.ttl
	}
	if err := c.backend.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("catalog cache write failed")
	}
}

func decode(value string) (*domain.RecurrenceSettings, error) {
	if value == nullMarker {
		return nil, nil
	}
	var settings domain.RecurrenceSettings
	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		return nil, fmt.Errorf("decode catalog cache entry: %w", err)
	}
	return &settings, nil
}

var _ domain.RecurrenceCatalogStore = (*CatalogCache)(nil)
