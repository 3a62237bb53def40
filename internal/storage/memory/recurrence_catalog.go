package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

// recurrenceCatalogInMemory хранит настройки рекуррентных товаров.
type recurrenceCatalogInMemory struct {
	mu       sync.RWMutex
	products map[string]domain.RecurrenceSettings
}

// NewRecurrenceCatalog создаёт пустой in-memory каталог.
func NewRecurrenceCatalog() domain.RecurrenceCatalogStore {
	return &recurrenceCatalogInMemory{products: make(map[string]domain.RecurrenceSettings)}
}

// RecurrenceProductByProductID возвращает nil без ошибки для товара вне каталога.
func (c *recurrenceCatalogInMemory) RecurrenceProductByProductID(_ context.Context, productID string) (*domain.RecurrenceSettings, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	settings, ok := c.products[productID]
	if !ok {
		return nil, nil
	}
	settings.Repetitions = append([]domain.Repetition(nil), settings.Repetitions...)
	return &settings, nil
}

func (c *recurrenceCatalogInMemory) UpsertRecurrenceProduct(_ context.Context, settings domain.RecurrenceSettings) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	settings.Repetitions = append([]domain.Repetition(nil), settings.Repetitions...)
	c.products[settings.ProductID] = settings
	return nil
}

var _ domain.RecurrenceCatalogStore = (*recurrenceCatalogInMemory)(nil)
