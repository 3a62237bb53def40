package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

type recurrenceCatalog struct {
	db *sql.DB
}

// NewRecurrenceCatalog создаёт каталог рекуррентных товаров поверх таблицы recurrence_products.
func NewRecurrenceCatalog(store *Store) domain.RecurrenceCatalogStore {
	return &recurrenceCatalog{db: store.DB()}
}

// RecurrenceProductByProductID возвращает nil без ошибки, если товара нет в каталоге.
func (c *recurrenceCatalog) RecurrenceProductByProductID(ctx context.Context, productID string) (*domain.RecurrenceSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		settings    domain.RecurrenceSettings
		billing     string
		repetitions []byte
	)
	err := c.db.QueryRowContext(ctx, `
		SELECT product_id, cycles, billing_type, repetitions
		FROM recurrence_products
		WHERE product_id = $1
	`, productID).Scan(&settings.ProductID, &settings.Cycles, &billing, &repetitions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select recurrence product: %w", err)
	}

	settings.BillingType = domain.BillingType(billing)
	if len(repetitions) > 0 {
		if err := json.Unmarshal(repetitions, &settings.Repetitions); err != nil {
			return nil, fmt.Errorf("decode repetitions: %w", err)
		}
	}
	return &settings, nil
}

func (c *recurrenceCatalog) UpsertRecurrenceProduct(ctx context.Context, settings domain.RecurrenceSettings) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	repetitions := settings.Repetitions
	if repetitions == nil {
		repetitions = []domain.Repetition{}
	}
	data, err := json.Marshal(repetitions)
	if err != nil {
		return fmt.Errorf("marshal repetitions: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO recurrence_products (product_id, cycles, billing_type, repetitions, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (product_id) DO UPDATE SET
			cycles = EXCLUDED.cycles,
			billing_type = EXCLUDED.billing_type,
			repetitions = EXCLUDED.repetitions,
			updated_at = EXCLUDED.updated_at
	`, settings.ProductID, settings.Cycles, string(settings.BillingType), data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert recurrence product: %w", err)
	}
	return nil
}

var _ domain.RecurrenceCatalogStore = (*recurrenceCatalog)(nil)
