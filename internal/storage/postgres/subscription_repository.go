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

type subscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository создаёт PostgreSQL-реализацию SubscriptionStore.
func NewSubscriptionRepository(store *Store) domain.SubscriptionStore {
	return &subscriptionRepository{db: store.DB()}
}

const subscriptionColumns = `
	id, code, status, customer_id, payment_method, interval_type, interval_count,
	billing_type, platform_order_code, gateway_created_at, metadata, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *subscriptionRepository) Find(ctx context.Context, id string) (domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Subscription{}, domain.ErrSubscriptionNotFound
		}
		return domain.Subscription{}, fmt.Errorf("select subscription: %w", err)
	}
	return sub, nil
}

// Save делает upsert: последняя запись по id побеждает, created_at не перезаписывается.
func (r *subscriptionRepository) Save(ctx context.Context, sub domain.Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var metadata []byte
	if sub.Metadata != nil {
		var err error
		if metadata, err = json.Marshal(sub.Metadata); err != nil {
			return fmt.Errorf("marshal subscription metadata: %w", err)
		}
	}

	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = now
	}
	var gatewayCreatedAt sql.NullTime
	if !sub.GatewayCreatedAt.IsZero() {
		gatewayCreatedAt = sql.NullTime{Time: sub.GatewayCreatedAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			code = EXCLUDED.code,
			status = EXCLUDED.status,
			customer_id = EXCLUDED.customer_id,
			payment_method = EXCLUDED.payment_method,
			interval_type = EXCLUDED.interval_type,
			interval_count = EXCLUDED.interval_count,
			billing_type = EXCLUDED.billing_type,
			platform_order_code = EXCLUDED.platform_order_code,
			gateway_created_at = EXCLUDED.gateway_created_at,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at
	`,
		sub.ID, sub.Code, string(sub.Status), sub.CustomerID, string(sub.PaymentMethod),
		string(sub.IntervalType), sub.IntervalCount, string(sub.BillingType), sub.PlatformOrderCode,
		gatewayCreatedAt, metadata, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// List возвращает подписки от новых к старым, при limit <= 0 все.
func (r *subscriptionRepository) List(ctx context.Context, limit int) ([]domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return result, nil
}

func scanSubscription(row rowScanner) (domain.Subscription, error) {
	var (
		sub                               domain.Subscription
		status, method, interval, billing string
		gatewayCreatedAt                  sql.NullTime
		metadata                          []byte
	)
	if err := row.Scan(
		&sub.ID, &sub.Code, &status, &sub.CustomerID, &method, &interval, &sub.IntervalCount,
		&billing, &sub.PlatformOrderCode, &gatewayCreatedAt, &metadata, &sub.CreatedAt, &sub.UpdatedAt,
	); err != nil {
		return domain.Subscription{}, err
	}

	sub.Status = domain.SubscriptionStatus(status)
	sub.PaymentMethod = domain.PaymentMethod(method)
	sub.IntervalType = domain.IntervalType(interval)
	sub.BillingType = domain.BillingType(billing)
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	if gatewayCreatedAt.Valid {
		sub.GatewayCreatedAt = gatewayCreatedAt.Time.UTC()
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &sub.Metadata); err != nil {
			return domain.Subscription{}, fmt.Errorf("decode subscription metadata: %w", err)
		}
	}
	return sub, nil
}

var _ domain.SubscriptionStore = (*subscriptionRepository)(nil)
