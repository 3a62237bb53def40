package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
	"github.com/vladislavdragonenkov/subscriptions/internal/platform"
)

type platformOrderRepository struct {
	db *sql.DB
}

// NewPlatformOrderRepository создаёт PostgreSQL-реализацию platform.Repository.
// Позиции, оплаты и доставка хранятся как JSONB.
func NewPlatformOrderRepository(store *Store) platform.Repository {
	return &platformOrderRepository{db: store.DB()}
}

type platformOrderColumns struct {
	customer []byte
	items    []byte
	payments []byte
	shipping []byte
}

func encodePlatformOrder(record platform.Record) (platformOrderColumns, error) {
	var (
		cols platformOrderColumns
		err  error
	)
	if cols.customer, err = json.Marshal(record.Customer); err != nil {
		return cols, fmt.Errorf("marshal customer: %w", err)
	}
	items := record.Items
	if items == nil {
		items = []platform.Item{}
	}
	if cols.items, err = json.Marshal(items); err != nil {
		return cols, fmt.Errorf("marshal items: %w", err)
	}
	payments := record.Payments
	if payments == nil {
		payments = []platform.PaymentInfo{}
	}
	if cols.payments, err = json.Marshal(payments); err != nil {
		return cols, fmt.Errorf("marshal payments: %w", err)
	}
	if record.Shipping != nil {
		if cols.shipping, err = json.Marshal(record.Shipping); err != nil {
			return cols, fmt.Errorf("marshal shipping: %w", err)
		}
	}
	return cols, nil
}

func (r *platformOrderRepository) Create(ctx context.Context, record platform.Record) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cols, err := encodePlatformOrder(record)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO platform_orders (
			code, state, status, payment_method, customer, items, payments, shipping,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		record.Code, string(record.State), string(record.Status), string(record.PaymentMethod),
		cols.customer, cols.items, cols.payments, cols.shipping,
		record.Version, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPlatformOrderVersionConflict
		}
		return fmt.Errorf("insert platform order: %w", err)
	}
	return nil
}

func (r *platformOrderRepository) Get(ctx context.Context, code string) (platform.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		record                           platform.Record
		state, status, method            string
		customer, items, payments, shipp []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT code, state, status, payment_method, customer, items, payments, shipping,
		       version, created_at, updated_at
		FROM platform_orders
		WHERE code = $1
	`, code).Scan(
		&record.Code, &state, &status, &method, &customer, &items, &payments, &shipp,
		&record.Version, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return platform.Record{}, domain.ErrPlatformOrderNotFound
		}
		return platform.Record{}, fmt.Errorf("select platform order: %w", err)
	}

	record.State = domain.OrderState(state)
	record.Status = domain.OrderStatus(status)
	record.PaymentMethod = domain.PaymentMethod(method)
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()

	if err := json.Unmarshal(customer, &record.Customer); err != nil {
		return platform.Record{}, fmt.Errorf("decode customer: %w", err)
	}
	if err := json.Unmarshal(items, &record.Items); err != nil {
		return platform.Record{}, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal(payments, &record.Payments); err != nil {
		return platform.Record{}, fmt.Errorf("decode payments: %w", err)
	}
	if len(shipp) > 0 {
		record.Shipping = &domain.Shipping{}
		if err := json.Unmarshal(shipp, record.Shipping); err != nil {
			return platform.Record{}, fmt.Errorf("decode shipping: %w", err)
		}
	}
	return record, nil
}

// Save обновляет заказ только при совпадении версии и увеличивает её.
func (r *platformOrderRepository) Save(ctx context.Context, record platform.Record) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cols, err := encodePlatformOrder(record)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE platform_orders
		SET state = $1,
		    status = $2,
		    payment_method = $3,
		    customer = $4,
		    items = $5,
		    payments = $6,
		    shipping = $7,
		    version = version + 1,
		    updated_at = $8
		WHERE code = $9
		  AND version = $10
	`,
		string(record.State), string(record.Status), string(record.PaymentMethod),
		cols.customer, cols.items, cols.payments, cols.shipping,
		time.Now().UTC(), record.Code, record.Version,
	)
	if err != nil {
		return fmt.Errorf("update platform order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		exists, err = platformOrderExistsTx(ctx, tx, record.Code)
		if err != nil {
			return err
		}
		if !exists {
			err = domain.ErrPlatformOrderNotFound
			return err
		}
		err = domain.ErrPlatformOrderVersionConflict
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save platform order: %w", err)
	}
	return nil
}

func platformOrderExistsTx(ctx context.Context, tx *sql.Tx, code string) (bool, error) {
	var found string
	err := tx.QueryRowContext(ctx, `SELECT code FROM platform_orders WHERE code = $1`, code).Scan(&found)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check platform order exists: %w", err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ platform.Repository = (*platformOrderRepository)(nil)
