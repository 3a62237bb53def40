package platform

import (
	"context"
	"errors"
	"time"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

// Order — заказ платформы, загруженный из Repository.
type Order struct {
	record Record
	repo   Repository
}

// NewOrder оборачивает снимок заказа.
func NewOrder(record Record, repo Repository) *Order {
	return &Order{record: record, repo: repo}
}

// Load читает заказ из репозитория.
func Load(ctx context.Context, repo Repository, code string) (*Order, error) {
	record, err := repo.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	return NewOrder(record, repo), nil
}

func (o *Order) Code() string { return o.record.Code }

func (o *Order) SetState(state domain.OrderState) { o.record.State = state }

func (o *Order) SetStatus(status domain.OrderStatus) { o.record.Status = status }

func (o *Order) State() domain.OrderState { return o.record.State }

func (o *Order) Status() domain.OrderStatus { return o.record.Status }

// Record возвращает копию текущего снимка.
func (o *Order) Record() Record { return o.record }

// Save сохраняет состояние и статус. После успешной записи версия увеличивается.
func (o *Order) Save(ctx context.Context) error {
	if o.repo == nil {
		return errors.New("platform order has no repository")
	}
	o.record.UpdatedAt = time.Now().UTC()
	if err := o.repo.Save(ctx, o.record); err != nil {
		return err
	}
	o.record.Version++
	return nil
}

var _ domain.PlatformOrder = (*Order)(nil)
