// Package platform содержит заказ платформы магазина, его хранилище и
// извлечение канонического платёжного заказа.
package platform

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

// Item — позиция заказа платформы.
type Item struct {
	Code        string             `json:"code"`
	Description string             `json:"description"`
	Quantity    int                `json:"quantity"`
	AmountMinor int64              `json:"amount"`
	Repetition  *domain.Repetition `json:"selected_repetition,omitempty"`
}

// PaymentInfo — оплата, сохранённая в заказе платформы.
type PaymentInfo struct {
	Method       domain.PaymentMethod `json:"method"`
	AmountMinor  int64                `json:"amount"`
	CardToken    string               `json:"card_token,omitempty"`
	Installments int                  `json:"installments,omitempty"`
}

// Record — снимок заказа платформы в хранилище.
type Record struct {
	Code          string               `json:"code"`
	State         domain.OrderState    `json:"state"`
	Status        domain.OrderStatus   `json:"status"`
	Customer      domain.Customer      `json:"customer"`
	Items         []Item               `json:"items"`
	Payments      []PaymentInfo        `json:"payments,omitempty"`
	Shipping      *domain.Shipping     `json:"shipping,omitempty"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Version       int64                `json:"version"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// Repository хранит заказы платформы с оптимистической блокировкой по Version.
type Repository interface {
	// Create сохраняет новый заказ; занятый код даёт ErrPlatformOrderVersionConflict.
	Create(ctx context.Context, record Record) error
	// Get возвращает заказ или ErrPlatformOrderNotFound.
	Get(ctx context.Context, code string) (Record, error)
	// Save перезаписывает заказ, если версия в хранилище совпадает с record.Version,
	// и увеличивает её на единицу.
	Save(ctx context.Context, record Record) error
}
