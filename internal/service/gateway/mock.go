package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

// MockGateway — конфигурируемая заглушка шлюза для тестов и локального запуска.
type MockGateway struct {
	mu sync.Mutex

	// SubscriptionStatus — статус создаваемых подписок, по умолчанию active.
	SubscriptionStatus domain.SubscriptionStatus
	CreateErr          error
	CancelErr          error

	CreateCalls int
	CancelCalls int
	LastRequest domain.SubscriptionRequest
}

// NewMockGateway возвращает mock с успешным сценарием по умолчанию.
func NewMockGateway() *MockGateway {
	return &MockGateway{SubscriptionStatus: domain.SubscriptionStatusActive}
}

// CreateSubscription возвращает ответ в формате шлюза и считает вызовы.
func (m *MockGateway) CreateSubscription(_ context.Context, req domain.SubscriptionRequest) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	m.LastRequest = req
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}

	return map[string]any{
		"id":             fmt.Sprintf("sub_%s", uuid.NewString()[:16]),
		"object":         "subscription",
		"code":           req.Code,
		"status":         string(m.SubscriptionStatus),
		"payment_method": string(req.PaymentMethod),
		"interval":       string(req.IntervalType),
		"interval_count": float64(req.IntervalCount),
		"billing_type":   string(req.BillingType),
		"created_at":     time.Now().UTC().Format(time.RFC3339),
		"customer":       map[string]any{"id": req.Customer.ID},
	}, nil
}

// CancelSubscription возвращает настроенную ошибку и считает вызовы.
func (m *MockGateway) CancelSubscription(context.Context, domain.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CancelCalls++
	return m.CancelErr
}

var _ domain.PaymentGateway = (*MockGateway)(nil)
