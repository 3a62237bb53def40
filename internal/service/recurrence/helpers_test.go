package recurrence

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

type orderSnapshot struct {
	state  domain.OrderState
	status domain.OrderStatus
}

type stubPlatformOrder struct {
	code    string
	state   domain.OrderState
	status  domain.OrderStatus
	saveErr error
	saves   []orderSnapshot
}

func (o *stubPlatformOrder) Code() string                        { return o.code }
func (o *stubPlatformOrder) SetState(state domain.OrderState)    { o.state = state }
func (o *stubPlatformOrder) SetStatus(status domain.OrderStatus) { o.status = status }

func (o *stubPlatformOrder) Save(context.Context) error {
	if o.saveErr != nil {
		return o.saveErr
	}
	o.saves = append(o.saves, orderSnapshot{state: o.state, status: o.status})
	return nil
}

type stubExtractor struct {
	order domain.Order
	err   error
	calls int
}

func (e *stubExtractor) ExtractPaymentOrder(context.Context, domain.PlatformOrder) (domain.Order, error) {
	e.calls++
	return e.order, e.err
}

func (e *stubExtractor) OrderInfo(po domain.PlatformOrder) map[string]any {
	return map[string]any{"order_code": po.Code()}
}

type stubGateway struct {
	mu        sync.Mutex
	response  map[string]any
	createErr error
	cancelErr error
	lastReq   domain.SubscriptionRequest
	createCnt int
	cancelCnt int
}

func (g *stubGateway) CreateSubscription(_ context.Context, req domain.SubscriptionRequest) (map[string]any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCnt++
	g.lastReq = req
	return g.response, g.createErr
}

func (g *stubGateway) CancelSubscription(context.Context, domain.Subscription) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelCnt++
	return g.cancelErr
}

type stubStore struct {
	items   map[string]domain.Subscription
	findErr error
	saveErr error
	saveCnt int
}

func newStubStore(subs ...domain.Subscription) *stubStore {
	s := &stubStore{items: make(map[string]domain.Subscription)}
	for _, sub := range subs {
		s.items[sub.ID] = sub
	}
	return s
}

func (s *stubStore) Find(_ context.Context, id string) (domain.Subscription, error) {
	if s.findErr != nil {
		return domain.Subscription{}, s.findErr
	}
	sub, ok := s.items[id]
	if !ok {
		return domain.Subscription{}, domain.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (s *stubStore) Save(_ context.Context, sub domain.Subscription) error {
	s.saveCnt++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.items[sub.ID] = sub
	return nil
}

func (s *stubStore) List(_ context.Context, limit int) ([]domain.Subscription, error) {
	result := make([]domain.Subscription, 0, len(s.items))
	for _, sub := range s.items {
		result = append(result, sub)
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type stubOrderLogger struct {
	entries []string
	codes   []string
}

func (l *stubOrderLogger) OrderInfo(orderCode, message string, _ map[string]any) {
	l.codes = append(l.codes, orderCode)
	l.entries = append(l.entries, message)
}

type staticConfig int

func (c staticConfig) BoletoDueDays() int { return int(c) }

func monthly(cycles int) *domain.Repetition {
	return &domain.Repetition{
		Interval:      domain.IntervalMonth,
		IntervalCount: 1,
		Cycles:        cycles,
		BillingType:   domain.BillingTypePrepaid,
	}
}

func recurringOrder() domain.Order {
	return domain.Order{
		Code:     "100000001",
		Customer: domain.Customer{ID: "cus_1", Name: "Ana", Email: "ana@example.com"},
		Items: []domain.OrderItem{
			{Code: "plan", Description: "Monthly plan", Quantity: 2, AmountMinor: 1000, SelectedRepetition: monthly(1)},
		},
		Payments:      []domain.Payment{domain.CardPayment{Token: "tok_1", InstallmentsNum: 3, Amount: 2000}},
		PaymentMethod: domain.PaymentMethodCreditCard,
	}
}
