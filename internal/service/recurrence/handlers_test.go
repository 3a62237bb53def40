package recurrence

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
	"github.com/vladislavdragonenkov/subscriptions/internal/storage/memory"
)

func TestNewHandlerRegistry_RequiresEveryKind(t *testing.T) {
	handlers := DefaultHandlers(newStubStore(), nil, nil)
	delete(handlers, domain.ResultKindCharge)

	_, err := NewHandlerRegistry(handlers)
	require.ErrorIs(t, err, domain.ErrHandlerNotRegistered)
	require.ErrorContains(t, err, "charge")
}

func TestHandlerRegistry_Resolve(t *testing.T) {
	registry, err := NewHandlerRegistry(DefaultHandlers(newStubStore(), nil, nil))
	require.NoError(t, err)

	h, err := registry.Resolve(&domain.Subscription{ID: "sub_1"})
	require.NoError(t, err)
	require.IsType(t, &subscriptionHandler{}, h)

	h, err = registry.Resolve(&domain.Charge{ID: "ch_1"})
	require.NoError(t, err)
	require.IsType(t, &chargeHandler{}, h)
}

func TestSubscriptionHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		status     domain.SubscriptionStatus
		wantState  domain.OrderState
		wantStatus domain.OrderStatus
	}{
		{domain.SubscriptionStatusActive, domain.OrderStateProcessing, domain.OrderStatusProcessing},
		{domain.SubscriptionStatusPending, domain.OrderStateNew, domain.OrderStatusPending},
		{domain.SubscriptionStatusFuture, domain.OrderStateNew, domain.OrderStatusPending},
		{domain.SubscriptionStatusFailed, domain.OrderStateCanceled, domain.OrderStatusCanceled},
		{domain.SubscriptionStatusCanceled, domain.OrderStateCanceled, domain.OrderStatusCanceled},
		{"unknown", domain.OrderStateNew, domain.OrderStatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			store := newStubStore()
			outbox := memory.NewOutboxRepository()
			registry, err := NewHandlerRegistry(DefaultHandlers(store, outbox, nil))
			require.NoError(t, err)

			order := &stubPlatformOrder{code: "100000001", state: domain.OrderStateNew, status: domain.OrderStatusPending}
			sub := &domain.Subscription{ID: "sub_1", Status: tt.status}

			h, err := registry.Resolve(sub)
			require.NoError(t, err)
			require.NoError(t, h.Handle(context.Background(), sub, order))

			require.Equal(t, tt.wantState, order.state)
			require.Equal(t, tt.wantStatus, order.status)
			require.Contains(t, store.items, "sub_1")

			events := outbox.AllPending()
			require.Len(t, events, 1)
			require.Equal(t, domain.EventSubscriptionCreated, events[0].EventType)
			require.Equal(t, "sub_1", events[0].AggregateID)

			var payload map[string]any
			require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
			require.Equal(t, "100000001", payload["order_code"])
		})
	}
}

func TestSubscriptionHandler_StoreError(t *testing.T) {
	store := newStubStore()
	store.saveErr = errors.New("disk full")
	outbox := memory.NewOutboxRepository()

	h := DefaultHandlers(store, outbox, nil)[domain.ResultKindSubscription]
	err := h.Handle(context.Background(), &domain.Subscription{ID: "sub_1", Status: domain.SubscriptionStatusActive}, &stubPlatformOrder{})
	require.ErrorContains(t, err, "disk full")
	require.Empty(t, outbox.AllPending())
}

func TestChargeHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		status     domain.ChargeStatus
		wantState  domain.OrderState
		wantStatus domain.OrderStatus
	}{
		{domain.ChargeStatusPaid, domain.OrderStateProcessing, domain.OrderStatusProcessing},
		{domain.ChargeStatusPending, domain.OrderStateNew, domain.OrderStatusPending},
		{domain.ChargeStatusFailed, domain.OrderStateCanceled, domain.OrderStatusCanceled},
		{domain.ChargeStatusCanceled, domain.OrderStateCanceled, domain.OrderStatusCanceled},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			outbox := memory.NewOutboxRepository()
			h := DefaultHandlers(newStubStore(), outbox, nil)[domain.ResultKindCharge]

			order := &stubPlatformOrder{code: "100000002"}
			require.NoError(t, h.Handle(context.Background(), &domain.Charge{ID: "ch_1", Status: tt.status}, order))

			require.Equal(t, tt.wantState, order.state)
			require.Equal(t, tt.wantStatus, order.status)

			events := outbox.AllPending()
			require.Len(t, events, 1)
			require.Equal(t, domain.EventChargeCreated, events[0].EventType)
		})
	}
}

func TestHandlers_RejectWrongVariant(t *testing.T) {
	handlers := DefaultHandlers(newStubStore(), nil, nil)

	err := handlers[domain.ResultKindSubscription].Handle(context.Background(), &domain.Charge{ID: "ch_1"}, &stubPlatformOrder{})
	require.ErrorIs(t, err, domain.ErrInvalidGatewayResponse)

	err = handlers[domain.ResultKindCharge].Handle(context.Background(), &domain.Subscription{ID: "sub_1"}, &stubPlatformOrder{})
	require.ErrorIs(t, err, domain.ErrInvalidGatewayResponse)
}
