package recurrence

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

// ResponseHandler переносит результат шлюза в состояние заказа платформы и хранилища.
type ResponseHandler interface {
	Handle(ctx context.Context, result domain.GatewayResult, order domain.PlatformOrder) error
}

// knownKinds — все варианты результата шлюза. Реестр обязан покрывать каждый.
var knownKinds = []domain.ResultKind{
	domain.ResultKindSubscription,
	domain.ResultKindCharge,
}

// HandlerRegistry — статическая таблица обработчиков по виду результата.
type HandlerRegistry struct {
	handlers map[domain.ResultKind]ResponseHandler
}

// NewHandlerRegistry проверяет, что для каждого известного вида задан обработчик.
func NewHandlerRegistry(handlers map[domain.ResultKind]ResponseHandler) (*HandlerRegistry, error) {
	table := make(map[domain.ResultKind]ResponseHandler, len(handlers))
	for _, kind := range knownKinds {
		h, ok := handlers[kind]
		if !ok || h == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrHandlerNotRegistered, kind)
		}
		table[kind] = h
	}
	return &HandlerRegistry{handlers: table}, nil
}

// DefaultHandlers возвращает обработчики подписки и разового списания.
func DefaultHandlers(store domain.SubscriptionStore, outbox domain.OutboxRepository, logger *log.Entry) map[domain.ResultKind]ResponseHandler {
	if logger == nil {
		logger = log.New().WithField("component", "recurrence-handlers")
	}
	events := eventEmitter{outbox: outbox, logger: logger}
	return map[domain.ResultKind]ResponseHandler{
		domain.ResultKindSubscription: &subscriptionHandler{store: store, events: events, logger: logger},
		domain.ResultKindCharge:       &chargeHandler{events: events, logger: logger},
	}
}

// Resolve выбирает обработчик по виду результата.
func (r *HandlerRegistry) Resolve(result domain.GatewayResult) (ResponseHandler, error) {
	h, ok := r.handlers[result.Kind()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrHandlerNotRegistered, result.Kind())
	}
	return h, nil
}

type orderTransition struct {
	state  domain.OrderState
	status domain.OrderStatus
}

var (
	toProcessing = orderTransition{domain.OrderStateProcessing, domain.OrderStatusProcessing}
	toPending    = orderTransition{domain.OrderStateNew, domain.OrderStatusPending}
	toCanceled   = orderTransition{domain.OrderStateCanceled, domain.OrderStatusCanceled}
)

func (t orderTransition) apply(order domain.PlatformOrder) {
	order.SetState(t.state)
	order.SetStatus(t.status)
}

var subscriptionTransitions = map[domain.SubscriptionStatus]orderTransition{
	domain.SubscriptionStatusActive:   toProcessing,
	domain.SubscriptionStatusPending:  toPending,
	domain.SubscriptionStatusFuture:   toPending,
	domain.SubscriptionStatusFailed:   toCanceled,
	domain.SubscriptionStatusCanceled: toCanceled,
}

var chargeTransitions = map[domain.ChargeStatus]orderTransition{
	domain.ChargeStatusPaid:     toProcessing,
	domain.ChargeStatusPending:  toPending,
	domain.ChargeStatusFailed:   toCanceled,
	domain.ChargeStatusCanceled: toCanceled,
}

type subscriptionHandler struct {
	store  domain.SubscriptionStore
	events eventEmitter
	logger *log.Entry
}

func (h *subscriptionHandler) Handle(ctx context.Context, result domain.GatewayResult, order domain.PlatformOrder) error {
	sub, ok := result.(*domain.Subscription)
	if !ok {
		return fmt.Errorf("%w: expected subscription, got %T", domain.ErrInvalidGatewayResponse, result)
	}

	if t, ok := subscriptionTransitions[sub.Status]; ok {
		t.apply(order)
	} else {
		// Неизвестный статус: заказ остаётся в предварительном состоянии new/pending.
		h.logger.WithFields(log.Fields{
			"order_code":      order.Code(),
			"subscription_id": sub.ID,
			"status":          sub.Status,
		}).Warn("unexpected subscription status")
	}

	sub.UpdatedAt = time.Now().UTC()
	if err := h.store.Save(ctx, *sub); err != nil {
		return fmt.Errorf("save subscription %s: %w", sub.ID, err)
	}

	h.events.emit(ctx, aggregateSubscription, sub.ID, domain.EventSubscriptionCreated, map[string]any{
		"order_code":     order.Code(),
		"status":         string(sub.Status),
		"customer_id":    sub.CustomerID,
		"interval":       string(sub.IntervalType),
		"interval_count": sub.IntervalCount,
	})

	h.logger.WithFields(log.Fields{
		"order_code":      order.Code(),
		"subscription_id": sub.ID,
		"status":          sub.Status,
	}).Info("subscription handled")
	return nil
}

type chargeHandler struct {
	events eventEmitter
	logger *log.Entry
}

func (h *chargeHandler) Handle(ctx context.Context, result domain.GatewayResult, order domain.PlatformOrder) error {
	charge, ok := result.(*domain.Charge)
	if !ok {
		return fmt.Errorf("%w: expected charge, got %T", domain.ErrInvalidGatewayResponse, result)
	}

	if t, ok := chargeTransitions[charge.Status]; ok {
		t.apply(order)
	} else {
		h.logger.WithFields(log.Fields{
			"order_code": order.Code(),
			"charge_id":  charge.ID,
			"status":     charge.Status,
		}).Warn("unexpected charge status")
	}

	h.events.emit(ctx, aggregateCharge, charge.ID, domain.EventChargeCreated, map[string]any{
		"order_code": order.Code(),
		"status":     string(charge.Status),
		"amount":     charge.AmountMinor,
	})

	h.logger.WithFields(log.Fields{
		"order_code": order.Code(),
		"charge_id":  charge.ID,
		"status":     charge.Status,
	}).Info("charge handled")
	return nil
}

var (
	_ ResponseHandler = (*subscriptionHandler)(nil)
	_ ResponseHandler = (*chargeHandler)(nil)
)
