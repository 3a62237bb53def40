// Package recurrence оформляет подписки в платёжном шлюзе по заказам платформы
// и отменяет их.
package recurrence

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
	"github.com/vladislavdragonenkov/subscriptions/internal/i18n"
	"github.com/vladislavdragonenkov/subscriptions/internal/metrics"
	"github.com/vladislavdragonenkov/subscriptions/internal/service/orderlog"
)

const creatingOrderMessage = "Creating order."

// Dependencies — внешние зависимости сервиса.
type Dependencies struct {
	Extractor domain.OrderExtractor
	Gateway   domain.PaymentGateway
	Store     domain.SubscriptionStore
	Config    domain.ConfigProvider
	// Необязательные зависимости.
	Outbox      domain.OutboxRepository
	Localizer   domain.Localizer
	OrderLogger domain.OrderLogger
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт логгер сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics включает метрики.
func WithMetrics(m *metrics.SubscriptionMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCancelErrorCode задаёт код результата Cancel при непредвиденной ошибке.
func WithCancelErrorCode(code int) Option {
	return func(s *Service) {
		if code > 0 {
			s.cancelErrorCode = code
		}
	}
}

// WithHandlers подменяет таблицу обработчиков результатов шлюза.
func WithHandlers(registry *HandlerRegistry) Option {
	return func(s *Service) {
		if registry != nil {
			s.handlers = registry
		}
	}
}

// Service — оркестратор создания подписки и сценарий её отмены.
// Каждый вызов выполняется синхронно в горутине вызывающего.
type Service struct {
	extractor   domain.OrderExtractor
	gateway     domain.PaymentGateway
	store       domain.SubscriptionStore
	config      domain.ConfigProvider
	outbox      domain.OutboxRepository
	localizer   domain.Localizer
	orderLogger domain.OrderLogger

	handlers        *HandlerRegistry
	translator      *ErrorTranslator
	events          eventEmitter
	logger          *log.Entry
	metrics         *metrics.SubscriptionMetrics
	cancelErrorCode int
}

// NewService проверяет обязательные зависимости и собирает сервис.
func NewService(deps Dependencies, opts ...Option) (*Service, error) {
	switch {
	case deps.Extractor == nil:
		return nil, errors.New("recurrence: order extractor is required")
	case deps.Gateway == nil:
		return nil, errors.New("recurrence: payment gateway is required")
	case deps.Store == nil:
		return nil, errors.New("recurrence: subscription store is required")
	}

	s := &Service{
		extractor:       deps.Extractor,
		gateway:         deps.Gateway,
		store:           deps.Store,
		config:          deps.Config,
		outbox:          deps.Outbox,
		localizer:       deps.Localizer,
		orderLogger:     deps.OrderLogger,
		logger:          log.New().WithField("component", "recurrence"),
		cancelErrorCode: http.StatusOK,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.localizer == nil {
		s.localizer = i18n.NewLocalizer("en")
	}
	if s.orderLogger == nil {
		s.orderLogger = orderlog.New(s.logger)
	}
	if s.handlers == nil {
		registry, err := NewHandlerRegistry(DefaultHandlers(s.store, s.outbox, s.logger))
		if err != nil {
			return nil, err
		}
		s.handlers = registry
	}
	s.translator = NewErrorTranslator(s.localizer, s.logger)
	s.events = eventEmitter{outbox: s.outbox, logger: s.logger}

	return s, nil
}

// CreateSubscription оформляет подписку по заказу платформы. Любая ошибка
// возвращается как *domain.CreationError с локализованным сообщением и кодом 400.
func (s *Service) CreateSubscription(ctx context.Context, platformOrder domain.PlatformOrder) ([]domain.GatewayResult, error) {
	start := time.Now()

	result, err := s.createSubscription(ctx, platformOrder)
	if err != nil {
		s.recordCreation(err, start)
		message := s.translator.Translate(err, platformOrder.Code())
		return nil, &domain.CreationError{Message: message, Code: http.StatusBadRequest, Err: err}
	}

	s.recordCreation(nil, start)
	return []domain.GatewayResult{result}, nil
}

func (s *Service) createSubscription(ctx context.Context, platformOrder domain.PlatformOrder) (domain.GatewayResult, error) {
	s.orderLogger.OrderInfo(platformOrder.Code(), creatingOrderMessage, s.extractor.OrderInfo(platformOrder))

	// Предварительное состояние: при сбое посреди сценария заказ остаётся в pending.
	platformOrder.SetState(domain.OrderStateNew)
	platformOrder.SetStatus(domain.OrderStatusPending)

	order, err := s.extractor.ExtractPaymentOrder(ctx, platformOrder)
	if err != nil {
		return nil, fmt.Errorf("extract payment order: %w", err)
	}

	req, err := BuildSubscriptionRequest(order, BuildOptionsFrom(s.config))
	if err != nil {
		return nil, err
	}

	gatewayStart := time.Now()
	raw, err := s.gateway.CreateSubscription(ctx, req)
	if s.metrics != nil {
		s.metrics.RecordGatewayCall("create_subscription", time.Since(gatewayStart))
	}
	if err != nil {
		return nil, fmt.Errorf("create subscription at gateway: %w", err)
	}

	if !IsSuccessful(raw) {
		return nil, &domain.UserError{
			Message: s.localizer.Dashboard(i18n.MsgCantCreateOrder),
			Code:    http.StatusBadRequest,
			Err:     domain.ErrGatewayRejected,
		}
	}

	if err := platformOrder.Save(ctx); err != nil {
		return nil, fmt.Errorf("save platform order: %w", err)
	}

	result, err := NewGatewayResult(raw)
	if err != nil {
		return nil, err
	}
	result.SetPlatformOrder(platformOrder)

	handler, err := s.handlers.Resolve(result)
	if err != nil {
		return nil, err
	}
	if err := handler.Handle(ctx, result, platformOrder); err != nil {
		return nil, fmt.Errorf("handle %s result: %w", result.Kind(), err)
	}
	if s.metrics != nil {
		s.metrics.RecordHandledResult(string(result.Kind()))
	}

	if err := platformOrder.Save(ctx); err != nil {
		return nil, fmt.Errorf("save platform order: %w", err)
	}

	return result, nil
}

func (s *Service) recordCreation(err error, start time.Time) {
	if s.metrics == nil {
		return
	}
	outcome := metrics.CreationSucceeded
	switch {
	case errors.Is(err, domain.ErrGatewayRejected):
		outcome = metrics.CreationRejected
	case err != nil:
		outcome = metrics.CreationFailed
	}
	s.metrics.RecordCreation(outcome, time.Since(start))
}

// ListAll возвращает все сохранённые подписки.
func (s *Service) ListAll(ctx context.Context) ([]domain.Subscription, error) {
	return s.store.List(ctx, 0)
}

// IsSubscription сообщает, есть ли в заказе хотя бы одна рекуррентная позиция.
func (s *Service) IsSubscription(ctx context.Context, platformOrder domain.PlatformOrder) (bool, error) {
	order, err := s.extractor.ExtractPaymentOrder(ctx, platformOrder)
	if err != nil {
		return false, fmt.Errorf("extract payment order: %w", err)
	}
	return len(domain.SubscriptionItems(order)) > 0, nil
}
