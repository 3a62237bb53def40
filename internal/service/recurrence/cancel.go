package recurrence

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
	"github.com/vladislavdragonenkov/subscriptions/internal/i18n"
	"github.com/vladislavdragonenkov/subscriptions/internal/metrics"
)

// CancelResult — итог отмены подписки. Вызывающий проверяет Code, ошибок Cancel не возвращает.
type CancelResult struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Cancel отменяет подписку в шлюзе и сохраняет статус canceled.
// Повторная отмена не обращается к шлюзу. Параллельные отмены одной
// подписки не сериализуются.
func (s *Service) Cancel(ctx context.Context, subscriptionID string) CancelResult {
	result, outcome := s.cancel(ctx, subscriptionID)
	if s.metrics != nil {
		s.metrics.RecordCancellation(outcome)
	}
	return result
}

func (s *Service) cancel(ctx context.Context, subscriptionID string) (CancelResult, string) {
	sub, err := s.store.Find(ctx, subscriptionID)
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		message := s.localizer.Dashboard(i18n.MsgSubscriptionNotFound)
		s.orderLogger.OrderInfo("", fmt.Sprintf("%s ID %s .", message, subscriptionID), nil)
		return CancelResult{Message: message, Code: http.StatusNotFound}, metrics.CancelNotFound
	}
	if err != nil {
		return s.cancelFailed(subscriptionID, fmt.Errorf("find subscription: %w", err)), metrics.CancelError
	}

	if sub.IsCanceled() {
		s.logger.WithError(domain.ErrSubscriptionAlreadyCanceled).
			WithField("subscription_id", sub.ID).
			Info("cancel skipped")
		return CancelResult{
			Message: s.localizer.Dashboard(i18n.MsgSubscriptionCanceled),
			Code:    http.StatusOK,
		}, metrics.CancelAlreadyCanceled
	}

	gatewayStart := time.Now()
	err = s.gateway.CancelSubscription(ctx, sub)
	if s.metrics != nil {
		s.metrics.RecordGatewayCall("cancel_subscription", time.Since(gatewayStart))
	}
	if err != nil {
		return s.cancelFailed(subscriptionID, err), metrics.CancelError
	}

	sub.Status = domain.SubscriptionStatusCanceled
	sub.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, sub); err != nil {
		return s.cancelFailed(subscriptionID, fmt.Errorf("save subscription: %w", err)), metrics.CancelError
	}

	s.events.emit(ctx, aggregateSubscription, sub.ID, domain.EventSubscriptionCanceled, map[string]any{
		"order_code": sub.PlatformOrderCode,
	})

	s.logger.WithField("subscription_id", sub.ID).Info("subscription canceled")
	return CancelResult{
		Message: s.localizer.Dashboard(i18n.MsgSubscriptionCanceledOK),
		Code:    http.StatusOK,
	}, metrics.CancelCanceled
}

func (s *Service) cancelFailed(subscriptionID string, err error) CancelResult {
	message := s.localizer.Dashboard(i18n.MsgCancelSubscriptionErr)
	s.orderLogger.OrderInfo("", fmt.Sprintf("%s - %s", message, err.Error()), nil)
	s.logger.WithError(err).WithField("subscription_id", subscriptionID).Warn("cancel subscription failed")
	return CancelResult{Message: message, Code: s.cancelErrorCode}
}
