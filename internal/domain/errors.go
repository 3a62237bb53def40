package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRecurrenceItemsNotFound — в заказе нет ни одной позиции с опцией повторения.
	ErrRecurrenceItemsNotFound = errors.New("recurrence items not found")
	// ErrGatewayRejected — шлюз вернул ответ без статуса или со статусом failed.
	ErrGatewayRejected = errors.New("payment gateway rejected request")
	// ErrHandlerNotRegistered — для вида результата шлюза нет обработчика.
	ErrHandlerNotRegistered = errors.New("response handler not registered")
	// ErrSubscriptionNotFound возвращается, если подписки нет в хранилище.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrSubscriptionAlreadyCanceled — подписка уже отменена (не ошибка для вызывающего).
	ErrSubscriptionAlreadyCanceled = errors.New("subscription already canceled")
	// ErrPlatformOrderNotFound возвращается, если заказа платформы нет в репозитории.
	ErrPlatformOrderNotFound = errors.New("platform order not found")
	// ErrPlatformOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrPlatformOrderVersionConflict = errors.New("platform order version conflict")
	// ErrRecurrenceProductNotFound — товара нет в каталоге рекуррентных продуктов.
	ErrRecurrenceProductNotFound = errors.New("recurrence product not found")
	// ErrInvalidGatewayResponse — ответ шлюза не удалось разобрать.
	ErrInvalidGatewayResponse = errors.New("invalid gateway response")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// UserError — ошибка, сообщение которой уже подготовлено для показа пользователю.
type UserError struct {
	Message string
	Code    int
	Err     error
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UserError) Unwrap() error { return e.Err }

// CreationError — единственная ошибка, которую видит вызывающий CreateSubscription.
// Message локализовано, внутренняя причина доступна через errors.Is/As.
type CreationError struct {
	Message string
	Code    int
	Err     error
}

func (e *CreationError) Error() string { return e.Message }

func (e *CreationError) Unwrap() error { return e.Err }

// IsVersionConflict проверяет, является ли ошибка конфликтом версий заказа платформы.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrPlatformOrderVersionConflict)
}
