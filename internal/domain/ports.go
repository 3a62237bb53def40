package domain

import "context"

// OrderState — состояние заказа платформы (крупная стадия жизненного цикла).
type OrderState string

const (
	OrderStateNew        OrderState = "new"
	OrderStateProcessing OrderState = "processing"
	OrderStateCanceled   OrderState = "canceled"
	OrderStateClosed     OrderState = "closed"
)

// OrderStatus — статус заказа платформы, видимый в админке.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCanceled   OrderStatus = "canceled"
	OrderStatusClosed     OrderStatus = "closed"
)

// PlatformOrder — заказ платформы, из которого оформляется подписка.
type PlatformOrder interface {
	Code() string
	SetState(state OrderState)
	SetStatus(status OrderStatus)
	// Save сохраняет текущее состояние заказа на платформе.
	Save(ctx context.Context) error
}

// OrderExtractor строит канонический платёжный заказ из заказа платформы.
type OrderExtractor interface {
	ExtractPaymentOrder(ctx context.Context, platformOrder PlatformOrder) (Order, error)
	// OrderInfo возвращает краткое описание заказа для журнала.
	OrderInfo(platformOrder PlatformOrder) map[string]any
}

// RecurrenceCatalog хранит настройки рекуррентных товаров.
type RecurrenceCatalog interface {
	// RecurrenceProductByProductID возвращает nil без ошибки, если товар не рекуррентный.
	RecurrenceProductByProductID(ctx context.Context, productID string) (*RecurrenceSettings, error)
}

// RecurrenceCatalogStore — каталог с возможностью записи.
type RecurrenceCatalogStore interface {
	RecurrenceCatalog
	UpsertRecurrenceProduct(ctx context.Context, settings RecurrenceSettings) error
}

// PaymentGateway — платёжный шлюз с поддержкой подписок.
type PaymentGateway interface {
	// CreateSubscription отправляет запрос и возвращает сырой ответ шлюза.
	CreateSubscription(ctx context.Context, req SubscriptionRequest) (map[string]any, error)
	CancelSubscription(ctx context.Context, subscription Subscription) error
}

// SubscriptionStore хранит подписки. Последняя запись по id побеждает.
type SubscriptionStore interface {
	// Find возвращает подписку или ErrSubscriptionNotFound.
	Find(ctx context.Context, id string) (Subscription, error)
	Save(ctx context.Context, subscription Subscription) error
	// List возвращает подписки, при limit <= 0 без ограничения.
	List(ctx context.Context, limit int) ([]Subscription, error)
}

// ConfigProvider отдаёт настройки модуля, нужные при построении запроса.
type ConfigProvider interface {
	BoletoDueDays() int
}

// Localizer переводит строки для админки.
type Localizer interface {
	Dashboard(key string, args ...any) string
}

// OrderLogger пишет журнал по заказу.
type OrderLogger interface {
	OrderInfo(orderCode, message string, context map[string]any)
}
