package domain

import "time"

// SubscriptionStatus описывает жизненный цикл подписки на стороне шлюза.
type SubscriptionStatus string

const (
	// Создана, первый цикл ещё не оплачен.
	SubscriptionStatusPending SubscriptionStatus = "pending"
	// Списания идут по расписанию.
	SubscriptionStatusActive SubscriptionStatus = "active"
	// Начнётся в будущую дату.
	SubscriptionStatusFuture SubscriptionStatus = "future"
	// Шлюз не смог активировать подписку.
	SubscriptionStatusFailed SubscriptionStatus = "failed"
	// Повторных списаний не будет.
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// ChargeStatus описывает состояние разового списания.
type ChargeStatus string

const (
	ChargeStatusPending  ChargeStatus = "pending"
	ChargeStatusPaid     ChargeStatus = "paid"
	ChargeStatusFailed   ChargeStatus = "failed"
	ChargeStatusCanceled ChargeStatus = "canceled"
)

// PricingSchemeUnit — цена за единицу товара.
const PricingSchemeUnit = "unit"

// PricingScheme — схема тарификации позиции подписки.
type PricingScheme struct {
	Scheme     string `json:"scheme_type"`
	PriceMinor int64  `json:"price"`
}

// UnitPricing строит схему "цена за единицу".
func UnitPricing(amountMinor int64) PricingScheme {
	return PricingScheme{Scheme: PricingSchemeUnit, PriceMinor: amountMinor}
}

// SubProduct — позиция подписки, отправляемая в шлюз.
type SubProduct struct {
	Description        string        `json:"description"`
	Quantity           int           `json:"quantity"`
	PricingScheme      PricingScheme `json:"pricing_scheme"`
	Cycles             int           `json:"cycles,omitempty"`
	SelectedRepetition *Repetition   `json:"-"`
}

// SubscriptionRequest — запрос на создание подписки. Не сохраняется,
// живёт в пределах одного вызова CreateSubscription.
type SubscriptionRequest struct {
	Code     string       `json:"code"`
	Customer Customer     `json:"customer"`
	Items    []SubProduct `json:"items"`
	// Пустые IntervalType/IntervalCount означают "не задано".
	IntervalType  IntervalType  `json:"interval,omitempty"`
	IntervalCount int           `json:"interval_count,omitempty"`
	Description   string        `json:"description,omitempty"`
	Shipping      *Shipping     `json:"shipping,omitempty"`
	CardToken     *string       `json:"card_token,omitempty"`
	Installments  *int          `json:"installments,omitempty"`
	BoletoDueDays int           `json:"boleto_due_days,omitempty"`
	BillingType   BillingType   `json:"billing_type,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// ResultKind — вид результата, который вернул шлюз.
type ResultKind string

const (
	ResultKindSubscription ResultKind = "subscription"
	ResultKindCharge       ResultKind = "charge"
)

// GatewayResult — типизированный результат шлюза. Реализуют только *Subscription и *Charge.
type GatewayResult interface {
	Kind() ResultKind
	GatewayID() string
	SetPlatformOrder(order PlatformOrder)
}

// Subscription — подписка, созданная шлюзом и сохранённая у нас.
type Subscription struct {
	ID                string             `json:"id"`
	Code              string             `json:"code"`
	Status            SubscriptionStatus `json:"status"`
	CustomerID        string             `json:"customer_id,omitempty"`
	PaymentMethod     PaymentMethod      `json:"payment_method,omitempty"`
	IntervalType      IntervalType       `json:"interval,omitempty"`
	IntervalCount     int                `json:"interval_count,omitempty"`
	BillingType       BillingType        `json:"billing_type,omitempty"`
	PlatformOrderCode string             `json:"platform_order_code,omitempty"`
	GatewayCreatedAt  time.Time          `json:"gateway_created_at,omitempty"`
	// Metadata хранит исходный ответ шлюза.
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	platformOrder PlatformOrder
}

func (s *Subscription) Kind() ResultKind { return ResultKindSubscription }

func (s *Subscription) GatewayID() string { return s.ID }

// SetPlatformOrder связывает подписку с исходным заказом платформы.
func (s *Subscription) SetPlatformOrder(order PlatformOrder) {
	s.platformOrder = order
	if order != nil {
		s.PlatformOrderCode = order.Code()
	}
}

// PlatformOrder возвращает заказ платформы, если он был привязан в этом процессе.
func (s *Subscription) PlatformOrder() PlatformOrder {
	return s.platformOrder
}

// IsCanceled сообщает, отменена ли подписка.
func (s *Subscription) IsCanceled() bool {
	return s.Status == SubscriptionStatusCanceled
}

// Charge — разовое списание, которое шлюз может вернуть вместо подписки.
type Charge struct {
	ID                string         `json:"id"`
	Code              string         `json:"code"`
	Status            ChargeStatus   `json:"status"`
	AmountMinor       int64          `json:"amount"`
	PaymentMethod     PaymentMethod  `json:"payment_method,omitempty"`
	PlatformOrderCode string         `json:"platform_order_code,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`

	platformOrder PlatformOrder
}

func (c *Charge) Kind() ResultKind { return ResultKindCharge }

func (c *Charge) GatewayID() string { return c.ID }

// SetPlatformOrder связывает списание с исходным заказом платформы.
func (c *Charge) SetPlatformOrder(order PlatformOrder) {
	c.platformOrder = order
	if order != nil {
		c.PlatformOrderCode = order.Code()
	}
}

// PlatformOrder возвращает привязанный заказ платформы.
func (c *Charge) PlatformOrder() PlatformOrder {
	return c.platformOrder
}

var (
	_ GatewayResult = (*Subscription)(nil)
	_ GatewayResult = (*Charge)(nil)
)
