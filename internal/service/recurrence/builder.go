package recurrence

import (
	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

// BuildOptions передаёт конфигурацию в построитель явно, без обращения к глобальному состоянию.
type BuildOptions struct {
	BoletoDueDays int
}

// BuildOptionsFrom читает опции из провайдера конфигурации. Nil даёт нулевые опции.
func BuildOptionsFrom(cfg domain.ConfigProvider) BuildOptions {
	if cfg == nil {
		return BuildOptions{}
	}
	return BuildOptions{BoletoDueDays: cfg.BoletoDueDays()}
}

// BuildSubscriptionRequest строит запрос на создание подписки из платёжного заказа.
// Функция чистая: не выполняет I/O и не меняет order.
func BuildSubscriptionRequest(order domain.Order, opts BuildOptions) (domain.SubscriptionRequest, error) {
	primary, err := domain.PrimaryRecurrenceItem(order)
	if err != nil {
		return domain.SubscriptionRequest{}, err
	}
	settings := primary.SelectedRepetition

	items := make([]domain.SubProduct, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.SubProduct{
			Description:        item.Description,
			Quantity:           item.Quantity,
			PricingScheme:      domain.UnitPricing(item.AmountMinor),
			Cycles:             settings.Cycles,
			SelectedRepetition: copyRepetition(item.SelectedRepetition),
		})
	}

	req := domain.SubscriptionRequest{
		Code:          order.Code,
		Customer:      order.Customer,
		Items:         items,
		BoletoDueDays: opts.BoletoDueDays,
		Shipping:      order.Shipping,
		BillingType:   settings.BillingType,
		PaymentMethod: order.PaymentMethod,
	}

	// Первая позиция задаёт интервал и описание. Без повторения у первой позиции
	// интервал остаётся незаданным.
	first := items[0]
	if first.SelectedRepetition != nil {
		req.IntervalType = first.SelectedRepetition.Interval
		req.IntervalCount = first.SelectedRepetition.IntervalCount
	}
	req.Description = first.Description

	if len(order.Payments) > 0 {
		payment := order.Payments[0]
		if carrier, ok := payment.(domain.CardTokenCarrier); ok {
			token := carrier.CardToken()
			req.CardToken = &token
		}
		if carrier, ok := payment.(domain.InstallmentsCarrier); ok {
			installments := carrier.Installments()
			req.Installments = &installments
		}
	}

	return req, nil
}

func copyRepetition(r *domain.Repetition) *domain.Repetition {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
