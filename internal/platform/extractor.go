package platform

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

// recordSource — заказ платформы, из которого можно получить снимок.
type recordSource interface {
	Record() Record
}

// Extractor реализует domain.OrderExtractor для заказов этого пакета.
type Extractor struct {
	catalog domain.RecurrenceCatalog
	logger  *log.Entry
}

// NewExtractor создаёт извлекатель. Без каталога настройки повторения берутся из позиции.
func NewExtractor(catalog domain.RecurrenceCatalog, logger *log.Entry) *Extractor {
	if logger == nil {
		logger = log.New().WithField("component", "order-extractor")
	}
	return &Extractor{catalog: catalog, logger: logger}
}

// ExtractPaymentOrder строит канонический платёжный заказ. Для рекуррентных позиций
// циклы и тип выставления счёта берутся из каталога, если товар там есть.
func (e *Extractor) ExtractPaymentOrder(ctx context.Context, platformOrder domain.PlatformOrder) (domain.Order, error) {
	src, ok := platformOrder.(recordSource)
	if !ok {
		return domain.Order{}, fmt.Errorf("unsupported platform order type %T", platformOrder)
	}
	record := src.Record()

	items := make([]domain.OrderItem, 0, len(record.Items))
	for _, item := range record.Items {
		orderItem := domain.OrderItem{
			Code:        item.Code,
			Description: item.Description,
			Quantity:    item.Quantity,
			AmountMinor: item.AmountMinor,
		}
		if item.Repetition != nil {
			repetition := *item.Repetition
			if err := e.applyCatalog(ctx, item.Code, &repetition); err != nil {
				return domain.Order{}, err
			}
			orderItem.SelectedRepetition = &repetition
		}
		items = append(items, orderItem)
	}

	payments := make([]domain.Payment, 0, len(record.Payments))
	for _, p := range record.Payments {
		payments = append(payments, toPayment(p))
	}

	return domain.Order{
		Code:          record.Code,
		Customer:      record.Customer,
		Items:         items,
		Payments:      payments,
		Shipping:      record.Shipping,
		PaymentMethod: record.PaymentMethod,
	}, nil
}

func (e *Extractor) applyCatalog(ctx context.Context, productCode string, repetition *domain.Repetition) error {
	if e.catalog == nil {
		return nil
	}
	settings, err := e.catalog.RecurrenceProductByProductID(ctx, productCode)
	if err != nil {
		return fmt.Errorf("recurrence product %s: %w", productCode, err)
	}
	if settings == nil {
		e.logger.WithField("product_code", productCode).Debug("recurring item without catalog settings")
		return nil
	}
	repetition.Cycles = settings.Cycles
	if settings.BillingType != "" {
		repetition.BillingType = settings.BillingType
	}
	return nil
}

func toPayment(p PaymentInfo) domain.Payment {
	switch p.Method {
	case domain.PaymentMethodBoleto:
		return domain.BoletoPayment{Amount: p.AmountMinor}
	default:
		return domain.CardPayment{
			Token:           p.CardToken,
			InstallmentsNum: p.Installments,
			Amount:          p.AmountMinor,
			Debit:           p.Method == domain.PaymentMethodDebitCard,
		}
	}
}

// OrderInfo возвращает сводку заказа для журнала.
func (e *Extractor) OrderInfo(platformOrder domain.PlatformOrder) map[string]any {
	info := map[string]any{"order_code": platformOrder.Code()}
	src, ok := platformOrder.(recordSource)
	if !ok {
		return info
	}
	record := src.Record()
	info["customer_id"] = record.Customer.ID
	info["items"] = len(record.Items)
	info["payment_method"] = string(record.PaymentMethod)
	info["state"] = string(record.State)
	info["status"] = string(record.Status)
	return info
}

var _ domain.OrderExtractor = (*Extractor)(nil)
