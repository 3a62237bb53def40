package recurrence

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

const objectCharge = "charge"

// NewGatewayResult материализует типизированный результат из ответа шлюза.
// object == "charge" даёт *Charge, всё остальное считается подпиской.
func NewGatewayResult(raw map[string]any) (domain.GatewayResult, error) {
	id := stringField(raw, "id")
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", domain.ErrInvalidGatewayResponse)
	}

	if stringField(raw, "object") == objectCharge {
		return &domain.Charge{
			ID:            id,
			Code:          stringField(raw, "code"),
			Status:        domain.ChargeStatus(stringField(raw, "status")),
			AmountMinor:   int64Field(raw, "amount"),
			PaymentMethod: domain.PaymentMethod(stringField(raw, "payment_method")),
			Metadata:      raw,
		}, nil
	}

	now := time.Now().UTC()
	sub := &domain.Subscription{
		ID:            id,
		Code:          stringField(raw, "code"),
		Status:        domain.SubscriptionStatus(stringField(raw, "status")),
		PaymentMethod: domain.PaymentMethod(stringField(raw, "payment_method")),
		IntervalType:  domain.IntervalType(stringField(raw, "interval")),
		IntervalCount: int(int64Field(raw, "interval_count")),
		BillingType:   domain.BillingType(stringField(raw, "billing_type")),
		Metadata:      raw,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if customer, ok := raw["customer"].(map[string]any); ok {
		sub.CustomerID = stringField(customer, "id")
	}
	if createdAt := stringField(raw, "created_at"); createdAt != "" {
		parsed, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("%w: created_at: %v", domain.ErrInvalidGatewayResponse, err)
		}
		sub.GatewayCreatedAt = parsed.UTC()
	}
	return sub, nil
}

func stringField(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// int64Field понимает как float64 из encoding/json, так и целые значения из заглушек.
func int64Field(raw map[string]any, key string) int64 {
	switch v := raw[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}
