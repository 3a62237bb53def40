package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
	"github.com/vladislavdragonenkov/subscriptions/internal/platform"
)

// importPlatformOrderRequest — заказ платформы, который магазин передаёт сервису.
type importPlatformOrderRequest struct {
	Code          string                 `json:"code"`
	Customer      domain.Customer        `json:"customer"`
	Items         []platform.Item        `json:"items"`
	Payments      []platform.PaymentInfo `json:"payments"`
	Shipping      *domain.Shipping       `json:"shipping,omitempty"`
	PaymentMethod domain.PaymentMethod   `json:"payment_method"`
}

func (req importPlatformOrderRequest) validate() string {
	switch {
	case req.Code == "":
		return "code is required"
	case len(req.Items) == 0:
		return "items are required"
	case req.PaymentMethod == "":
		return "payment_method is required"
	}
	for _, item := range req.Items {
		if item.Code == "" || item.Quantity <= 0 {
			return "item code and positive quantity are required"
		}
	}
	return ""
}

func (req importPlatformOrderRequest) record(now time.Time) platform.Record {
	return platform.Record{
		Code:          req.Code,
		State:         domain.OrderStateNew,
		Status:        domain.OrderStatusPending,
		Customer:      req.Customer,
		Items:         req.Items,
		Payments:      req.Payments,
		Shipping:      req.Shipping,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

type platformOrderResponse struct {
	Code    string             `json:"code"`
	State   domain.OrderState  `json:"state"`
	Status  domain.OrderStatus `json:"status"`
	Version int64              `json:"version"`
	Items   []platform.Item    `json:"items"`
}

func toPlatformOrderResponse(record platform.Record) platformOrderResponse {
	return platformOrderResponse{
		Code:    record.Code,
		State:   record.State,
		Status:  record.Status,
		Version: record.Version,
		Items:   record.Items,
	}
}

type gatewayResultResponse struct {
	Kind   domain.ResultKind `json:"kind"`
	ID     string            `json:"id"`
	Status string            `json:"status"`
}

func toGatewayResultResponse(result domain.GatewayResult) gatewayResultResponse {
	resp := gatewayResultResponse{Kind: result.Kind(), ID: result.GatewayID()}
	switch r := result.(type) {
	case *domain.Subscription:
		resp.Status = string(r.Status)
	case *domain.Charge:
		resp.Status = string(r.Status)
	}
	return resp
}

type createSubscriptionResponse struct {
	Results []gatewayResultResponse `json:"results"`
	Order   platformOrderResponse   `json:"order"`
}

type isSubscriptionResponse struct {
	IsSubscription bool `json:"is_subscription"`
}

type listSubscriptionsResponse struct {
	Subscriptions []domain.Subscription `json:"subscriptions"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
