package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
	"github.com/vladislavdragonenkov/subscriptions/internal/platform"
	"github.com/vladislavdragonenkov/subscriptions/internal/service/recurrence"
)

const maxBodyBytes = 1 << 20

// SubscriptionService — операции сервиса подписок, доступные через HTTP.
type SubscriptionService interface {
	CreateSubscription(ctx context.Context, platformOrder domain.PlatformOrder) ([]domain.GatewayResult, error)
	IsSubscription(ctx context.Context, platformOrder domain.PlatformOrder) (bool, error)
	ListAll(ctx context.Context) ([]domain.Subscription, error)
	Cancel(ctx context.Context, subscriptionID string) recurrence.CancelResult
}

var _ SubscriptionService = (*recurrence.Service)(nil)

// Handler обслуживает запросы API.
type Handler struct {
	service SubscriptionService
	orders  platform.Repository
	catalog domain.RecurrenceCatalogStore
	logger  *log.Entry
}

// NewHandler создаёт обработчики API. catalog может быть nil, тогда
// управление каталогом отключено.
func NewHandler(service SubscriptionService, orders platform.Repository, catalog domain.RecurrenceCatalogStore, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http-api")
	}
	return &Handler{service: service, orders: orders, catalog: catalog, logger: logger}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

// ImportPlatformOrder сохраняет заказ платформы в состоянии new/pending.
func (h *Handler) ImportPlatformOrder(w http.ResponseWriter, r *http.Request) {
	var req importPlatformOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	record := req.record(time.Now().UTC())
	if err := h.orders.Create(r.Context(), record); err != nil {
		if errors.Is(err, domain.ErrPlatformOrderVersionConflict) {
			writeError(w, http.StatusConflict, "platform_order_exists", "platform order "+req.Code+" already exists")
			return
		}
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlatformOrderResponse(record))
}

// GetPlatformOrder возвращает текущее состояние заказа платформы.
func (h *Handler) GetPlatformOrder(w http.ResponseWriter, r *http.Request) {
	record, err := h.orders.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlatformOrderResponse(record))
}

// CreateSubscription оформляет подписку по заказу платформы.
func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	order, err := platform.Load(r.Context(), h.orders, chi.URLParam(r, "code"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	results, err := h.service.CreateSubscription(r.Context(), order)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	resp := createSubscriptionResponse{
		Results: make([]gatewayResultResponse, 0, len(results)),
		Order:   toPlatformOrderResponse(order.Record()),
	}
	for _, result := range results {
		resp.Results = append(resp.Results, toGatewayResultResponse(result))
	}
	writeJSON(w, http.StatusCreated, resp)
}

// IsSubscription сообщает, есть ли в заказе рекуррентные позиции.
func (h *Handler) IsSubscription(w http.ResponseWriter, r *http.Request) {
	order, err := platform.Load(r.Context(), h.orders, chi.URLParam(r, "code"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	ok, err := h.service.IsSubscription(r.Context(), order)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, isSubscriptionResponse{IsSubscription: ok})
}

// ListSubscriptions возвращает все сохранённые подписки.
func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.ListAll(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if subs == nil {
		subs = []domain.Subscription{}
	}
	writeJSON(w, http.StatusOK, listSubscriptionsResponse{Subscriptions: subs})
}

// CancelSubscription отменяет подписку. HTTP-статус равен коду результата.
func (h *Handler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	result := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	writeJSON(w, result.Code, result)
}

// UpsertRecurrenceProduct создаёт или заменяет настройки рекуррентного товара.
func (h *Handler) UpsertRecurrenceProduct(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeError(w, http.StatusNotImplemented, "catalog_disabled", "")
		return
	}

	var settings domain.RecurrenceSettings
	if !decodeBody(w, r, &settings) {
		return
	}
	settings.ProductID = chi.URLParam(r, "id")
	if settings.Cycles < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "cycles must not be negative")
		return
	}

	if err := h.catalog.UpsertRecurrenceProduct(r.Context(), settings); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
