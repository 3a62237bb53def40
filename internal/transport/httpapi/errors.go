package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

// errorKind возвращает машинно-читаемый вид ошибки для ответа.
func errorKind(err error) string {
	var creationErr *domain.CreationError
	switch {
	case errors.As(err, &creationErr):
		return "subscription_not_created"
	case errors.Is(err, domain.ErrPlatformOrderNotFound):
		return "platform_order_not_found"
	case errors.Is(err, domain.ErrPlatformOrderVersionConflict):
		return "version_conflict"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}

// httpStatus сопоставляет ошибку с кодом ответа.
func httpStatus(err error) int {
	var creationErr *domain.CreationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &creationErr):
		return creationErr.Code
	case errors.Is(err, domain.ErrPlatformOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPlatformOrderVersionConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage не раскрывает внутренние ошибки: наружу уходит только
// уже локализованное сообщение CreationError.
func publicMessage(err error) string {
	var creationErr *domain.CreationError
	if errors.As(err, &creationErr) {
		return creationErr.Message
	}
	if httpStatus(err) == http.StatusInternalServerError {
		return ""
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	writeError(w, status, errorKind(err), publicMessage(err))
}
