package recurrence

import "github.com/vladislavdragonenkov/subscriptions/internal/domain"

const statusField = "status"

// IsSuccessful классифицирует сырой ответ шлюза. Неуспешен только ответ без статуса
// или со статусом failed, любой другой статус считается успехом.
func IsSuccessful(raw map[string]any) bool {
	status, ok := raw[statusField]
	if !ok || status == nil {
		return false
	}
	if s, ok := status.(string); ok && s == string(domain.SubscriptionStatusFailed) {
		return false
	}
	return true
}
