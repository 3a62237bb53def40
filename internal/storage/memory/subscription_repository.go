package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

// subscriptionRepositoryInMemory хранит подписки в map. Последняя запись по id побеждает.
type subscriptionRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Subscription
}

// NewSubscriptionRepository создаёт in-memory хранилище подписок.
func NewSubscriptionRepository() domain.SubscriptionStore {
	return &subscriptionRepositoryInMemory{items: make(map[string]domain.Subscription)}
}

func (r *subscriptionRepositoryInMemory) Find(_ context.Context, id string) (domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.items[id]
	if !ok {
		return domain.Subscription{}, domain.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (r *subscriptionRepositoryInMemory) Save(_ context.Context, sub domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[sub.ID]; ok && sub.CreatedAt.IsZero() {
		sub.CreatedAt = existing.CreatedAt
	}
	r.items[sub.ID] = sub
	return nil
}

// List возвращает подписки от новых к старым.
func (r *subscriptionRepositoryInMemory) List(_ context.Context, limit int) ([]domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Subscription, 0, len(r.items))
	for _, sub := range r.items {
		result = append(result, sub)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

var _ domain.SubscriptionStore = (*subscriptionRepositoryInMemory)(nil)
