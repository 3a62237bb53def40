package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
	"github.com/vladislavdragonenkov/subscriptions/internal/platform"
)

// platformOrderRepositoryInMemory — in-memory реализация platform.Repository.
type platformOrderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]platform.Record
}

// NewPlatformOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewPlatformOrderRepository() platform.Repository {
	return &platformOrderRepositoryInMemory{
		items: make(map[string]platform.Record),
	}
}

// Create сохраняет новый заказ, если код ещё не занят.
func (r *platformOrderRepositoryInMemory) Create(_ context.Context, record platform.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[record.Code]; exists {
		return domain.ErrPlatformOrderVersionConflict
	}
	r.items[record.Code] = cloneRecord(record)
	return nil
}

// Get возвращает заказ или ErrPlatformOrderNotFound.
func (r *platformOrderRepositoryInMemory) Get(_ context.Context, code string) (platform.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[code]
	if !ok {
		return platform.Record{}, domain.ErrPlatformOrderNotFound
	}
	return cloneRecord(record), nil
}

// Save перезаписывает заказ, проверяя версию (optimistic locking).
func (r *platformOrderRepositoryInMemory) Save(_ context.Context, record platform.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[record.Code]
	if !ok {
		return domain.ErrPlatformOrderNotFound
	}
	if current.Version != record.Version {
		return domain.ErrPlatformOrderVersionConflict
	}
	record.Version++
	r.items[record.Code] = cloneRecord(record)
	return nil
}

// cloneRecord копирует срезы, чтобы внешние мутации не меняли хранилище.
func cloneRecord(record platform.Record) platform.Record {
	record.Items = append([]platform.Item(nil), record.Items...)
	record.Payments = append([]platform.PaymentInfo(nil), record.Payments...)
	return record
}

var _ platform.Repository = (*platformOrderRepositoryInMemory)(nil)
