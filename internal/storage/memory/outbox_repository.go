package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

const defaultOutboxBatch = 100

type outboxEntry struct {
	msg       domain.OutboxMessage
	pending   bool
	createdAt time.Time
}

// OutboxLog — outbox в памяти процесса: журнал в порядке записи и индекс по id.
type OutboxLog struct {
	mu      sync.RWMutex
	entries []*outboxEntry
	byID    map[string]*outboxEntry
}

// NewOutboxRepository создаёт пустой журнал событий.
func NewOutboxRepository() *OutboxLog {
	return &OutboxLog{byID: make(map[string]*outboxEntry)}
}

// Enqueue добавляет событие в конец журнала.
func (l *OutboxLog) Enqueue(_ context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if _, exists := l.byID[msg.ID]; exists {
		return domain.OutboxMessage{}, fmt.Errorf("enqueue %s: message %s already exists", msg.EventType, msg.ID)
	}

	entry := &outboxEntry{msg: msg, pending: true, createdAt: time.Now().UTC()}
	l.entries = append(l.entries, entry)
	l.byID[msg.ID] = entry
	return msg, nil
}

// PullPending возвращает до limit неотправленных событий, начиная с самых старых.
func (l *OutboxLog) PullPending(_ context.Context, limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = defaultOutboxBatch
	}
	return l.pending(limit), nil
}

// Stats возвращает размер backlog и время самого старого события в нём.
func (l *OutboxLog) Stats(_ context.Context) (domain.OutboxStats, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var stats domain.OutboxStats
	for _, entry := range l.entries {
		if !entry.pending {
			continue
		}
		if stats.PendingCount == 0 {
			stats.OldestPendingAt = entry.createdAt
		}
		stats.PendingCount++
	}
	return stats, nil
}

func (l *OutboxLog) MarkSent(_ context.Context, id string) error {
	return l.settle(id)
}

func (l *OutboxLog) MarkFailed(_ context.Context, id string) error {
	return l.settle(id)
}

// settle снимает событие с очереди. В памяти sent и failed не различаются.
func (l *OutboxLog) settle(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.byID[id]
	if !ok {
		return fmt.Errorf("%w: outbox message %s not found", domain.ErrOutboxPublish, id)
	}
	entry.pending = false
	return nil
}

// AllPending возвращает все неотправленные события; используется в тестах.
func (l *OutboxLog) AllPending() []domain.OutboxMessage {
	return l.pending(0)
}

func (l *OutboxLog) pending(limit int) []domain.OutboxMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.OutboxMessage
	for _, entry := range l.entries {
		if limit > 0 && len(out) == limit {
			break
		}
		if entry.pending {
			out = append(out, entry.msg)
		}
	}
	return out
}

var _ domain.OutboxRepository = (*OutboxLog)(nil)
