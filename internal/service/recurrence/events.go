package recurrence

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

const (
	aggregateSubscription = "subscription"
	aggregateCharge       = "charge"
)

// eventEmitter кладёт события в transactional outbox. Без outbox события не пишутся.
type eventEmitter struct {
	outbox domain.OutboxRepository
	logger *log.Entry
}

func (e eventEmitter) emit(ctx context.Context, aggregateType, aggregateID, eventType string, payload map[string]any) {
	if e.outbox == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]any)
	}
	payload["id"] = aggregateID
	payload["ts"] = time.Now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"aggregate_id": aggregateID,
			"event":        eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       data,
	}
	if _, err := e.outbox.Enqueue(ctx, msg); err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"aggregate_id": aggregateID,
			"event":        eventType,
		}).Error("enqueue event failed")
	}
}
