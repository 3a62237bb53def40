package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

// OutboxPublisher публикует события outbox. Топик выбирается по типу агрегата,
// если не задан фиксированный.
type OutboxPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт publisher с маршрутизацией по типу агрегата.
func NewOutboxPublisher(producer *Producer) *OutboxPublisher {
	return &OutboxPublisher{producer: producer}
}

// NewTopicPublisher публикует все события в один топик (например, DLQ).
func NewTopicPublisher(producer *Producer, topic string) *OutboxPublisher {
	return &OutboxPublisher{producer: producer, topic: topic}
}

func (p *OutboxPublisher) Publish(ctx context.Context, event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka outbox publisher is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	envelope := Envelope{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   time.Now().UTC(),
	}
	headers := map[string]string{
		HeaderEventType:     event.EventType,
		HeaderAggregateType: event.AggregateType,
		HeaderOutboxID:      event.ID,
	}
	return p.producer.Publish(p.topicFor(event), key, envelope, headers)
}

func (p *OutboxPublisher) topicFor(event domain.OutboxMessage) string {
	if p.topic != "" {
		return p.topic
	}
	if event.EventType == domain.EventChargeCreated {
		return TopicChargeEvents
	}
	return TopicSubscriptionEvents
}

var _ domain.OutboxPublisher = (*OutboxPublisher)(nil)
