package kafka

import (
	"encoding/json"
	"time"
)

// Топики событий подписок.
const (
	TopicSubscriptionEvents = "subscriptions.events"
	TopicChargeEvents       = "subscriptions.charges"
	TopicDeadLetterQueue    = "subscriptions.dlq"
)

// Заголовки сообщений.
const (
	HeaderEventType     = "x-event-type"
	HeaderAggregateType = "x-aggregate-type"
	HeaderOutboxID      = "x-outbox-id"
)

// Envelope — конверт события из outbox, который уходит в Kafka.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}
