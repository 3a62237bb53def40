package outbox

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

// LogPublisher пишет события в журнал. Используется, когда брокер не настроен.
type LogPublisher struct {
	logger *log.Entry
}

// NewLogPublisher создаёт publisher поверх logrus.
func NewLogPublisher(logger *log.Entry) *LogPublisher {
	if logger == nil {
		logger = log.New().WithField("component", "outbox-log-publisher")
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.OutboxMessage) error {
	p.logger.WithFields(log.Fields{
		"outbox_id":      event.ID,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID,
		"event_type":     event.EventType,
		"payload":        string(event.Payload),
	}).Info("outbox event published")
	return nil
}

var _ domain.OutboxPublisher = (*LogPublisher)(nil)
