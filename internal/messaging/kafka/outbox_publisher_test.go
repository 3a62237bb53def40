package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

func headerValue(msg *sarama.ProducerMessage, name string) string {
	for _, h := range msg.Headers {
		if string(h.Key) == name {
			return string(h.Value)
		}
	}
	return ""
}

func TestOutboxPublisher_RoutesByEventType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		event     string
		wantTopic string
	}{
		{domain.EventSubscriptionCreated, TopicSubscriptionEvents},
		{domain.EventSubscriptionCanceled, TopicSubscriptionEvents},
		{domain.EventChargeCreated, TopicChargeEvents},
	}

	for _, tt := range tests {
		mockProducer := mocks.NewSyncProducer(t, nil)
		mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			require.Equal(t, tt.wantTopic, msg.Topic)
			require.Equal(t, tt.event, headerValue(msg, HeaderEventType))
			require.Equal(t, "outbox-1", headerValue(msg, HeaderOutboxID))

			raw, err := msg.Value.Encode()
			require.NoError(t, err)
			var envelope Envelope
			require.NoError(t, json.Unmarshal(raw, &envelope))
			require.Equal(t, "sub_1", envelope.AggregateID)
			require.JSONEq(t, `{"status":"active"}`, string(envelope.Payload))
			return nil
		})

		publisher := NewOutboxPublisher(newProducer(mockProducer, nil))
		err := publisher.Publish(context.Background(), domain.OutboxMessage{
			ID:            "outbox-1",
			AggregateType: "subscription",
			AggregateID:   "sub_1",
			EventType:     tt.event,
			Payload:       []byte(`{"status":"active"}`),
		})
		require.NoError(t, err)
		require.NoError(t, mockProducer.Close())
	}
}

func TestTopicPublisher_FixedTopic(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, TopicDeadLetterQueue, msg.Topic)
		return nil
	})

	publisher := NewTopicPublisher(newProducer(mockProducer, nil), TopicDeadLetterQueue)
	require.NoError(t, publisher.Publish(context.Background(), domain.OutboxMessage{
		ID:        "outbox-2",
		EventType: domain.EventChargeCreated,
		Payload:   []byte(`{}`),
	}))
	require.NoError(t, mockProducer.Close())
}

func TestOutboxPublisher_ProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewOutboxPublisher(newProducer(mockProducer, nil))
	err := publisher.Publish(context.Background(), domain.OutboxMessage{
		ID:          "outbox-3",
		AggregateID: "sub_2",
		EventType:   domain.EventSubscriptionCreated,
		Payload:     []byte(`{}`),
	})
	require.Error(t, err)
	require.NoError(t, mockProducer.Close())
}

func TestOutboxPublisher_NotInitialized(t *testing.T) {
	t.Parallel()

	publisher := NewOutboxPublisher(nil)
	require.Error(t, publisher.Publish(context.Background(), domain.OutboxMessage{ID: "outbox-4"}))
}

func TestOutboxPublisher_CanceledContext(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	publisher := NewOutboxPublisher(newProducer(mockProducer, nil))
	require.ErrorIs(t, publisher.Publish(ctx, domain.OutboxMessage{ID: "outbox-5"}), context.Canceled)
	require.NoError(t, mockProducer.Close())
}
