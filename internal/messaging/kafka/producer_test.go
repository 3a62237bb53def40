package kafka

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
)

func TestProducer_Publish(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, TopicSubscriptionEvents, msg.Topic)
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		require.Equal(t, "sub_1", string(key))
		require.Len(t, msg.Headers, 1)
		require.Equal(t, HeaderEventType, string(msg.Headers[0].Key))
		return nil
	})

	err := producer.Publish(TopicSubscriptionEvents, "sub_1", map[string]any{"status": "active"},
		map[string]string{HeaderEventType: "SubscriptionCreated"})
	require.NoError(t, err)
	require.NoError(t, mockProducer.Close())
}

func TestProducer_Publish_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.Publish(TopicSubscriptionEvents, "sub_1", map[string]any{}, nil)
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, mockProducer.Close())
}

func TestProducer_Publish_MarshalError(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	err := producer.Publish(TopicSubscriptionEvents, "sub_1", json.RawMessage(`{broken`), nil)
	require.Error(t, err)
	require.NoError(t, mockProducer.Close())
}

func TestSaramaConfig_Idempotent(t *testing.T) {
	cfg := saramaConfig()
	require.True(t, cfg.Producer.Idempotent)
	require.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	require.Equal(t, 1, cfg.Net.MaxOpenRequests)
	require.True(t, cfg.Producer.Return.Successes)
	require.NoError(t, cfg.Validate())
}

func TestRecordHeaders_SortedByName(t *testing.T) {
	headers := recordHeaders(map[string]string{HeaderOutboxID: "o1", HeaderEventType: "SubscriptionCreated", HeaderAggregateType: "subscription"})
	require.Len(t, headers, 3)
	for i := 1; i < len(headers); i++ {
		require.Less(t, string(headers[i-1].Key), string(headers[i].Key))
	}
	require.Nil(t, recordHeaders(nil))
}
