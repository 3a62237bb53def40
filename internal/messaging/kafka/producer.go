// Package kafka публикует события подписок в Kafka через IBM/sarama.
package kafka

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

const clientID = "subscription-service"

// Producer отправляет события синхронно: Publish возвращается после подтверждения всех реплик.
type Producer struct {
	sync   sarama.SyncProducer
	logger *log.Entry
}

// NewProducer подключается к брокерам с идемпотентной доставкой.
func NewProducer(brokers []string, logger *log.Entry) (*Producer, error) {
	sp, err := sarama.NewSyncProducer(brokers, saramaConfig())
	if err != nil {
		return nil, fmt.Errorf("connect kafka brokers %v: %w", brokers, err)
	}
	return newProducer(sp, logger), nil
}

// saramaConfig: идемпотентность требует WaitForAll и одного запроса в полёте.
func saramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.Idempotent = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 200 * time.Millisecond
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	return cfg
}

func newProducer(sp sarama.SyncProducer, logger *log.Entry) *Producer {
	if logger == nil {
		logger = log.New().WithField("component", "kafka-producer")
	}
	return &Producer{sync: sp, logger: logger}
}

// Publish кодирует event в JSON и отправляет его в topic с ключом партиционирования key.
func (p *Producer) Publish(topic, key string, event any, headers map[string]string) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event for %s: %w", topic, err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(value),
		Headers:   recordHeaders(headers),
		Timestamp: time.Now().UTC(),
	}

	fields := log.Fields{"topic": topic, "key": key}
	partition, offset, err := p.sync.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(fields).Error("kafka send failed")
		return fmt.Errorf("send to %s: %w", topic, err)
	}
	fields["partition"], fields["offset"] = partition, offset
	p.logger.WithFields(fields).Debug("kafka message delivered")
	return nil
}

// recordHeaders сортирует заголовки по имени, чтобы порядок не зависел от map.
func recordHeaders(headers map[string]string) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]sarama.RecordHeader, 0, len(names))
	for _, name := range names {
		out = append(out, sarama.RecordHeader{Key: []byte(name), Value: []byte(headers[name])})
	}
	return out
}

// Close дожидается отправки буфера и закрывает соединения с брокерами.
func (p *Producer) Close() error {
	if err := p.sync.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}
