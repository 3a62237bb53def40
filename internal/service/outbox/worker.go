// Package outbox доставляет события подписок из transactional outbox в брокер.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
	"github.com/vladislavdragonenkov/subscriptions/internal/metrics"
)

const (
	defaultPollInterval   = time.Second
	defaultBatchSize      = 100
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
	maxRetryDelay         = 30 * time.Second
)

// Option настраивает Worker.
type Option func(*Worker)

// WithLogger задаёт logger; nil оставляет logger по умолчанию.
func WithLogger(logger *log.Entry) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMetrics включает метрики публикации и backlog.
func WithMetrics(m *metrics.OutboxMetrics) Option {
	return func(w *Worker) { w.metrics = m }
}

// WithDLQPublisher задаёт publisher, в который уходят события после исчерпания попыток.
func WithDLQPublisher(publisher domain.OutboxPublisher) Option {
	return func(w *Worker) { w.dlq = publisher }
}

// WithPollInterval задаёт частоту опроса; значения <= 0 игнорируются.
func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

// WithBatchSize задаёт число событий за один опрос.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithMaxAttempts задаёт число попыток публикации одного события.
func WithMaxAttempts(attempts int) Option {
	return func(w *Worker) {
		if attempts > 0 {
			w.maxAttempts = attempts
		}
	}
}

// WithRetryBaseDelay задаёт первую задержку между попытками; 0 отключает паузы.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(w *Worker) {
		if delay < 0 {
			delay = 0
		}
		w.retryBaseDelay = delay
	}
}

// Worker публикует pending-события подписок из outbox.
type Worker struct {
	repo      domain.OutboxRepository
	publisher domain.OutboxPublisher
	dlq       domain.OutboxPublisher
	logger    *log.Entry
	metrics   *metrics.OutboxMetrics

	pollInterval   time.Duration
	batchSize      int
	maxAttempts    int
	retryBaseDelay time.Duration
}

// NewWorker создаёт outbox worker.
func NewWorker(repo domain.OutboxRepository, publisher domain.OutboxPublisher, opts ...Option) *Worker {
	w := &Worker{
		repo:           repo,
		publisher:      publisher,
		logger:         log.New().WithField("component", "outbox-worker"),
		pollInterval:   defaultPollInterval,
		batchSize:      defaultBatchSize,
		maxAttempts:    defaultMaxAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run опрашивает outbox до отмены ctx. Возвращает nil после остановки.
func (w *Worker) Run(ctx context.Context) error {
	if w.repo == nil || w.publisher == nil {
		w.logger.Warn("outbox worker is disabled: repo or publisher is nil")
		return nil
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		w.ProcessOnce(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// ProcessOnce выполняет один цикл опроса и возвращает число отправленных событий.
func (w *Worker) ProcessOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	defer w.refreshBacklog(ctx)

	batch, err := w.repo.PullPending(ctx, w.batchSize)
	if err != nil {
		w.logger.WithError(err).Warn("failed to pull pending outbox messages")
		return 0
	}

	sent := 0
	for _, event := range batch {
		if ctx.Err() != nil {
			break
		}
		if err := w.deliver(ctx, event); err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				// Остановка во время ретраев: событие остаётся pending.
				w.logger.WithField("outbox_id", event.ID).Info("outbox delivery interrupted by shutdown")
				break
			}
			w.giveUp(ctx, event, err)
			continue
		}
		sent++
		if err := w.repo.MarkSent(ctx, event.ID); err != nil {
			w.logger.WithError(err).WithField("outbox_id", event.ID).Warn("failed to mark outbox as sent")
		}
	}
	return sent
}

// deliver публикует событие, повторяя попытки с экспоненциальной паузой.
func (w *Worker) deliver(ctx context.Context, event domain.OutboxMessage) error {
	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if lastErr = w.publisher.Publish(ctx, event); lastErr == nil {
			w.record(metrics.PublishSent)
			return nil
		}
		w.record(metrics.PublishRetryError)
		if attempt == w.maxAttempts {
			break
		}
		if err := sleep(ctx, w.retryBackoff(attempt)); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", domain.ErrOutboxPublish, w.maxAttempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// giveUp переводит событие в failed и, если настроено, копирует его в DLQ.
func (w *Worker) giveUp(ctx context.Context, event domain.OutboxMessage, cause error) {
	entry := w.logger.WithFields(log.Fields{
		"outbox_id":    event.ID,
		"aggregate_id": event.AggregateID,
		"event_type":   event.EventType,
	})
	entry.WithError(cause).Error("outbox publish failed after retries")
	w.record(metrics.PublishFailed)

	if w.dlq != nil {
		if err := w.sendToDLQ(ctx, event, cause); err != nil {
			entry.WithError(err).Warn("failed to publish to DLQ")
			w.record(metrics.PublishDLQFailed)
		}
	}
	if err := w.repo.MarkFailed(ctx, event.ID); err != nil {
		entry.WithError(err).Warn("failed to mark outbox as failed")
	}
}

// dlqRecord — исходное событие и причина отказа.
type dlqRecord struct {
	OutboxID      string          `json:"outbox_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishError  string          `json:"publish_error"`
	FailedAt      time.Time       `json:"failed_at"`
}

func (w *Worker) sendToDLQ(ctx context.Context, event domain.OutboxMessage, cause error) error {
	original := json.RawMessage(event.Payload)
	if len(original) == 0 {
		original = json.RawMessage("null")
	}
	payload, err := json.Marshal(dlqRecord{
		OutboxID:      event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       original,
		PublishError:  cause.Error(),
		FailedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode dlq record: %w", err)
	}

	dead := event
	dead.Payload = payload
	if err := w.dlq.Publish(ctx, dead); err != nil {
		return fmt.Errorf("publish to dlq: %w", err)
	}
	return nil
}

func (w *Worker) record(result string) {
	if w.metrics != nil {
		w.metrics.RecordPublish(result)
	}
}

func (w *Worker) refreshBacklog(ctx context.Context) {
	if w.metrics == nil {
		return
	}
	stats, err := w.repo.Stats(ctx)
	if err != nil {
		w.logger.WithError(err).Warn("failed to collect outbox backlog stats")
		return
	}
	w.metrics.SetBacklog(stats.PendingCount, stats.OldestPendingAt)
}

// retryBackoff удваивает задержку на каждой попытке, не превышая maxRetryDelay.
func (w *Worker) retryBackoff(attempt int) time.Duration {
	delay := w.retryBaseDelay
	for i := 1; i < attempt && delay > 0 && delay < maxRetryDelay; i++ {
		delay *= 2
	}
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}
