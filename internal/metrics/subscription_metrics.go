package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты создания подписки для метки result.
const (
	CreationSucceeded = "succeeded"
	CreationRejected  = "rejected"
	CreationFailed    = "failed"
)

// Исходы отмены для метки outcome.
const (
	CancelCanceled        = "canceled"
	CancelAlreadyCanceled = "already_canceled"
	CancelNotFound        = "not_found"
	CancelError           = "error"
)

// SubscriptionMetrics содержит метрики создания и отмены подписок.
type SubscriptionMetrics struct {
	creations        *prometheus.CounterVec
	cancellations    *prometheus.CounterVec
	creationDuration prometheus.Histogram
	gatewayDuration  *prometheus.HistogramVec
	handledResults   *prometheus.CounterVec
}

// NewSubscriptionMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewSubscriptionMetrics() *SubscriptionMetrics {
	return NewSubscriptionMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewSubscriptionMetricsWithRegisterer регистрирует метрики в переданном registerer.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewSubscriptionMetricsWithRegisterer(registerer prometheus.Registerer) *SubscriptionMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &SubscriptionMetrics{
		creations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "subscriptions_created_total",
			Help: "Total number of subscription creation attempts grouped by result",
		}, []string{"result"}),
		cancellations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "subscriptions_cancellations_total",
			Help: "Total number of subscription cancellation requests grouped by outcome",
		}, []string{"outcome"}),
		creationDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "subscriptions_creation_duration_seconds",
			Help:    "Duration of subscription creation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		gatewayDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "subscriptions_gateway_request_duration_seconds",
			Help:    "Duration of payment gateway calls in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"operation"}),
		handledResults: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "subscriptions_gateway_results_total",
			Help: "Total number of gateway results dispatched to handlers grouped by kind",
		}, []string{"kind"}),
	}
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCreation учитывает попытку создания подписки.
func (m *SubscriptionMetrics) RecordCreation(result string, duration time.Duration) {
	m.creations.WithLabelValues(result).Inc()
	m.creationDuration.Observe(duration.Seconds())
}

// RecordCancellation учитывает исход отмены.
func (m *SubscriptionMetrics) RecordCancellation(outcome string) {
	m.cancellations.WithLabelValues(outcome).Inc()
}

// RecordGatewayCall записывает длительность обращения к шлюзу.
func (m *SubscriptionMetrics) RecordGatewayCall(operation string, duration time.Duration) {
	m.gatewayDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHandledResult учитывает результат шлюза, переданный обработчику.
func (m *SubscriptionMetrics) RecordHandledResult(kind string) {
	m.handledResults.WithLabelValues(kind).Inc()
}
