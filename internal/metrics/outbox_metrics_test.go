package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOutboxMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetricsWithRegisterer(reg)

	m.RecordPublish(PublishSent)
	m.RecordPublish(PublishSent)
	m.RecordPublish(PublishRetryError)

	if got := testutil.ToFloat64(m.publishAttempts.WithLabelValues(PublishSent)); got != 2 {
		t.Errorf("sent attempts = %v, want 2", got)
	}

	m.SetBacklog(3, time.Now().Add(-2*time.Second))
	if got := testutil.ToFloat64(m.pendingRecords); got != 3 {
		t.Errorf("pending = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.oldestPendingAge); got < 1 {
		t.Errorf("oldest pending age = %v, want >= 1", got)
	}

	m.SetBacklog(0, time.Time{})
	if got := testutil.ToFloat64(m.oldestPendingAge); got != 0 {
		t.Errorf("oldest pending age = %v, want 0", got)
	}

	// Повторная регистрация не паникует и разделяет коллекторы.
	again := NewOutboxMetricsWithRegisterer(reg)
	again.RecordPublish(PublishSent)
	if got := testutil.ToFloat64(m.publishAttempts.WithLabelValues(PublishSent)); got != 3 {
		t.Errorf("sent attempts = %v, want 3", got)
	}
}
