package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// DeliveryMetrics records email sends and notification record writes.
type DeliveryMetrics struct {
	sendDuration *prometheus.HistogramVec
	sends        *prometheus.CounterVec
	suppressed   *prometheus.CounterVec
	records      *prometheus.CounterVec
}

// NewDeliveryMetrics registers the delivery metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	if reg == nil {
		return &DeliveryMetrics{}
	}
	sendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "email_send_duration_seconds",
		Help:    "Time spent handing an email to its provider.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	sends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "email_sends_total",
		Help: "Email send attempts by provider and result.",
	}, []string{"provider", "type", "result"})
	suppressed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "email_suppressed_total",
		Help: "Emails skipped because the recipient opted out.",
	}, []string{"type"})
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_records_total",
		Help: "Notification record writes by type and result.",
	}, []string{"type", "result"})
	reg.MustRegister(sendDuration, sends, suppressed, records)
	return &DeliveryMetrics{
		sendDuration: sendDuration,
		sends:        sends,
		suppressed:   suppressed,
		records:      records,
	}
}

// ObserveSend records one provider attempt.
func (m *DeliveryMetrics) ObserveSend(provider, notificationType string, ok bool, duration time.Duration) {
	if m == nil || m.sends == nil {
		return
	}
	provider = normalizeLabel(provider)
	m.sendDuration.WithLabelValues(provider).Observe(duration.Seconds())
	m.sends.WithLabelValues(provider, normalizeLabel(notificationType), result(ok)).Inc()
}

// IncSuppressed counts an email the preference gate declined.
func (m *DeliveryMetrics) IncSuppressed(notificationType string) {
	if m == nil || m.suppressed == nil {
		return
	}
	m.suppressed.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

// ObserveRecord counts a notification record write.
func (m *DeliveryMetrics) ObserveRecord(notificationType string, ok bool) {
	if m == nil || m.records == nil {
		return
	}
	m.records.WithLabelValues(normalizeLabel(notificationType), result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
