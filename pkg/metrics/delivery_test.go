package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestDeliveryMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDeliveryMetrics(reg)
	m.ObserveSend("sendgrid", "new_message", true, 120*time.Millisecond)
	m.ObserveSend("sendgrid", "new_message", false, 80*time.Millisecond)
	m.IncSuppressed("product_interest")
	m.ObserveRecord("transaction_update", true)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	checks := []struct {
		name   string
		labels map[string]string
	}{
		{"email_sends_total", map[string]string{"provider": "sendgrid", "type": "new_message", "result": ResultSuccess}},
		{"email_sends_total", map[string]string{"provider": "sendgrid", "type": "new_message", "result": ResultFailure}},
		{"email_suppressed_total", map[string]string{"type": "product_interest"}},
		{"notification_records_total", map[string]string{"type": "transaction_update", "result": ResultSuccess}},
	}
	for _, check := range checks {
		got, err := fetchCounterValue(mfs, check.name, check.labels)
		if err != nil {
			t.Fatalf("fetch %s: %v", check.name, err)
		}
		if got != 1 {
			t.Fatalf("expected %s%v=1, got %f", check.name, check.labels, got)
		}
	}

	if got, err := fetchHistogramSum(mfs, "email_send_duration_seconds", map[string]string{"provider": "sendgrid"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestDeliveryMetricsNilSafe(t *testing.T) {
	var nilMetrics *DeliveryMetrics
	nilMetrics.ObserveSend("ses", "", true, time.Second)
	nilMetrics.IncSuppressed("x")

	noop := NewDeliveryMetrics(nil)
	noop.ObserveRecord("x", false)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
