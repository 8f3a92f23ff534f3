package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestAvailabilityMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAvailabilityMetrics(reg)
	m.ObserveQuery("ok")
	m.ObserveQuery("ok")
	m.ObserveQuery("invalid_date")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var found *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "cucina_availability_queries_total" {
			found = f
		}
	}
	if found == nil {
		t.Fatal("availability counter not registered")
	}
	total := 0.0
	for _, metric := range found.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	if total != 3 {
		t.Errorf("expected 3 observations, got %v", total)
	}
}

func TestBookingMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveCreated("pending")
	m.ObserveConflict()
}

func TestMetricsNilSafe(t *testing.T) {
	var a *AvailabilityMetrics
	a.ObserveQuery("ok")

	var b *BookingMetrics
	b.ObserveCreated("pending")
	b.ObserveConflict()

	var m *MessagingMetrics
	m.ObserveInbound("ok")
	m.ObserveOutbound("queued")
	m.ObserveWebhookLatency("ok", 0.1)
}
