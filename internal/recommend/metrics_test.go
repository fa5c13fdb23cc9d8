package recommend

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func counterWithLabel(mf *dto.MetricFamily, name, value string) float64 {
	if mf == nil {
		return 0
	}
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == name && lp.GetValue() == value {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := NewMetrics().Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err := NewMetrics().Register(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestMetrics_RecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	e := New(sampleCatalog(), WithMetrics(m))
	if _, err := e.Recommend(context.Background(), "Java developer"); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if _, err := e.Recommend(context.Background(), ""); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	broken := New(sampleCatalog(), WithMetrics(m))
	broken.docs = nil
	if _, err := broken.Recommend(context.Background(), "Java developer"); err == nil {
		t.Fatal("expected a scoring fault")
	}

	families := gather(t, reg)

	if got := counterWithLabel(families[MetricRecommendations], "outcome", "ok"); got != 2 {
		t.Errorf("expected 2 ok recommendations, got %v", got)
	}
	if got := counterWithLabel(families[MetricRecommendations], "outcome", "fault"); got != 1 {
		t.Errorf("expected 1 faulted recommendation, got %v", got)
	}

	fallbacks := families[MetricRecommendationFallback]
	if fallbacks == nil || fallbacks.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Errorf("expected 1 fallback, got %v", fallbacks)
	}

	records := families[MetricCatalogRecords]
	if records == nil || records.GetMetric()[0].GetGauge().GetValue() != 12 {
		t.Errorf("expected catalog_records 12, got %v", records)
	}

	duration := families[MetricRecommendationDuration]
	if duration == nil || duration.GetMetric()[0].GetHistogram().GetSampleCount() != 3 {
		t.Errorf("expected 3 duration samples, got %v", duration)
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.SetCatalogRecords(3)
	m.observe(nil, 0)
	m.incFallback()
}
