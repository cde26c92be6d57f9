package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestCheckoutMetricsObserve(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewCheckoutMetrics(registry)

	m.Observe("success", 120*time.Millisecond)
	m.Observe("success", 80*time.Millisecond)
	m.Observe("CONFLICT", time.Millisecond)

	families, err := registry.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "checkout_attempts_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			counts[labelValue(metric, "result")] = metric.GetCounter().GetValue()
		}
	}
	require.Equal(t, float64(2), counts["success"])
	require.Equal(t, float64(1), counts["conflict"], "labels must be normalized to lower case")
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *CheckoutMetrics
	m.Observe("success", time.Second)

	unregistered := NewCheckoutMetrics(nil)
	unregistered.Observe("success", time.Second)
}

func labelValue(metric *dto.Metric, name string) string {
	for _, pair := range metric.GetLabel() {
		if pair.GetName() == name {
			return pair.GetValue()
		}
	}
	return ""
}
