package prommetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matchLabels(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(m *dto.Metric, labels map[string]string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordAccessCheck("granted")
	metrics.RecordAccessCheck("granted")
	metrics.RecordAccessCheck("denied")
	metrics.RecordAccessGrant("hotmart", "mensal")
	metrics.RecordAccessRevoke("hotmart")
	metrics.RecordGuardDecision("redirect")

	if got := counterValue(t, reg, "test_acesso_access_checks_total", map[string]string{"result": "granted"}); got != 2 {
		t.Errorf("granted checks = %v, want 2", got)
	}
	if got := counterValue(t, reg, "test_acesso_access_checks_total", map[string]string{"result": "denied"}); got != 1 {
		t.Errorf("denied checks = %v, want 1", got)
	}
	if got := counterValue(t, reg, "test_acesso_access_grants_total", map[string]string{"origin": "hotmart", "plan_type": "mensal"}); got != 1 {
		t.Errorf("grants = %v, want 1", got)
	}
	if got := counterValue(t, reg, "test_acesso_access_revokes_total", map[string]string{"origin": "hotmart"}); got != 1 {
		t.Errorf("revokes = %v, want 1", got)
	}
	if got := counterValue(t, reg, "test_acesso_guard_decisions_total", map[string]string{"outcome": "redirect"}); got != 1 {
		t.Errorf("guard decisions = %v, want 1", got)
	}
}
