package prommetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestWebhookMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordWebhookEvent("hotmart", "PURCHASE_APPROVED", "success")
	metrics.RecordWebhookError("hotmart", "auth_failed")
	metrics.RecordEventOutcome("hotmart", "processed_access_granted")
	metrics.RecordWebhookProcessingDuration("hotmart", "PURCHASE_APPROVED", 42*time.Millisecond)

	events := gatherFamily(t, reg, "test_billing_webhook_events_total")
	if events == nil || events.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Error("webhook event counter not recorded")
	}

	errs := gatherFamily(t, reg, "test_billing_webhook_errors_total")
	if errs == nil || errs.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Error("webhook error counter not recorded")
	}

	outcomes := gatherFamily(t, reg, "test_billing_event_outcomes_total")
	if outcomes == nil || outcomes.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Error("event outcome counter not recorded")
	}

	durations := gatherFamily(t, reg, "test_billing_webhook_processing_duration_seconds")
	if durations == nil {
		t.Fatal("duration histogram not registered")
	}
	hist := durations.GetMetric()[0].GetHistogram()
	if hist.GetSampleCount() != 1 {
		t.Errorf("histogram sample count = %d, want 1", hist.GetSampleCount())
	}
	if got := hist.GetSampleSum(); got < 0.04 || got > 0.05 {
		t.Errorf("histogram sample sum = %v, want ~0.042", got)
	}
}
