package prommetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements acesso.Metrics using Prometheus.
type Metrics struct {
	accessChecksTotal   *prometheus.CounterVec
	accessGrantsTotal   *prometheus.CounterVec
	accessRevokesTotal  *prometheus.CounterVec
	guardDecisionsTotal *prometheus.CounterVec
}

// NewMetrics creates a new Prometheus metrics implementation for the
// entitlement manager.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		accessChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acesso",
			Name:      "access_checks_total",
			Help:      "Total number of access-status evaluations.",
		}, []string{"result"}),

		accessGrantsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acesso",
			Name:      "access_grants_total",
			Help:      "Total number of entitlement grants.",
		}, []string{"origin", "plan_type"}),

		accessRevokesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acesso",
			Name:      "access_revokes_total",
			Help:      "Total number of entitlement revocations.",
		}, []string{"origin"}),

		guardDecisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acesso",
			Name:      "guard_decisions_total",
			Help:      "Total number of route-guard decisions.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) RecordAccessCheck(result string) {
	m.accessChecksTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordAccessGrant(origin, planType string) {
	m.accessGrantsTotal.WithLabelValues(origin, planType).Inc()
}

func (m *Metrics) RecordAccessRevoke(origin string) {
	m.accessRevokesTotal.WithLabelValues(origin).Inc()
}

func (m *Metrics) RecordGuardDecision(outcome string) {
	m.guardDecisionsTotal.WithLabelValues(outcome).Inc()
}
