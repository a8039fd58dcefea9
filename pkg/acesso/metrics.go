package acesso

// Metrics defines the interface for tracking entitlement operations.
// All methods are optional - the Manager gracefully handles nil metrics.
type Metrics interface {
	// RecordAccessCheck records one access-status evaluation.
	// result: "granted", "denied" or "error"
	RecordAccessCheck(result string)

	// RecordAccessGrant records an entitlement grant.
	RecordAccessGrant(origin, planType string)

	// RecordAccessRevoke records an entitlement revocation.
	RecordAccessRevoke(origin string)

	// RecordGuardDecision records a route-guard outcome.
	// outcome: "proceed", "redirect", "unauthorized" or "error"
	RecordGuardDecision(outcome string)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordAccessCheck(_ string)    {}
func (n *NoopMetrics) RecordAccessGrant(_, _ string) {}
func (n *NoopMetrics) RecordAccessRevoke(_ string)   {}
func (n *NoopMetrics) RecordGuardDecision(_ string)  {}
