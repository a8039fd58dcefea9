package billing

import (
	"net/http"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

// Config defines the standard configuration all providers should accept.
type Config struct {
	// Manager is the entitlement manager that providers write through.
	Manager *acesso.Manager

	// WebhookSecret is the shared secret used to verify incoming webhook
	// requests (e.g. the Hotmart hottok header). When empty the provider
	// accepts unauthenticated deliveries with a warning: an explicit
	// fail-open policy for local and staging environments.
	WebhookSecret string

	// PlanMapping maps provider price/offer identifiers to canonical plan
	// codes. Used by providers whose payloads do not carry the plan id in
	// the external reference (e.g. Stripe price IDs).
	PlanMapping map[string]acesso.PlanType

	// HTTPClient is an optional HTTP client for outbound provider API calls.
	// If nil, a default client with a 10s timeout is used.
	HTTPClient *http.Client

	// Logger is used for structured logging (default: NoopLogger).
	Logger acesso.Logger

	// Metrics is an optional metrics collector for webhook operations.
	// If nil, metrics are silently ignored (no-op).
	Metrics Metrics

	// WebhookCallback, when set, is invoked after an entitlement mutation has
	// been durably applied. Failures are logged and do not fail the webhook.
	WebhookCallback WebhookCallback
}
