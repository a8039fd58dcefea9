package billing

import "net/http"

// Provider is the generic interface that any billing backend must implement.
// This allows the application to add a second payment provider with zero
// changes to the entitlement core.
type Provider interface {
	// Name returns the provider name (e.g., "hotmart", "stripe")
	Name() string

	// WebhookHandler returns the HTTP handler that processes real-time events.
	// The implementation handles validation, parsing, idempotency and
	// entitlement updates internally.
	WebhookHandler() http.Handler
}
