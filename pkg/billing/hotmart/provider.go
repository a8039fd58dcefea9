// Package hotmart implements the billing.Provider interface for Hotmart,
// the primary payment provider of the platform. Webhook deliveries drive the
// entitlement state machine: granting events open a fresh access window,
// revoking events block the store, everything else is logged for analytics.
package hotmart

import (
	"net/http"
	"strings"
	"time"

	"github.com/vendafacil/goacesso/pkg/acesso"
	"github.com/vendafacil/goacesso/pkg/billing"
	"github.com/vendafacil/goacesso/pkg/billing/internal"
)

const (
	providerName = "hotmart"

	// hottokHeader carries the shared secret Hotmart sends with every delivery.
	hottokHeader = "X-Hotmart-Hottok"

	maxBodyBytes             = 256 * 1024
	defaultRateLimitWindow   = time.Minute
	defaultRateLimitRequests = 100
)

// Event types that open or refresh an access window.
var grantingEvents = map[string]bool{
	"PURCHASE_APPROVED": true,
	"PURCHASE_COMPLETE": true,
	"SWITCH_PLAN":       true,
}

// Event types that block the store.
var revokingEvents = map[string]bool{
	"PURCHASE_CANCELED":         true,
	"PURCHASE_REFUNDED":         true,
	"PURCHASE_CHARGEBACK":       true,
	"SUBSCRIPTION_CANCELED":     true,
	"SUBSCRIPTION_CANCELLATION": true,
}

// Provider implements the billing.Provider interface for Hotmart.
type Provider struct {
	manager     *acesso.Manager
	logger      acesso.Logger
	metrics     billing.Metrics
	rateLimiter *internal.RateLimiter
	secret      []byte
	callback    billing.WebhookCallback
}

// NewProvider creates a new Hotmart billing provider.
func NewProvider(config billing.Config) (*Provider, error) {
	if config.Manager == nil {
		return nil, billing.ErrProviderNotConfigured
	}

	logger := config.Logger
	if logger == nil {
		logger = &acesso.NoopLogger{}
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = &billing.NoopMetrics{}
	}

	secret := []byte(strings.TrimSpace(config.WebhookSecret))
	if len(secret) == 0 {
		logger.Warn("hotmart webhook secret not configured, accepting unauthenticated deliveries")
	}

	return &Provider{
		manager:     config.Manager,
		logger:      logger,
		metrics:     metrics,
		rateLimiter: internal.NewRateLimiter(defaultRateLimitRequests, defaultRateLimitWindow),
		secret:      secret,
		callback:    config.WebhookCallback,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// WebhookHandler returns the HTTP handler for Hotmart webhooks.
func (p *Provider) WebhookHandler() http.Handler {
	return p.rateLimiter.Middleware(http.HandlerFunc(p.handleWebhook))
}
