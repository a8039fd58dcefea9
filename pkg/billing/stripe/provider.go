// Package stripe implements the billing.Provider interface for Stripe as a
// secondary payment provider. Subscription lifecycle events map to the same
// grant/revoke operations the Hotmart path uses; the store is correlated via
// the subscription's "store_id" metadata rather than an external reference.
package stripe

import (
	"net/http"
	"strings"
	"time"

	"github.com/vendafacil/goacesso/pkg/acesso"
	"github.com/vendafacil/goacesso/pkg/billing"
	"github.com/vendafacil/goacesso/pkg/billing/internal"
)

const (
	providerName             = "stripe"
	defaultRateLimitWindow   = time.Minute
	defaultRateLimitRequests = 100
	subscriptionStatusActive = "active"

	// storeIDMetadataKey is set on the subscription at checkout time.
	storeIDMetadataKey = "store_id"
)

// Config extends billing.Config with Stripe-specific options.
type Config struct {
	billing.Config

	// StripeWebhookSecret is the whsec_ signing secret for ConstructEvent.
	StripeWebhookSecret string
}

// Provider implements the billing.Provider interface for Stripe.
type Provider struct {
	manager       *acesso.Manager
	logger        acesso.Logger
	metrics       billing.Metrics
	rateLimiter   *internal.RateLimiter
	planMapping   map[string]acesso.PlanType // price ID -> canonical plan
	webhookSecret []byte
	callback      billing.WebhookCallback
}

// NewProvider creates a new Stripe billing provider.
func NewProvider(config Config) (*Provider, error) {
	if config.Manager == nil {
		return nil, billing.ErrProviderNotConfigured
	}

	webhookSecret := []byte(strings.TrimSpace(config.StripeWebhookSecret))
	if len(webhookSecret) == 0 {
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

	planMapping := make(map[string]acesso.PlanType)
	for k, v := range config.PlanMapping {
		planMapping[strings.ToLower(k)] = v
	}

	return &Provider{
		manager:       config.Manager,
		logger:        logger,
		metrics:       metrics,
		rateLimiter:   internal.NewRateLimiter(defaultRateLimitRequests, defaultRateLimitWindow),
		planMapping:   planMapping,
		webhookSecret: webhookSecret,
		callback:      config.WebhookCallback,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// WebhookHandler returns the HTTP handler for Stripe webhooks.
func (p *Provider) WebhookHandler() http.Handler {
	return p.rateLimiter.Middleware(http.HandlerFunc(p.handleWebhook))
}

// MapPriceToPlan maps a Stripe price ID to a canonical plan. Unknown prices
// fall back to the trial window, mirroring the unknown-plan policy of the
// primary provider.
func (p *Provider) MapPriceToPlan(priceID string) acesso.ResolvedPlan {
	if plan, ok := p.planMapping[strings.ToLower(strings.TrimSpace(priceID))]; ok {
		return acesso.PlanForType(plan)
	}
	return acesso.TrialPlan()
}
