package billing

import (
	"context"
	"time"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

// WebhookEvent describes one processed billing notification. It is passed to
// the WebhookCallback after the entitlement has been updated in storage.
type WebhookEvent struct {
	// Provider is the billing provider name ("hotmart", "stripe")
	Provider string

	// EventID is the provider-assigned unique event identifier
	EventID string

	// EventType is the provider-specific event type
	EventType string

	// StoreID is the internal tenant identifier
	StoreID string

	// PlanType is the canonical plan after the update (empty on revocation)
	PlanType acesso.PlanType

	// Status is the outcome recorded in the event log
	Status acesso.EventStatus

	// OccurredAt is when the webhook was processed
	OccurredAt time.Time
}

// WebhookCallback is invoked after a webhook event has been fully handled.
type WebhookCallback func(ctx context.Context, event WebhookEvent) error
