package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v83"

	"github.com/vendafacil/goacesso/pkg/acesso"
	"github.com/vendafacil/goacesso/pkg/billing"
	"github.com/vendafacil/goacesso/pkg/billing/internal"
)

func (p *Provider) handleWebhook(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := internal.ReadBodyStrict(w, r, 256*1024)
	if err != nil {
		if errors.Is(err, internal.ErrPayloadTooLarge) {
			p.metrics.RecordWebhookError(providerName, "payload_too_large")
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		} else {
			p.metrics.RecordWebhookError(providerName, "invalid_payload")
			http.Error(w, "invalid payload", http.StatusBadRequest)
		}
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	event, err := stripe.ConstructEvent(body, sig, string(p.webhookSecret))
	if err != nil {
		p.metrics.RecordWebhookError(providerName, "auth_failed")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	eventType := string(event.Type)
	if eventType == "" {
		eventType = "UNKNOWN"
	}

	status := p.processEvent(r.Context(), &event, body)
	_ = internal.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	p.metrics.RecordWebhookEvent(providerName, eventType, statusLabel(status))
	p.metrics.RecordWebhookProcessingDuration(providerName, eventType, time.Since(startTime))
}

func (p *Provider) processEvent(ctx context.Context, event *stripe.Event, raw []byte) acesso.EventStatus {
	processed, err := p.manager.HasProcessedEvent(ctx, providerName, event.ID)
	if err != nil {
		p.logger.Warn("idempotency check failed, processing anyway",
			acesso.Field{Key: "event_id", Value: event.ID},
			acesso.Field{Key: "error", Value: err.Error()},
		)
	}
	if processed {
		return ""
	}

	record := &acesso.SubscriptionEvent{
		Provider:  providerName,
		EventType: string(event.Type),
		EventID:   event.ID,
		Payload:   json.RawMessage(raw),
	}

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated", "invoice.payment_succeeded":
		p.processSubscriptionChange(ctx, event, record)
	case "customer.subscription.deleted", "charge.refunded", "charge.dispute.created":
		p.processRevocation(ctx, event, record)
	default:
		record.Status = acesso.EventLoggedForAnalytics
	}

	p.logEvent(ctx, record)
	return record.Status
}

func (p *Provider) processSubscriptionChange(ctx context.Context, event *stripe.Event, record *acesso.SubscriptionEvent) {
	sub, storeID, err := subscriptionFromEvent(event)
	if err != nil {
		record.Status = acesso.EventErrorMissingRef
		return
	}
	record.StoreID = storeID

	if sub.Status != subscriptionStatusActive && sub.Status != "trialing" {
		record.Status = acesso.EventLoggedForAnalytics
		return
	}

	plan := acesso.TrialPlan()
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		record.PlanID = sub.Items.Data[0].Price.ID
		plan = p.MapPriceToPlan(sub.Items.Data[0].Price.ID)
	}

	if _, err := p.manager.GrantAccess(ctx, storeID, plan, acesso.OriginStripe); err != nil {
		record.Status = acesso.EventErrorDBUpdate
		return
	}
	record.Status = acesso.EventProcessedAccessGranted
	p.invokeCallback(ctx, record, plan.PlanType)
}

func (p *Provider) processRevocation(ctx context.Context, event *stripe.Event, record *acesso.SubscriptionEvent) {
	_, storeID, err := subscriptionFromEvent(event)
	if err != nil {
		record.Status = acesso.EventErrorMissingRef
		return
	}
	record.StoreID = storeID

	if err := p.manager.RevokeAccess(ctx, storeID); err != nil {
		record.Status = acesso.EventErrorDBUpdate
		return
	}
	record.Status = acesso.EventProcessedAccessRevoked
	p.invokeCallback(ctx, record, "")
}

// subscriptionFromEvent unmarshals the event object and extracts the store
// correlation from subscription metadata.
func subscriptionFromEvent(event *stripe.Event) (*stripe.Subscription, string, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, "", billing.ErrInvalidWebhookPayload
	}
	storeID := ""
	if sub.Metadata != nil {
		storeID = sub.Metadata[storeIDMetadataKey]
	}
	if storeID == "" {
		return nil, "", billing.ErrMissingReference
	}
	return &sub, storeID, nil
}

func (p *Provider) logEvent(ctx context.Context, record *acesso.SubscriptionEvent) {
	if err := p.manager.RecordEvent(ctx, record); err != nil && !errors.Is(err, acesso.ErrDuplicateEvent) {
		p.logger.Error("failed to record subscription event",
			acesso.Field{Key: "event_id", Value: record.EventID},
			acesso.Field{Key: "error", Value: err.Error()},
		)
	}
	p.metrics.RecordEventOutcome(providerName, string(record.Status))
}

func (p *Provider) invokeCallback(ctx context.Context, record *acesso.SubscriptionEvent, planType acesso.PlanType) {
	if p.callback == nil {
		return
	}
	err := p.callback(ctx, billing.WebhookEvent{
		Provider:   providerName,
		EventID:    record.EventID,
		EventType:  record.EventType,
		StoreID:    record.StoreID,
		PlanType:   planType,
		Status:     record.Status,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		p.logger.Error("webhook callback failed",
			acesso.Field{Key: "event_id", Value: record.EventID},
			acesso.Field{Key: "error", Value: err.Error()},
		)
	}
}

func statusLabel(status acesso.EventStatus) string {
	switch status {
	case acesso.EventProcessedAccessGranted, acesso.EventProcessedAccessRevoked,
		acesso.EventLoggedForAnalytics, "":
		return "success"
	default:
		return "error"
	}
}
