package hotmart

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vendafacil/goacesso/pkg/acesso"
	"github.com/vendafacil/goacesso/pkg/billing"
	"github.com/vendafacil/goacesso/pkg/billing/internal"
)

// webhookPayload is the subset of the Hotmart delivery we act on. Everything
// else rides along untouched in the raw body stored with the event.
type webhookPayload struct {
	ID    string      `json:"id"`
	Event string      `json:"event"`
	Data  payloadData `json:"data"`
}

type payloadData struct {
	Purchase     *purchaseData     `json:"purchase,omitempty"`
	Subscription *subscriptionData `json:"subscription,omitempty"`
}

type purchaseData struct {
	Transaction       string `json:"transaction,omitempty"`
	ExternalReference string `json:"external_reference,omitempty"`
}

type subscriptionData struct {
	SubscriberCode    string `json:"subscriber_code,omitempty"`
	ExternalReference string `json:"external_reference,omitempty"`
}

// externalReference returns the correlation string, preferring the purchase
// block; subscription-lifecycle events carry it on the subscription instead.
func (p *webhookPayload) externalReference() string {
	if p.Data.Purchase != nil && p.Data.Purchase.ExternalReference != "" {
		return p.Data.Purchase.ExternalReference
	}
	if p.Data.Subscription != nil {
		return p.Data.Subscription.ExternalReference
	}
	return ""
}

// webhookResponse is what Hotmart sees. Success is true for every handled
// delivery, including internal errors: once the event is durably logged it is
// considered handled, and recovery happens by re-driving from the event log,
// never by provider retries.
type webhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (p *Provider) handleWebhook(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	setSecurityHeaders(w)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Signature failures are rejected before anything is logged: no event id
	// is trusted yet.
	if len(p.secret) > 0 {
		token := strings.TrimSpace(r.Header.Get(hottokHeader))
		if subtle.ConstantTimeCompare([]byte(token), p.secret) != 1 {
			p.metrics.RecordWebhookError(providerName, "auth_failed")
			_ = internal.WriteJSON(w, http.StatusUnauthorized, webhookResponse{Success: false, Message: "assinatura inválida"})
			return
		}
	}

	body, err := internal.ReadBodyStrict(w, r, maxBodyBytes)
	if err != nil {
		if errors.Is(err, internal.ErrPayloadTooLarge) {
			p.metrics.RecordWebhookError(providerName, "payload_too_large")
			_ = internal.WriteJSON(w, http.StatusRequestEntityTooLarge, webhookResponse{Success: false, Message: "payload muito grande"})
			return
		}
		p.metrics.RecordWebhookError(providerName, "invalid_payload")
		_ = internal.WriteJSON(w, http.StatusBadRequest, webhookResponse{Success: false, Message: "corpo da requisição inválido"})
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		p.metrics.RecordWebhookError(providerName, "invalid_payload")
		_ = internal.WriteJSON(w, http.StatusBadRequest, webhookResponse{Success: false, Message: "JSON inválido"})
		return
	}

	eventType := strings.TrimSpace(payload.Event)
	if eventType == "" {
		eventType = "UNKNOWN"
	}
	payload.Event = eventType

	resp, status := p.safeProcess(r.Context(), &payload, body)
	_ = internal.WriteJSON(w, http.StatusOK, resp)

	p.metrics.RecordWebhookEvent(providerName, eventType, webhookStatusLabel(status))
	p.metrics.RecordWebhookProcessingDuration(providerName, eventType, time.Since(startTime))
}

// safeProcess runs the dispatch under a recover boundary. A panic anywhere in
// processing is logged as error_exception and still answered with success:
// Hotmart's retry semantics are untrusted, and retrying a local bug would
// only amplify duplicate side effects.
func (p *Provider) safeProcess(ctx context.Context, payload *webhookPayload, raw []byte) (resp webhookResponse, status acesso.EventStatus) {
	defer func() {
		if rec := recover(); rec != nil {
			status = acesso.EventErrorException
			p.logEvent(ctx, &acesso.SubscriptionEvent{
				Provider:  providerName,
				EventType: payload.Event,
				EventID:   payload.ID,
				Status:    acesso.EventErrorException,
				Payload:   payloadWithDetail(raw, fmt.Sprintf("panic: %v", rec)),
			})
			resp = webhookResponse{Success: true, Message: "evento registrado com erro interno"}
		}
	}()
	return p.processEvent(ctx, payload, raw)
}

func (p *Provider) processEvent(ctx context.Context, payload *webhookPayload, raw []byte) (webhookResponse, acesso.EventStatus) {
	// Idempotency fast path. The unique index on (provider, event_id) is the
	// real guarantee under concurrent deliveries; a read failure here only
	// degrades to processing, never to dropping the event.
	processed, err := p.manager.HasProcessedEvent(ctx, providerName, payload.ID)
	if err != nil {
		p.logger.Warn("idempotency check failed, processing anyway",
			acesso.Field{Key: "event_id", Value: payload.ID},
			acesso.Field{Key: "error", Value: err.Error()},
		)
	}
	if processed {
		return webhookResponse{Success: true, Message: "evento já processado"}, ""
	}

	event := &acesso.SubscriptionEvent{
		Provider:  providerName,
		EventType: payload.Event,
		EventID:   payload.ID,
		Payload:   json.RawMessage(raw),
	}

	switch {
	case grantingEvents[payload.Event]:
		return p.processGrant(ctx, payload, event, raw)
	case revokingEvents[payload.Event]:
		return p.processRevoke(ctx, payload, event, raw)
	default:
		event.Status = acesso.EventLoggedForAnalytics
		if ref, err := ParseReference(payload.externalReference()); err == nil {
			event.StoreID, event.PlanID, event.UserID = ref.StoreID, ref.PlanID, ref.UserID
		}
		p.logEvent(ctx, event)
		return webhookResponse{Success: true, Message: "evento registrado"}, event.Status
	}
}

func (p *Provider) processGrant(ctx context.Context, payload *webhookPayload, event *acesso.SubscriptionEvent, raw []byte) (webhookResponse, acesso.EventStatus) {
	ref, err := ParseReference(payload.externalReference())
	if err != nil {
		event.Status = referenceErrorStatus(err)
		event.Payload = payloadWithDetail(raw, err.Error())
		p.logEvent(ctx, event)
		return webhookResponse{Success: true, Message: "referência externa ausente ou inválida"}, event.Status
	}
	event.StoreID, event.PlanID, event.UserID = ref.StoreID, ref.PlanID, ref.UserID

	plan, err := acesso.ResolvePlan(ref.PlanID)
	if err != nil {
		event.Status = acesso.EventErrorUnknownPlan
		event.Payload = payloadWithDetail(raw, err.Error())
		p.logEvent(ctx, event)
		return webhookResponse{Success: true, Message: "plano não reconhecido"}, event.Status
	}

	if _, err := p.manager.GrantAccess(ctx, ref.StoreID, plan, acesso.OriginHotmart); err != nil {
		event.Status = acesso.EventErrorDBUpdate
		event.Payload = payloadWithDetail(raw, err.Error())
		p.logEvent(ctx, event)
		return webhookResponse{Success: true, Message: "falha ao atualizar acesso"}, event.Status
	}

	event.Status = acesso.EventProcessedAccessGranted
	p.logEvent(ctx, event)
	p.invokeCallback(ctx, event, plan.PlanType)
	return webhookResponse{Success: true, Message: "acesso liberado"}, event.Status
}

func (p *Provider) processRevoke(ctx context.Context, payload *webhookPayload, event *acesso.SubscriptionEvent, raw []byte) (webhookResponse, acesso.EventStatus) {
	ref, err := ParseReference(payload.externalReference())
	if err != nil {
		event.Status = referenceErrorStatus(err)
		event.Payload = payloadWithDetail(raw, err.Error())
		p.logEvent(ctx, event)
		return webhookResponse{Success: true, Message: "referência externa ausente ou inválida"}, event.Status
	}
	event.StoreID, event.PlanID, event.UserID = ref.StoreID, ref.PlanID, ref.UserID

	if err := p.manager.RevokeAccess(ctx, ref.StoreID); err != nil {
		event.Status = acesso.EventErrorDBUpdate
		event.Payload = payloadWithDetail(raw, err.Error())
		p.logEvent(ctx, event)
		return webhookResponse{Success: true, Message: "falha ao revogar acesso"}, event.Status
	}

	event.Status = acesso.EventProcessedAccessRevoked
	p.logEvent(ctx, event)
	p.invokeCallback(ctx, event, "")
	return webhookResponse{Success: true, Message: "acesso revogado"}, event.Status
}

// logEvent appends the audit record. Failures never surface to the provider:
// they are logged on the side channel and swallowed. A duplicate-key failure
// means a concurrent delivery of the same event won the race.
func (p *Provider) logEvent(ctx context.Context, event *acesso.SubscriptionEvent) {
	if err := p.manager.RecordEvent(ctx, event); err != nil {
		if errors.Is(err, acesso.ErrDuplicateEvent) {
			p.logger.Warn("duplicate event record, concurrent delivery",
				acesso.Field{Key: "event_id", Value: event.EventID},
			)
		} else {
			p.logger.Error("failed to record subscription event",
				acesso.Field{Key: "event_id", Value: event.EventID},
				acesso.Field{Key: "event_type", Value: event.EventType},
				acesso.Field{Key: "error", Value: err.Error()},
			)
		}
	}
	p.metrics.RecordEventOutcome(providerName, string(event.Status))
}

func (p *Provider) invokeCallback(ctx context.Context, event *acesso.SubscriptionEvent, planType acesso.PlanType) {
	if p.callback == nil {
		return
	}
	err := p.callback(ctx, billing.WebhookEvent{
		Provider:   providerName,
		EventID:    event.EventID,
		EventType:  event.EventType,
		StoreID:    event.StoreID,
		PlanType:   planType,
		Status:     event.Status,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		p.logger.Error("webhook callback failed",
			acesso.Field{Key: "event_id", Value: event.EventID},
			acesso.Field{Key: "error", Value: err.Error()},
		)
	}
}

func referenceErrorStatus(err error) acesso.EventStatus {
	if errors.Is(err, billing.ErrMissingReference) {
		return acesso.EventErrorMissingRef
	}
	return acesso.EventErrorInvalidRef
}

// payloadWithDetail merges a diagnostic message into the stored payload so
// operators can re-drive error rows without chasing logs.
func payloadWithDetail(raw []byte, detail string) json.RawMessage {
	wrapped, err := json.Marshal(struct {
		Detail  string          `json:"detail"`
		Payload json.RawMessage `json:"payload"`
	}{Detail: detail, Payload: json.RawMessage(raw)})
	if err != nil {
		return json.RawMessage(raw)
	}
	return wrapped
}

func webhookStatusLabel(status acesso.EventStatus) string {
	switch status {
	case acesso.EventProcessedAccessGranted, acesso.EventProcessedAccessRevoked,
		acesso.EventLoggedForAnalytics, "":
		return "success"
	default:
		return "error"
	}
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
