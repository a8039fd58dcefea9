package acesso

import (
	"encoding/json"
	"time"
)

// PlanType is the canonical plan code stored with every entitlement.
type PlanType string

const (
	// PlanTrial is the 7-day evaluation plan granted on onboarding or as a
	// safe fallback when a provider sends an unrecognized plan identifier.
	PlanTrial PlanType = "trial"
	// PlanSemanal is the weekly plan (7 days).
	PlanSemanal PlanType = "semanal"
	// PlanMensal is the monthly plan (30 days).
	PlanMensal PlanType = "mensal"
	// PlanAnual is the yearly plan (365 days).
	PlanAnual PlanType = "anual"
	// PlanVitalicio never expires.
	PlanVitalicio PlanType = "vitalicio"
)

// AccessState is the stored lifecycle state of a store's entitlement.
// Readers must never trust this field alone for access decisions: a row can
// say "ativo" while its expiry is already in the past. Evaluate combines the
// state with wall-clock time.
type AccessState string

const (
	StateAtivo               AccessState = "ativo"
	StateExpirado            AccessState = "expirado"
	StateBloqueado           AccessState = "bloqueado"
	StateAguardandoLiberacao AccessState = "aguardando_liberacao"
)

// Origin records which surface wrote the current entitlement.
type Origin string

const (
	OriginHotmart    Origin = "hotmart"
	OriginStripe     Origin = "stripe"
	OriginAdmin      Origin = "admin"
	OriginOnboarding Origin = "onboarding"
)

// EventStatus classifies the outcome of processing one inbound billing event.
type EventStatus string

const (
	EventProcessedAccessGranted EventStatus = "processed_access_granted"
	EventProcessedAccessRevoked EventStatus = "processed_access_revoked"
	EventLoggedForAnalytics     EventStatus = "logged_for_analytics"
	EventErrorMissingRef        EventStatus = "error_missing_ref"
	EventErrorInvalidRef        EventStatus = "error_invalid_ref"
	EventErrorUnknownPlan       EventStatus = "error_unknown_plan"
	EventErrorDBUpdate          EventStatus = "error_db_update"
	EventErrorException         EventStatus = "error_exception"
)

// StoreAccess is the single current-entitlement record of one store.
// There is at most one row per StoreID; every grant or revocation overwrites
// it. A nil AccessEnd means the entitlement never expires.
type StoreAccess struct {
	StoreID     string      `json:"store_id"`
	PlanName    string      `json:"plano_nome"`
	PlanType    PlanType    `json:"plano_tipo"`
	AccessStart time.Time   `json:"data_inicio_acesso"`
	AccessEnd   *time.Time  `json:"data_fim_acesso,omitempty"`
	Status      AccessState `json:"status_acesso"`
	Origin      Origin      `json:"origem"`
	Renewable   bool        `json:"renovavel"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// AccessStatus is the derived, never-persisted view of a StoreAccess record
// combined with "now". It is recomputed on every evaluation.
type AccessStatus struct {
	Granted   bool       `json:"acesso_liberado"`
	AccessEnd *time.Time `json:"data_fim_acesso,omitempty"`
	PlanName  string     `json:"plano_nome,omitempty"`
	PlanType  PlanType   `json:"plano_tipo,omitempty"`
	Message   string     `json:"mensagem"`
}

// BootstrapStatus classifies an authenticated user for routing purposes.
type BootstrapStatus struct {
	// HasStore is true when the user owns a store.
	HasStore bool `json:"has_store"`
	// IsMember is true when the user is staff of someone else's store.
	IsMember bool `json:"is_member"`
	// IsAdmin is true for platform operators.
	IsAdmin bool `json:"is_admin"`
}

// SubscriptionEvent is the immutable audit record of one inbound billing
// notification. It is written once per webhook call attempt and never
// updated or deleted. EventID is the provider's idempotency key and may be
// empty for malformed payloads.
type SubscriptionEvent struct {
	Provider  string          `json:"provider"`
	EventType string          `json:"event_type"`
	EventID   string          `json:"event_id"`
	StoreID   string          `json:"store_id,omitempty"`
	PlanID    string          `json:"plan_id,omitempty"`
	UserID    string          `json:"user_id,omitempty"`
	Status    EventStatus     `json:"status"`
	Payload   json.RawMessage `json:"raw_payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
