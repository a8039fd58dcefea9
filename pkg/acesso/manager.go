// Package acesso implements the entitlement core of the VendaFácil platform:
// the single-writer access record per store, the pure access-status evaluator
// and the route-guard decision table consumed by every protected screen.
package acesso

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config holds Manager configuration.
type Config struct {
	// Logger is used for structured logging (default: NoopLogger)
	Logger Logger

	// Metrics is used for tracking entitlement operations (default: NoopMetrics)
	Metrics Metrics

	// TimeSource returns "now". Defaults to time.Now. Overridable in tests.
	TimeSource func() time.Time
}

// Manager is the only writer of access state. It runs with elevated
// privileges relative to per-tenant row-level authorization: the webhook
// endpoint and the admin surface are its only intended callers on the write
// path. Read methods are safe for every authenticated request.
type Manager struct {
	storage Storage
	logger  Logger
	metrics Metrics
	now     func() time.Time
}

// NewManager creates a new entitlement manager.
func NewManager(storage Storage, config Config) (*Manager, error) {
	if storage == nil {
		return nil, ErrStorageUnavailable
	}

	logger := config.Logger
	if logger == nil {
		logger = &NoopLogger{}
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = &NoopMetrics{}
	}
	now := config.TimeSource
	if now == nil {
		now = time.Now
	}

	return &Manager{
		storage: storage,
		logger:  logger,
		metrics: metrics,
		now:     now,
	}, nil
}

// GrantAccess overwrites the store's entitlement with a fresh window computed
// from "now". A renewal resets the expiry window, it does not add to the
// remaining time. Plans with a zero duration never expire.
func (m *Manager) GrantAccess(ctx context.Context, storeID string, plan ResolvedPlan, origin Origin) (*StoreAccess, error) {
	if storeID == "" {
		return nil, ErrInvalidStoreID
	}

	now := m.now().UTC()
	access := &StoreAccess{
		StoreID:     storeID,
		PlanName:    plan.PlanName,
		PlanType:    plan.PlanType,
		AccessStart: now,
		Status:      StateAtivo,
		Origin:      origin,
		Renewable:   true,
		UpdatedAt:   now,
	}
	if plan.DurationDays > 0 {
		end := now.AddDate(0, 0, plan.DurationDays)
		access.AccessEnd = &end
	}

	if err := m.storage.UpsertStoreAccess(ctx, access); err != nil {
		return nil, fmt.Errorf("failed to grant access: %w", err)
	}

	m.metrics.RecordAccessGrant(string(origin), string(plan.PlanType))
	m.logger.Info("access granted",
		Field{Key: "store_id", Value: storeID},
		Field{Key: "plano_tipo", Value: string(plan.PlanType)},
		Field{Key: "origem", Value: string(origin)},
	)
	return access, nil
}

// RevokeAccess blocks the store's entitlement. The expiry timestamp is left
// untouched as a historical record of when access would have ended. Revoking
// a store that was never granted access still writes a blocked row, so the
// lockout holds and the revocation is visible.
func (m *Manager) RevokeAccess(ctx context.Context, storeID string) error {
	if storeID == "" {
		return ErrInvalidStoreID
	}

	now := m.now().UTC()
	access, err := m.storage.GetStoreAccess(ctx, storeID)
	if errors.Is(err, ErrAccessNotFound) {
		access = &StoreAccess{
			StoreID:     storeID,
			AccessStart: now,
		}
	} else if err != nil {
		return fmt.Errorf("failed to load access for revocation: %w", err)
	}

	access.Status = StateBloqueado
	access.Renewable = false
	access.UpdatedAt = now

	if err := m.storage.UpsertStoreAccess(ctx, access); err != nil {
		return fmt.Errorf("failed to revoke access: %w", err)
	}

	m.metrics.RecordAccessRevoke(string(access.Origin))
	m.logger.Info("access revoked", Field{Key: "store_id", Value: storeID})
	return nil
}

// AdminGrantAccess is the manual override used by platform operators. It goes
// through the same write path as the webhook. Verifying that the caller is an
// administrator is the calling surface's responsibility, not this method's.
func (m *Manager) AdminGrantAccess(ctx context.Context, storeID string, planType PlanType, durationDays int, renewable bool) (*StoreAccess, error) {
	plan := PlanForType(planType)
	if durationDays > 0 {
		plan.DurationDays = durationDays
	}

	access, err := m.GrantAccess(ctx, storeID, plan, OriginAdmin)
	if err != nil {
		return nil, err
	}

	if !renewable {
		access.Renewable = false
		access.UpdatedAt = m.now().UTC()
		if err := m.storage.UpsertStoreAccess(ctx, access); err != nil {
			return nil, fmt.Errorf("failed to persist admin grant: %w", err)
		}
	}
	return access, nil
}

// GetAccessStatus fetches the store's entitlement and evaluates it against
// the current time. A missing record is not an error: it evaluates to a
// denied status with its own message. Storage failures propagate, because an
// unreadable entitlement must never be interpreted as access granted.
func (m *Manager) GetAccessStatus(ctx context.Context, storeID string) (*AccessStatus, error) {
	if storeID == "" {
		return nil, ErrInvalidStoreID
	}

	access, err := m.storage.GetStoreAccess(ctx, storeID)
	if err != nil && !errors.Is(err, ErrAccessNotFound) {
		m.metrics.RecordAccessCheck("error")
		return nil, fmt.Errorf("failed to get store access: %w", err)
	}

	status := Evaluate(access, m.now().UTC())
	m.metrics.RecordAccessCheck(checkResult(status.Granted))
	return &status, nil
}

// GetStoreAccess exposes the raw stored record, for the admin area and for
// diagnostics. Access decisions must go through GetAccessStatus.
func (m *Manager) GetStoreAccess(ctx context.Context, storeID string) (*StoreAccess, error) {
	if storeID == "" {
		return nil, ErrInvalidStoreID
	}
	return m.storage.GetStoreAccess(ctx, storeID)
}

// RecordEvent appends one audit record to the event log, stamping CreatedAt.
func (m *Manager) RecordEvent(ctx context.Context, event *SubscriptionEvent) error {
	if event == nil {
		return fmt.Errorf("invalid event")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = m.now().UTC()
	}
	return m.storage.RecordEvent(ctx, event)
}

// HasProcessedEvent reports whether this provider event was already handled.
// Events without an ID always report false and are processed unconditionally;
// the storage uniqueness constraint remains the safety net for races on
// events that do carry an ID.
func (m *Manager) HasProcessedEvent(ctx context.Context, provider, eventID string) (bool, error) {
	if eventID == "" {
		return false, nil
	}
	return m.storage.HasProcessedEvent(ctx, provider, eventID)
}

func checkResult(granted bool) string {
	if granted {
		return "granted"
	}
	return "denied"
}
