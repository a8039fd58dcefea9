// Package firestore provides a Firestore implementation of the acesso.Storage
// interface, for deployments that keep entitlement state in Google Cloud.
// Event-log idempotency uses document Create on a deterministic ID, so a
// duplicate delivery fails with AlreadyExists atomically.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

// Storage implements acesso.Storage using Google Cloud Firestore
type Storage struct {
	client           *firestore.Client
	accessCollection string
	eventsCollection string
}

// Config holds Firestore storage configuration
type Config struct {
	// AccessCollection is the Firestore collection for store entitlements
	// Default: "store_access"
	AccessCollection string

	// EventsCollection is the Firestore collection for the billing event log
	// Default: "subscription_events"
	EventsCollection string
}

// New creates a new Firestore storage adapter
func New(client *firestore.Client, config Config) (*Storage, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client is required")
	}

	if config.AccessCollection == "" {
		config.AccessCollection = "store_access"
	}
	if config.EventsCollection == "" {
		config.EventsCollection = "subscription_events"
	}

	return &Storage{
		client:           client,
		accessCollection: config.AccessCollection,
		eventsCollection: config.EventsCollection,
	}, nil
}

// GetStoreAccess implements acesso.Storage
func (s *Storage) GetStoreAccess(ctx context.Context, storeID string) (*acesso.StoreAccess, error) {
	snap, err := s.client.Collection(s.accessCollection).Doc(storeID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, acesso.ErrAccessNotFound
		}
		return nil, fmt.Errorf("failed to get store access: %w", err)
	}
	if !snap.Exists() {
		return nil, acesso.ErrAccessNotFound
	}

	data := snap.Data()
	access := &acesso.StoreAccess{
		StoreID:     storeID,
		PlanName:    getString(data, "plano_nome"),
		PlanType:    acesso.PlanType(getString(data, "plano_tipo")),
		AccessStart: getTime(data, "data_inicio_acesso"),
		Status:      acesso.AccessState(getString(data, "status_acesso")),
		Origin:      acesso.Origin(getString(data, "origem")),
		Renewable:   getBool(data, "renovavel"),
		UpdatedAt:   getTime(data, "updated_at"),
	}
	if end, ok := data["data_fim_acesso"].(time.Time); ok && !end.IsZero() {
		access.AccessEnd = &end
	}
	return access, nil
}

// UpsertStoreAccess implements acesso.Storage
func (s *Storage) UpsertStoreAccess(ctx context.Context, access *acesso.StoreAccess) error {
	if access == nil || access.StoreID == "" {
		return fmt.Errorf("invalid store access")
	}

	doc := map[string]interface{}{
		"plano_nome":         access.PlanName,
		"plano_tipo":         string(access.PlanType),
		"data_inicio_acesso": access.AccessStart,
		"status_acesso":      string(access.Status),
		"origem":             string(access.Origin),
		"renovavel":          access.Renewable,
		"updated_at":         time.Now().UTC(),
	}
	if access.AccessEnd != nil {
		doc["data_fim_acesso"] = *access.AccessEnd
	} else {
		doc["data_fim_acesso"] = nil
	}

	_, err := s.client.Collection(s.accessCollection).Doc(access.StoreID).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to upsert store access: %w", err)
	}
	return nil
}

// RecordEvent implements acesso.Storage
func (s *Storage) RecordEvent(ctx context.Context, event *acesso.SubscriptionEvent) error {
	if event == nil {
		return fmt.Errorf("invalid event")
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	doc := map[string]interface{}{
		"provider":    event.Provider,
		"event_type":  event.EventType,
		"event_id":    event.EventID,
		"store_id":    event.StoreID,
		"plan_id":     event.PlanID,
		"user_id":     event.UserID,
		"status":      string(event.Status),
		"raw_payload": string(event.Payload),
		"created_at":  createdAt,
	}

	col := s.client.Collection(s.eventsCollection)
	if event.EventID == "" {
		// No idempotency key: append with a generated document ID.
		if _, _, err := col.Add(ctx, doc); err != nil {
			return fmt.Errorf("failed to record event: %w", err)
		}
		return nil
	}

	_, err := col.Doc(event.Provider + ":" + event.EventID).Create(ctx, doc)
	if status.Code(err) == codes.AlreadyExists {
		return acesso.ErrDuplicateEvent
	}
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// HasProcessedEvent implements acesso.Storage
func (s *Storage) HasProcessedEvent(ctx context.Context, provider, eventID string) (bool, error) {
	if eventID == "" {
		return false, nil
	}

	snap, err := s.client.Collection(s.eventsCollection).Doc(provider + ":" + eventID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to check event: %w", err)
	}
	return snap.Exists(), nil
}

func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func getTime(data map[string]interface{}, key string) time.Time {
	if v, ok := data[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func getBool(data map[string]interface{}, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}
