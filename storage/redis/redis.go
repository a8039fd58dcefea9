// Package redis provides a Redis implementation of the acesso.Storage
// interface. Access records are stored as JSON values; the event log uses
// SET NX per (provider, event_id) so duplicate deliveries lose the race
// atomically, plus an append-only list for operator re-driving.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

// Storage implements acesso.Storage using Redis
type Storage struct {
	client redis.UniversalClient
	config Config
}

// Config holds Redis storage configuration
type Config struct {
	// KeyPrefix is prepended to all Redis keys (default: "goacesso:")
	KeyPrefix string

	// EventTTL is the TTL for idempotency keys (0 = no expiration).
	// The append-only event list never expires.
	EventTTL time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		KeyPrefix: "goacesso:",
		EventTTL:  0,
	}
}

// New creates a new Redis storage adapter.
// The client can be *redis.Client, *redis.ClusterClient, or *redis.Ring
func New(client redis.UniversalClient, config Config) (*Storage, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "goacesso:"
	}

	return &Storage{client: client, config: config}, nil
}

func (s *Storage) accessKey(storeID string) string {
	return s.config.KeyPrefix + "access:" + storeID
}

func (s *Storage) eventKey(provider, eventID string) string {
	return s.config.KeyPrefix + "event:" + provider + ":" + eventID
}

func (s *Storage) eventLogKey() string {
	return s.config.KeyPrefix + "events"
}

// GetStoreAccess implements acesso.Storage
func (s *Storage) GetStoreAccess(ctx context.Context, storeID string) (*acesso.StoreAccess, error) {
	data, err := s.client.Get(ctx, s.accessKey(storeID)).Bytes()
	if err == redis.Nil {
		return nil, acesso.ErrAccessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store access: %w", err)
	}

	var access acesso.StoreAccess
	if err := json.Unmarshal(data, &access); err != nil {
		return nil, fmt.Errorf("failed to decode store access: %w", err)
	}
	return &access, nil
}

// UpsertStoreAccess implements acesso.Storage
func (s *Storage) UpsertStoreAccess(ctx context.Context, access *acesso.StoreAccess) error {
	if access == nil || access.StoreID == "" {
		return fmt.Errorf("invalid store access")
	}

	data, err := json.Marshal(access)
	if err != nil {
		return fmt.Errorf("failed to encode store access: %w", err)
	}

	if err := s.client.Set(ctx, s.accessKey(access.StoreID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to upsert store access: %w", err)
	}
	return nil
}

// RecordEvent implements acesso.Storage
func (s *Storage) RecordEvent(ctx context.Context, event *acesso.SubscriptionEvent) error {
	if event == nil {
		return fmt.Errorf("invalid event")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if event.EventID != "" {
		ok, err := s.client.SetNX(ctx, s.eventKey(event.Provider, event.EventID), data, s.config.EventTTL).Result()
		if err != nil {
			return fmt.Errorf("failed to record event: %w", err)
		}
		if !ok {
			return acesso.ErrDuplicateEvent
		}
	}

	if err := s.client.RPush(ctx, s.eventLogKey(), data).Err(); err != nil {
		return fmt.Errorf("failed to append event log: %w", err)
	}
	return nil
}

// HasProcessedEvent implements acesso.Storage
func (s *Storage) HasProcessedEvent(ctx context.Context, provider, eventID string) (bool, error) {
	if eventID == "" {
		return false, nil
	}

	n, err := s.client.Exists(ctx, s.eventKey(provider, eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check event: %w", err)
	}
	return n > 0, nil
}
