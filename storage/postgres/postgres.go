// Package postgres provides a PostgreSQL implementation of the acesso.Storage
// interface. The store_access table holds one row per store (upsert target);
// subscription_events is append-only with a unique index on
// (provider, event_id) that backstops idempotency under concurrent webhook
// deliveries.
//
// Expected schema:
//
//	CREATE TABLE store_access (
//	    store_id           TEXT PRIMARY KEY,
//	    plano_nome         TEXT NOT NULL DEFAULT '',
//	    plano_tipo         TEXT NOT NULL DEFAULT '',
//	    data_inicio_acesso TIMESTAMPTZ NOT NULL,
//	    data_fim_acesso    TIMESTAMPTZ,
//	    status_acesso      TEXT NOT NULL,
//	    origem             TEXT NOT NULL DEFAULT '',
//	    renovavel          BOOLEAN NOT NULL DEFAULT FALSE,
//	    updated_at         TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE subscription_events (
//	    id          BIGSERIAL PRIMARY KEY,
//	    provider    TEXT NOT NULL,
//	    event_type  TEXT NOT NULL,
//	    event_id    TEXT,
//	    store_id    TEXT,
//	    plan_id     TEXT,
//	    user_id     TEXT,
//	    status      TEXT NOT NULL,
//	    raw_payload JSONB,
//	    created_at  TIMESTAMPTZ NOT NULL
//	);
//	CREATE UNIQUE INDEX subscription_events_provider_event_id
//	    ON subscription_events (provider, event_id) WHERE event_id <> '';
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

const uniqueViolationCode = "23505"

// Storage implements acesso.Storage using PostgreSQL
type Storage struct {
	pool   *pgxpool.Pool
	config Config
}

// Config holds PostgreSQL storage configuration
type Config struct {
	// ConnectionString is the PostgreSQL connection string
	ConnectionString string

	// Pool configuration
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// New creates a new PostgreSQL storage adapter
func New(ctx context.Context, config Config) (*Storage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Storage{pool: pool, config: config}, nil
}

// Close closes the PostgreSQL connection pool
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// GetStoreAccess implements acesso.Storage
func (s *Storage) GetStoreAccess(ctx context.Context, storeID string) (*acesso.StoreAccess, error) {
	var access acesso.StoreAccess
	var accessEnd *time.Time

	err := s.pool.QueryRow(ctx,
		`SELECT store_id, plano_nome, plano_tipo, data_inicio_acesso, data_fim_acesso,
				status_acesso, origem, renovavel, updated_at
			FROM store_access WHERE store_id = $1`,
		storeID).Scan(
		&access.StoreID,
		&access.PlanName,
		&access.PlanType,
		&access.AccessStart,
		&accessEnd,
		&access.Status,
		&access.Origin,
		&access.Renewable,
		&access.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, acesso.ErrAccessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store access: %w", err)
	}

	access.AccessEnd = accessEnd
	return &access, nil
}

// UpsertStoreAccess implements acesso.Storage
func (s *Storage) UpsertStoreAccess(ctx context.Context, access *acesso.StoreAccess) error {
	if access == nil || access.StoreID == "" {
		return fmt.Errorf("invalid store access")
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO store_access (store_id, plano_nome, plano_tipo, data_inicio_acesso,
				data_fim_acesso, status_acesso, origem, renovavel, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (store_id) DO UPDATE SET
				plano_nome = EXCLUDED.plano_nome,
				plano_tipo = EXCLUDED.plano_tipo,
				data_inicio_acesso = EXCLUDED.data_inicio_acesso,
				data_fim_acesso = EXCLUDED.data_fim_acesso,
				status_acesso = EXCLUDED.status_acesso,
				origem = EXCLUDED.origem,
				renovavel = EXCLUDED.renovavel,
				updated_at = EXCLUDED.updated_at`,
		access.StoreID, access.PlanName, access.PlanType, access.AccessStart,
		access.AccessEnd, access.Status, access.Origin, access.Renewable, time.Now().UTC(),
	)

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

	_, err := s.pool.Exec(ctx,
		`INSERT INTO subscription_events
				(provider, event_type, event_id, store_id, plan_id, user_id, status, raw_payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.Provider, event.EventType, event.EventID, nullable(event.StoreID),
		nullable(event.PlanID), nullable(event.UserID), event.Status, event.Payload, createdAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
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

	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM subscription_events WHERE provider = $1 AND event_id = $2
		)`, provider, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check event: %w", err)
	}

	return exists, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
