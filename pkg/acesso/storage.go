package acesso

import "context"

// Storage is the persistence contract for entitlements and the billing event
// log. Implementations must enforce uniqueness of (provider, event id) on
// RecordEvent themselves: the application-level HasProcessedEvent check is a
// best-effort fast path, and concurrent webhook deliveries race past it.
type Storage interface {
	// GetStoreAccess returns the current entitlement record for a store.
	// Returns ErrAccessNotFound when the store has never been granted access.
	GetStoreAccess(ctx context.Context, storeID string) (*StoreAccess, error)

	// UpsertStoreAccess overwrites the single entitlement record of a store.
	// Last writer wins; there is no merging of overlapping grants.
	UpsertStoreAccess(ctx context.Context, access *StoreAccess) error

	// RecordEvent appends one immutable audit record. Returns
	// ErrDuplicateEvent when a record with the same provider and non-empty
	// event ID already exists.
	RecordEvent(ctx context.Context, event *SubscriptionEvent) error

	// HasProcessedEvent reports whether an event with this provider and ID
	// has already been recorded. An empty eventID always reports false.
	HasProcessedEvent(ctx context.Context, provider, eventID string) (bool, error)
}
