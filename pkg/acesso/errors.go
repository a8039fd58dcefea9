package acesso

import "errors"

var (
	// ErrAccessNotFound is returned when a store has no entitlement record
	ErrAccessNotFound = errors.New("store access not found")

	// ErrDuplicateEvent is returned when an event with the same provider and
	// event ID has already been recorded
	ErrDuplicateEvent = errors.New("event already recorded")

	// ErrUnknownPlan is returned when a plan identifier cannot be resolved
	ErrUnknownPlan = errors.New("unknown plan identifier")

	// ErrInvalidStoreID is returned for empty or malformed store identifiers
	ErrInvalidStoreID = errors.New("invalid store id")

	// ErrStorageUnavailable is returned when storage is unavailable
	ErrStorageUnavailable = errors.New("storage unavailable")
)
