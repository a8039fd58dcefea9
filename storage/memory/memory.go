// Package memory provides an in-memory implementation of the acesso.Storage
// interface. This implementation is primarily intended for testing and
// development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

// Storage implements acesso.Storage using in-memory maps
type Storage struct {
	mu     sync.RWMutex
	access map[string]*acesso.StoreAccess
	events map[string]*acesso.SubscriptionEvent
	log    []*acesso.SubscriptionEvent
}

// New creates a new in-memory storage adapter
func New() *Storage {
	return &Storage{
		access: make(map[string]*acesso.StoreAccess),
		events: make(map[string]*acesso.SubscriptionEvent),
	}
}

// GetStoreAccess implements acesso.Storage
func (s *Storage) GetStoreAccess(ctx context.Context, storeID string) (*acesso.StoreAccess, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	access, ok := s.access[storeID]
	if !ok {
		return nil, acesso.ErrAccessNotFound
	}

	// Return a copy to prevent external mutations
	accessCopy := *access
	return &accessCopy, nil
}

// UpsertStoreAccess implements acesso.Storage
func (s *Storage) UpsertStoreAccess(ctx context.Context, access *acesso.StoreAccess) error {
	if access == nil || access.StoreID == "" {
		return fmt.Errorf("invalid store access")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accessCopy := *access
	s.access[access.StoreID] = &accessCopy
	return nil
}

// RecordEvent implements acesso.Storage
func (s *Storage) RecordEvent(ctx context.Context, event *acesso.SubscriptionEvent) error {
	if event == nil {
		return fmt.Errorf("invalid event")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eventCopy := *event
	if event.EventID != "" {
		key := eventKey(event.Provider, event.EventID)
		if _, exists := s.events[key]; exists {
			return acesso.ErrDuplicateEvent
		}
		s.events[key] = &eventCopy
	}
	s.log = append(s.log, &eventCopy)
	return nil
}

// HasProcessedEvent implements acesso.Storage
func (s *Storage) HasProcessedEvent(ctx context.Context, provider, eventID string) (bool, error) {
	if eventID == "" {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.events[eventKey(provider, eventID)]
	return ok, nil
}

// Events returns a snapshot of the full event log (useful for testing).
func (s *Storage) Events() []*acesso.SubscriptionEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*acesso.SubscriptionEvent, len(s.log))
	for i, ev := range s.log {
		evCopy := *ev
		out[i] = &evCopy
	}
	return out
}

// Clear removes all data (useful for testing)
func (s *Storage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = make(map[string]*acesso.StoreAccess)
	s.events = make(map[string]*acesso.SubscriptionEvent)
	s.log = nil
}

func eventKey(provider, eventID string) string {
	return provider + ":" + eventID
}
