package http_test

import (
	"context"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	guardhttp "github.com/vendafacil/goacesso/middleware/http"
	"github.com/vendafacil/goacesso/pkg/acesso"
	"github.com/vendafacil/goacesso/storage/memory"
)

func newGuardedServer(t *testing.T, storage acesso.Storage, boot acesso.BootstrapStatus) stdhttp.Handler {
	t.Helper()

	manager, err := acesso.NewManager(storage, acesso.Config{})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	guard := guardhttp.Middleware(guardhttp.Config{
		Manager:    manager,
		GetStoreID: guardhttp.StoreIDFromHeader("X-Store-ID"),
		GetBootstrap: func(r *stdhttp.Request) (acesso.BootstrapStatus, error) {
			return boot, nil
		},
	})

	return guard(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
}

func grantStore(t *testing.T, storage acesso.Storage, storeID string) {
	t.Helper()
	end := time.Now().UTC().Add(24 * time.Hour)
	err := storage.UpsertStoreAccess(context.Background(), &acesso.StoreAccess{
		StoreID:     storeID,
		PlanType:    acesso.PlanMensal,
		AccessStart: time.Now().UTC(),
		AccessEnd:   &end,
		Status:      acesso.StateAtivo,
	})
	if err != nil {
		t.Fatalf("UpsertStoreAccess failed: %v", err)
	}
}

func TestMiddlewareAllowsGrantedTenant(t *testing.T) {
	storage := memory.New()
	grantStore(t, storage, "store123")
	handler := newGuardedServer(t, storage, acesso.BootstrapStatus{HasStore: true})

	req := httptest.NewRequest(stdhttp.MethodGet, "/dashboard", nil)
	req.Header.Set("X-Store-ID", "store123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMiddlewareRedirectsLockedTenant(t *testing.T) {
	storage := memory.New()
	handler := newGuardedServer(t, storage, acesso.BootstrapStatus{HasStore: true})

	req := httptest.NewRequest(stdhttp.MethodGet, "/dashboard", nil)
	req.Header.Set("X-Store-ID", "store-sem-plano")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/planos" {
		t.Errorf("Location = %q, want /planos", loc)
	}
}

func TestMiddlewareAllowsBillingPathWhenLocked(t *testing.T) {
	storage := memory.New()
	handler := newGuardedServer(t, storage, acesso.BootstrapStatus{HasStore: true})

	req := httptest.NewRequest(stdhttp.MethodGet, "/planos", nil)
	req.Header.Set("X-Store-ID", "store-sem-plano")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusOK {
		t.Errorf("status = %d, want 200 (billing stays reachable)", rec.Code)
	}
}

func TestMiddlewareUnauthorizedWithoutStoreID(t *testing.T) {
	storage := memory.New()
	handler := newGuardedServer(t, storage, acesso.BootstrapStatus{})

	req := httptest.NewRequest(stdhttp.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareStorageFailureReturns500(t *testing.T) {
	handler := newGuardedServer(t, failingStorage{}, acesso.BootstrapStatus{HasStore: true})

	req := httptest.NewRequest(stdhttp.MethodGet, "/dashboard", nil)
	req.Header.Set("X-Store-ID", "store123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// An unreadable entitlement must never fail open
	if rec.Code != stdhttp.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestMiddlewareCustomHooks(t *testing.T) {
	storage := memory.New()
	manager, err := acesso.NewManager(storage, acesso.Config{})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	var redirectedTo string
	guard := guardhttp.Middleware(guardhttp.Config{
		Manager:    manager,
		GetStoreID: guardhttp.StoreIDFromHeader("X-Store-ID"),
		GetBootstrap: func(r *stdhttp.Request) (acesso.BootstrapStatus, error) {
			return acesso.BootstrapStatus{HasStore: true}, nil
		},
		OnRedirect: func(w stdhttp.ResponseWriter, r *stdhttp.Request, target string) {
			redirectedTo = target
			w.WriteHeader(stdhttp.StatusForbidden)
		},
	})
	handler := guard(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {}))

	req := httptest.NewRequest(stdhttp.MethodGet, "/dashboard", nil)
	req.Header.Set("X-Store-ID", "store-sem-plano")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusForbidden {
		t.Errorf("status = %d, want 403 from custom hook", rec.Code)
	}
	if redirectedTo != "/planos" {
		t.Errorf("redirect target = %q, want /planos", redirectedTo)
	}
}

type failingStorage struct{}

func (failingStorage) GetStoreAccess(ctx context.Context, storeID string) (*acesso.StoreAccess, error) {
	return nil, errors.New("connection refused")
}

func (failingStorage) UpsertStoreAccess(ctx context.Context, access *acesso.StoreAccess) error {
	return errors.New("connection refused")
}

func (failingStorage) RecordEvent(ctx context.Context, event *acesso.SubscriptionEvent) error {
	return errors.New("connection refused")
}

func (failingStorage) HasProcessedEvent(ctx context.Context, provider, eventID string) (bool, error) {
	return false, errors.New("connection refused")
}
