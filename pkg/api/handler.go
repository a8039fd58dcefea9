// Package api provides the read-side HTTP endpoints of the entitlement core:
// the access status view consumed by the application shell and the route
// decision endpoint consumed by the frontend router.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

const maxStoreIDLen = 255

// Handler provides HTTP endpoints for entitlement inspection
type Handler struct {
	config Config
}

// GetStatus returns the evaluated access status of the caller's store,
// enriched with the stored plan details. Storage failures return 500: an
// unreadable entitlement is never reported as granted.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID := h.config.GetStoreID(r)
	if storeID == "" {
		h.handleError(w, r, fmt.Errorf("store ID not found"), http.StatusUnauthorized)
		return
	}
	if len(storeID) > maxStoreIDLen {
		h.handleError(w, r, fmt.Errorf("invalid store ID format"), http.StatusBadRequest)
		return
	}

	// The evaluated status and the raw record come from the same row, but
	// the fetches are independent reads.
	var (
		status *acesso.AccessStatus
		record *acesso.StoreAccess
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		status, err = h.config.Manager.GetAccessStatus(gctx, storeID)
		return err
	})
	g.Go(func() error {
		var err error
		record, err = h.config.Manager.GetStoreAccess(gctx, storeID)
		if errors.Is(err, acesso.ErrAccessNotFound) {
			record = nil
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		h.handleError(w, r, fmt.Errorf("failed to get access status: %w", err), http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		StoreID:   storeID,
		Granted:   status.Granted,
		Message:   status.Message,
		PlanName:  status.PlanName,
		PlanType:  status.PlanType,
		AccessEnd: status.AccessEnd,
	}
	if record != nil {
		response.Origin = record.Origin
		response.Renewable = record.Renewable
	}

	writeJSON(w, http.StatusOK, response)
}

// GetRouteDecision evaluates the route guard for the path in the "path" query
// parameter. Bootstrap state and access status are fetched concurrently.
func (h *Handler) GetRouteDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.config.GetBootstrap == nil {
		h.handleError(w, r, fmt.Errorf("route decision endpoint not configured"), http.StatusNotImplemented)
		return
	}

	storeID := h.config.GetStoreID(r)
	path := r.URL.Query().Get("path")
	if path == "" {
		h.handleError(w, r, fmt.Errorf("path parameter is required"), http.StatusBadRequest)
		return
	}

	// Bootstrap lookups and the entitlement read hit different backends, so
	// they run concurrently. Users without a store have no entitlement row;
	// the guard routes them on bootstrap state alone.
	var (
		boot   acesso.BootstrapStatus
		status acesso.AccessStatus
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		boot, err = h.config.GetBootstrap(r)
		return err
	})
	if storeID != "" {
		g.Go(func() error {
			fetched, err := h.config.Manager.GetAccessStatus(gctx, storeID)
			if err != nil {
				return err
			}
			status = *fetched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.handleError(w, r, fmt.Errorf("failed to evaluate route: %w", err), http.StatusInternalServerError)
		return
	}

	target := h.config.Guard.Decide(boot, status, path)
	if target == "" {
		h.config.Metrics.RecordGuardDecision("proceed")
	} else {
		h.config.Metrics.RecordGuardDecision("redirect")
	}
	writeJSON(w, http.StatusOK, RouteDecisionResponse{
		Path:       path,
		Proceed:    target == "",
		RedirectTo: target,
	})
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if h.config.OnError != nil {
		h.config.OnError(w, r, err)
		return
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
