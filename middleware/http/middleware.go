// Package http provides net/http middleware that applies the route guard to
// every request. The guard re-evaluates access on each navigation, so a
// subscription change takes effect on the next request without a new login.
package http

import (
	"net/http"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

// StoreIDExtractor extracts the tenant store ID from an HTTP request.
// Return empty string if the user is not authenticated.
type StoreIDExtractor func(r *http.Request) string

// BootstrapExtractor loads the user's bootstrap state (store ownership,
// membership, admin flag) for an HTTP request.
type BootstrapExtractor func(r *http.Request) (acesso.BootstrapStatus, error)

// Config holds middleware configuration
type Config struct {
	// Manager is the access manager instance (required)
	Manager *acesso.Manager

	// GetStoreID extracts the store ID from the request (required)
	GetStoreID StoreIDExtractor

	// GetBootstrap loads the user's bootstrap state (required)
	GetBootstrap BootstrapExtractor

	// Guard holds the application paths; zero values use the defaults
	Guard acesso.GuardConfig

	// OnRedirect is called when the guard routes the request elsewhere.
	// If nil, issues a 302 redirect to the target path.
	OnRedirect func(w http.ResponseWriter, r *http.Request, target string)

	// OnUnauthorized is called when no store ID can be extracted.
	// If nil, returns 401 Unauthorized.
	OnUnauthorized func(w http.ResponseWriter, r *http.Request)

	// OnError is called when loading bootstrap or access state fails.
	// If nil, returns 500 Internal Server Error. Read failures never
	// fail open.
	OnError func(w http.ResponseWriter, r *http.Request, err error)

	// Metrics is an optional recorder for guard decisions
	Metrics acesso.Metrics
}

// Middleware creates an HTTP middleware that enforces the route guard
func Middleware(config Config) func(http.Handler) http.Handler {
	// Validate required configuration at startup (fail fast)
	if config.Manager == nil {
		panic("goacesso/http: Config.Manager is required")
	}
	if config.GetStoreID == nil {
		panic("goacesso/http: Config.GetStoreID is required")
	}
	if config.GetBootstrap == nil {
		panic("goacesso/http: Config.GetBootstrap is required")
	}
	if config.Metrics == nil {
		config.Metrics = &acesso.NoopMetrics{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			storeID := config.GetStoreID(r)
			if storeID == "" {
				config.Metrics.RecordGuardDecision("unauthorized")
				if config.OnUnauthorized != nil {
					config.OnUnauthorized(w, r)
				} else {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
				}
				return
			}

			boot, err := config.GetBootstrap(r)
			if err != nil {
				config.Metrics.RecordGuardDecision("error")
				handleError(config, w, r, err)
				return
			}

			status, err := config.Manager.GetAccessStatus(r.Context(), storeID)
			if err != nil {
				config.Metrics.RecordGuardDecision("error")
				handleError(config, w, r, err)
				return
			}

			target := config.Guard.Decide(boot, *status, r.URL.Path)
			if target != "" {
				config.Metrics.RecordGuardDecision("redirect")
				if config.OnRedirect != nil {
					config.OnRedirect(w, r, target)
				} else {
					http.Redirect(w, r, target, http.StatusFound)
				}
				return
			}

			config.Metrics.RecordGuardDecision("proceed")
			next.ServeHTTP(w, r)
		})
	}
}

// HandlerFunc creates an HTTP middleware that enforces the route guard
// (HandlerFunc version)
func HandlerFunc(config Config) func(http.HandlerFunc) http.HandlerFunc {
	middleware := Middleware(config)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			middleware(next).ServeHTTP(w, r)
		}
	}
}

func handleError(config Config, w http.ResponseWriter, r *http.Request, err error) {
	if config.OnError != nil {
		config.OnError(w, r, err)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// Common extractors for convenience

// StoreIDFromHeader returns a StoreIDExtractor that reads a header value
func StoreIDFromHeader(headerName string) StoreIDExtractor {
	return func(r *http.Request) string {
		return r.Header.Get(headerName)
	}
}

// StoreIDFromContext returns a StoreIDExtractor that reads the request context
func StoreIDFromContext(key interface{}) StoreIDExtractor {
	return func(r *http.Request) string {
		if storeID, ok := r.Context().Value(key).(string); ok {
			return storeID
		}
		return ""
	}
}
