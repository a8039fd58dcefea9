package api

import (
	"fmt"
	"net/http"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

// Config holds configuration for the access API handler
type Config struct {
	// Manager is the access manager instance (required)
	Manager *acesso.Manager

	// GetStoreID extracts the tenant store ID from the request (required).
	// Return empty string when the user is not authenticated.
	GetStoreID func(*http.Request) string

	// GetBootstrap loads the user's bootstrap state. Required for the route
	// decision endpoint; the status endpoint works without it.
	GetBootstrap func(*http.Request) (acesso.BootstrapStatus, error)

	// Guard holds the application paths used by the route decision endpoint.
	// Zero values use the defaults.
	Guard acesso.GuardConfig

	// OnError handles errors (auth, internal, etc.)
	// If nil, uses default error handling
	OnError func(http.ResponseWriter, *http.Request, error)

	// Metrics is an optional metrics recorder
	Metrics acesso.Metrics
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Manager == nil {
		return fmt.Errorf("manager is required")
	}
	if c.GetStoreID == nil {
		return fmt.Errorf("getStoreID is required")
	}
	return nil
}

// NewHandler creates a new access API handler with the given configuration
func NewHandler(config Config) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.Metrics == nil {
		config.Metrics = &acesso.NoopMetrics{}
	}
	return &Handler{config: config}, nil
}

// Helper functions for common store ID extraction patterns

// FromHeader returns a GetStoreID function that extracts the ID from a header
func FromHeader(headerName string) func(*http.Request) string {
	return func(r *http.Request) string {
		return r.Header.Get(headerName)
	}
}

// FromContext returns a GetStoreID function that extracts the ID from the
// request context
func FromContext(key interface{}) func(*http.Request) string {
	return func(r *http.Request) string {
		if storeID, ok := r.Context().Value(key).(string); ok {
			return storeID
		}
		return ""
	}
}
