// Package gin provides Gin middleware that applies the route guard to every
// request.
package gin

import (
	"net/http"

	gongin "github.com/gin-gonic/gin"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

// StoreIDExtractor extracts the tenant store ID from a Gin context.
// Return empty string if the user is not authenticated.
type StoreIDExtractor func(c *gongin.Context) string

// BootstrapExtractor loads the user's bootstrap state (store ownership,
// membership, admin flag) for a Gin context.
type BootstrapExtractor func(c *gongin.Context) (acesso.BootstrapStatus, error)

// Config holds middleware configuration
type Config struct {
	// Manager is the access manager instance (required)
	Manager *acesso.Manager

	// GetStoreID extracts the store ID from the context (required)
	GetStoreID StoreIDExtractor

	// GetBootstrap loads the user's bootstrap state (required)
	GetBootstrap BootstrapExtractor

	// Guard holds the application paths; zero values use the defaults
	Guard acesso.GuardConfig

	// OnRedirect is called when the guard routes the request elsewhere.
	// If nil, issues a 302 redirect to the target path.
	OnRedirect func(c *gongin.Context, target string)

	// OnUnauthorized is called when no store ID can be extracted.
	// If nil, returns 401 Unauthorized.
	OnUnauthorized func(c *gongin.Context)

	// OnError is called when loading bootstrap or access state fails.
	// If nil, returns 500 Internal Server Error. Read failures never
	// fail open.
	OnError func(c *gongin.Context, err error)

	// Metrics is an optional recorder for guard decisions
	Metrics acesso.Metrics
}

// Middleware creates a Gin middleware that enforces the route guard
func Middleware(cfg Config) gongin.HandlerFunc {
	// Validate required configuration at startup (fail fast)
	if cfg.Manager == nil {
		panic("goacesso/gin: Config.Manager is required")
	}
	if cfg.GetStoreID == nil {
		panic("goacesso/gin: Config.GetStoreID is required")
	}
	if cfg.GetBootstrap == nil {
		panic("goacesso/gin: Config.GetBootstrap is required")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &acesso.NoopMetrics{}
	}

	return func(c *gongin.Context) {
		storeID := cfg.GetStoreID(c)
		if storeID == "" {
			cfg.Metrics.RecordGuardDecision("unauthorized")
			if cfg.OnUnauthorized != nil {
				cfg.OnUnauthorized(c)
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gongin.H{"error": "unauthorized"})
			}
			return
		}

		boot, err := cfg.GetBootstrap(c)
		if err != nil {
			cfg.Metrics.RecordGuardDecision("error")
			handleError(cfg, c, err)
			return
		}

		status, err := cfg.Manager.GetAccessStatus(c.Request.Context(), storeID)
		if err != nil {
			cfg.Metrics.RecordGuardDecision("error")
			handleError(cfg, c, err)
			return
		}

		target := cfg.Guard.Decide(boot, *status, c.Request.URL.Path)
		if target != "" {
			cfg.Metrics.RecordGuardDecision("redirect")
			if cfg.OnRedirect != nil {
				cfg.OnRedirect(c, target)
			} else {
				c.Redirect(http.StatusFound, target)
				c.Abort()
			}
			return
		}

		cfg.Metrics.RecordGuardDecision("proceed")
		c.Next()
	}
}

func handleError(cfg Config, c *gongin.Context, err error) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gongin.H{"error": "internal server error"})
}

// StoreIDFromHeader returns a StoreIDExtractor that reads a header value
func StoreIDFromHeader(headerName string) StoreIDExtractor {
	return func(c *gongin.Context) string {
		return c.GetHeader(headerName)
	}
}

// StoreIDFromContext returns a StoreIDExtractor that reads a Gin context key
func StoreIDFromContext(key string) StoreIDExtractor {
	return func(c *gongin.Context) string {
		if storeID, ok := c.Get(key); ok {
			if s, ok := storeID.(string); ok {
				return s
			}
		}
		return ""
	}
}
