// Package echo provides Echo middleware that applies the route guard to every
// request.
package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

// StoreIDExtractor extracts the tenant store ID from an Echo context.
// Return empty string if the user is not authenticated.
type StoreIDExtractor func(c echo.Context) string

// BootstrapExtractor loads the user's bootstrap state (store ownership,
// membership, admin flag) for an Echo context.
type BootstrapExtractor func(c echo.Context) (acesso.BootstrapStatus, error)

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
	OnRedirect func(c echo.Context, target string) error

	// OnUnauthorized is called when no store ID can be extracted.
	// If nil, returns 401 Unauthorized.
	OnUnauthorized func(c echo.Context) error

	// OnError is called when loading bootstrap or access state fails.
	// If nil, returns 500 Internal Server Error. Read failures never
	// fail open.
	OnError func(c echo.Context, err error) error

	// Metrics is an optional recorder for guard decisions
	Metrics acesso.Metrics
}

// Middleware creates an Echo middleware that enforces the route guard
func Middleware(cfg Config) echo.MiddlewareFunc {
	// Validate required configuration at startup (fail fast)
	if cfg.Manager == nil {
		panic("goacesso/echo: Config.Manager is required")
	}
	if cfg.GetStoreID == nil {
		panic("goacesso/echo: Config.GetStoreID is required")
	}
	if cfg.GetBootstrap == nil {
		panic("goacesso/echo: Config.GetBootstrap is required")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &acesso.NoopMetrics{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			storeID := cfg.GetStoreID(c)
			if storeID == "" {
				cfg.Metrics.RecordGuardDecision("unauthorized")
				if cfg.OnUnauthorized != nil {
					return cfg.OnUnauthorized(c)
				}
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			}

			boot, err := cfg.GetBootstrap(c)
			if err != nil {
				cfg.Metrics.RecordGuardDecision("error")
				return handleError(cfg, c, err)
			}

			status, err := cfg.Manager.GetAccessStatus(c.Request().Context(), storeID)
			if err != nil {
				cfg.Metrics.RecordGuardDecision("error")
				return handleError(cfg, c, err)
			}

			target := cfg.Guard.Decide(boot, *status, c.Request().URL.Path)
			if target != "" {
				cfg.Metrics.RecordGuardDecision("redirect")
				if cfg.OnRedirect != nil {
					return cfg.OnRedirect(c, target)
				}
				return c.Redirect(http.StatusFound, target)
			}

			cfg.Metrics.RecordGuardDecision("proceed")
			return next(c)
		}
	}
}

func handleError(cfg Config, c echo.Context, err error) error {
	if cfg.OnError != nil {
		return cfg.OnError(c, err)
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// StoreIDFromHeader returns a StoreIDExtractor that reads a header value
func StoreIDFromHeader(headerName string) StoreIDExtractor {
	return func(c echo.Context) string {
		return c.Request().Header.Get(headerName)
	}
}

// StoreIDFromContext returns a StoreIDExtractor that reads an Echo context key
func StoreIDFromContext(key string) StoreIDExtractor {
	return func(c echo.Context) string {
		if storeID, ok := c.Get(key).(string); ok {
			return storeID
		}
		return ""
	}
}
