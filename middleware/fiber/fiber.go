// Package fiber provides Fiber middleware that applies the route guard to
// every request.
package fiber

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

// StoreIDExtractor extracts the tenant store ID from a Fiber context.
// Return empty string if the user is not authenticated.
type StoreIDExtractor func(c *fiber.Ctx) string

// BootstrapExtractor loads the user's bootstrap state (store ownership,
// membership, admin flag) for a Fiber context.
type BootstrapExtractor func(c *fiber.Ctx) (acesso.BootstrapStatus, error)

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
	OnRedirect func(c *fiber.Ctx, target string) error

	// OnUnauthorized is called when no store ID can be extracted.
	// If nil, returns 401 Unauthorized.
	OnUnauthorized func(c *fiber.Ctx) error

	// OnError is called when loading bootstrap or access state fails.
	// If nil, returns 500 Internal Server Error. Read failures never
	// fail open.
	OnError func(c *fiber.Ctx, err error) error

	// Metrics is an optional recorder for guard decisions
	Metrics acesso.Metrics
}

// Middleware creates a Fiber middleware that enforces the route guard
func Middleware(cfg Config) fiber.Handler {
	// Validate required configuration at startup (fail fast)
	if cfg.Manager == nil {
		panic("goacesso/fiber: Config.Manager is required")
	}
	if cfg.GetStoreID == nil {
		panic("goacesso/fiber: Config.GetStoreID is required")
	}
	if cfg.GetBootstrap == nil {
		panic("goacesso/fiber: Config.GetBootstrap is required")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &acesso.NoopMetrics{}
	}

	return func(c *fiber.Ctx) error {
		storeID := cfg.GetStoreID(c)
		if storeID == "" {
			cfg.Metrics.RecordGuardDecision("unauthorized")
			if cfg.OnUnauthorized != nil {
				return cfg.OnUnauthorized(c)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		boot, err := cfg.GetBootstrap(c)
		if err != nil {
			cfg.Metrics.RecordGuardDecision("error")
			return handleError(cfg, c, err)
		}

		status, err := cfg.Manager.GetAccessStatus(c.Context(), storeID)
		if err != nil {
			cfg.Metrics.RecordGuardDecision("error")
			return handleError(cfg, c, err)
		}

		target := cfg.Guard.Decide(boot, *status, c.Path())
		if target != "" {
			cfg.Metrics.RecordGuardDecision("redirect")
			if cfg.OnRedirect != nil {
				return cfg.OnRedirect(c, target)
			}
			return c.Redirect(target, fiber.StatusFound)
		}

		cfg.Metrics.RecordGuardDecision("proceed")
		return c.Next()
	}
}

func handleError(cfg Config, c *fiber.Ctx, err error) error {
	if cfg.OnError != nil {
		return cfg.OnError(c, err)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// StoreIDFromHeader returns a StoreIDExtractor that reads a header value
func StoreIDFromHeader(headerName string) StoreIDExtractor {
	return func(c *fiber.Ctx) string {
		return c.Get(headerName)
	}
}

// StoreIDFromLocals returns a StoreIDExtractor that reads a Fiber locals key
func StoreIDFromLocals(key string) StoreIDExtractor {
	return func(c *fiber.Ctx) string {
		if storeID, ok := c.Locals(key).(string); ok {
			return storeID
		}
		return ""
	}
}
