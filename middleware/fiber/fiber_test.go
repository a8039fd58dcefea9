package fiber_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	guardfiber "github.com/vendafacil/goacesso/middleware/fiber"
	"github.com/vendafacil/goacesso/pkg/acesso"
	"github.com/vendafacil/goacesso/storage/memory"
)

func newTestApp(t *testing.T, storage acesso.Storage) *fiber.App {
	t.Helper()

	manager, err := acesso.NewManager(storage, acesso.Config{})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(guardfiber.Middleware(guardfiber.Config{
		Manager:    manager,
		GetStoreID: guardfiber.StoreIDFromHeader("X-Store-ID"),
		GetBootstrap: func(c *fiber.Ctx) (acesso.BootstrapStatus, error) {
			return acesso.BootstrapStatus{HasStore: true}, nil
		},
	}))
	app.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/planos", func(c *fiber.Ctx) error {
		return c.SendString("planos")
	})
	return app
}

func TestFiberMiddlewareAllowsGrantedTenant(t *testing.T) {
	storage := memory.New()
	end := time.Now().UTC().Add(24 * time.Hour)
	require.NoError(t, storage.UpsertStoreAccess(context.Background(), &acesso.StoreAccess{
		StoreID:     "store123",
		AccessStart: time.Now().UTC(),
		AccessEnd:   &end,
		Status:      acesso.StateAtivo,
	}))
	app := newTestApp(t, storage)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("X-Store-ID", "store123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFiberMiddlewareRedirectsLockedTenant(t *testing.T) {
	app := newTestApp(t, memory.New())

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("X-Store-ID", "store-sem-plano")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/planos", resp.Header.Get("Location"))
}

func TestFiberMiddlewareUnauthorized(t *testing.T) {
	app := newTestApp(t, memory.New())

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
