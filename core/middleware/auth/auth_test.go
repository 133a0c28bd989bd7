package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"commerce-sync/core/middleware/rayid"
	"commerce-sync/core/store"
	"commerce-sync/core/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(load TenantLoader) (*fiber.App, *token.Manager) {
	tokens := token.NewManager(token.Config{Secret: "test", TTLHours: 1})
	app := fiber.New()
	app.Use(rayid.New())
	app.Use(New(Config{Tokens: tokens, Load: load}))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"tenant_id": TenantID(c), "email": Tenant(c).Email})
	})
	return app, tokens
}

func tenants(list ...*store.Tenant) TenantLoader {
	return func(_ context.Context, id string) (*store.Tenant, error) {
		for _, t := range list {
			if t.ID == id {
				return t, nil
			}
		}
		return nil, store.ErrNotFound
	}
}

func TestAuthMiddleware(t *testing.T) {
	active := &store.Tenant{Base: store.Base{ID: "t-1"}, Email: "a@shop.com", IsActive: true}
	inactive := &store.Tenant{Base: store.Base{ID: "t-2"}, Email: "b@shop.com", IsActive: false}
	app, tokens := setupApp(tenants(active, inactive))

	bearer := func(id string) string {
		raw, err := tokens.Issue(id, "x")
		require.NoError(t, err)
		return "Bearer " + raw
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"Missing", "", fiber.StatusUnauthorized},
		{"NotBearer", "Basic abc", fiber.StatusUnauthorized},
		{"Garbage", "Bearer abc", fiber.StatusUnauthorized},
		{"UnknownTenant", bearer("t-9"), fiber.StatusUnauthorized},
		{"Inactive", bearer("t-2"), fiber.StatusForbidden},
		{"Valid", bearer("t-1"), fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			_, err = uuid.Parse(resp.Header.Get(rayid.Header))
			assert.NoError(t, err, "every response carries a ray id")
		})
	}
}

func TestAuthMiddleware_LoaderError(t *testing.T) {
	app, tokens := setupApp(func(context.Context, string) (*store.Tenant, error) {
		return nil, errors.New("db down")
	})
	raw, err := tokens.Issue("t-1", "x")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
