package auth

import (
	"context"
	"errors"
	"strings"

	"commerce-sync/core/store"
	"commerce-sync/core/token"

	"github.com/gofiber/fiber/v2"
)

// TenantLoader loads the tenant a token refers to.
type TenantLoader func(ctx context.Context, id string) (*store.Tenant, error)

// Config configures the bearer token middleware.
type Config struct {
	Tokens *token.Manager
	Load   TenantLoader
}

// New rejects requests without a valid bearer token for an existing, active
// tenant and stores the tenant under the "tenant" and "tenant_id" locals.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Access token required"})
		}

		claims, err := cfg.Tokens.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		tenant, err := cfg.Load(c.UserContext(), claims.TenantID)
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Tenant not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load tenant"})
		}
		if !tenant.IsActive {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account is inactive"})
		}

		c.Locals("tenant", tenant)
		c.Locals("tenant_id", tenant.ID)
		return c.Next()
	}
}

// Tenant returns the tenant stored by the middleware.
func Tenant(c *fiber.Ctx) *store.Tenant {
	t, _ := c.Locals("tenant").(*store.Tenant)
	return t
}

// TenantID returns the id of the authenticated tenant.
func TenantID(c *fiber.Ctx) string {
	id, _ := c.Locals("tenant_id").(string)
	return id
}
