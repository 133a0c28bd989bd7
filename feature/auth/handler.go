package auth

import (
	"errors"

	"commerce-sync/core/logger"
	authmw "commerce-sync/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for tenant accounts.
type Handler struct {
	service *Service
	protect fiber.Handler
}

// NewHandler creates a new HTTP handler. protect guards the profile route.
func NewHandler(service *Service, protect fiber.Handler) *Handler {
	return &Handler{service: service, protect: protect}
}

// RegisterRoutes registers the auth routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/auth")
	group.Post("/register", h.HandleRegister)
	group.Post("/login", h.HandleLogin)
	group.Get("/me", h.protect, h.HandleMe)
}

// HandleRegister creates a tenant.
// @Summary Register Tenant
// @Description Creates a tenant for a myshopify.com shop and returns a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration"
// @Success 201 {object} Session
// @Failure 400 {object} map[string]interface{} "Validation Error"
// @Failure 409 {object} map[string]string "Already Registered"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /api/auth/register [post]
func (h *Handler) HandleRegister(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	session, err := h.service.Register(c.UserContext(), req)
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// HandleLogin authenticates a tenant.
// @Summary Login
// @Description Verifies email and password and returns a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} Session
// @Failure 400 {object} map[string]interface{} "Validation Error"
// @Failure 401 {object} map[string]string "Invalid Credentials"
// @Failure 403 {object} map[string]string "Inactive Account"
// @Router /api/auth/login [post]
func (h *Handler) HandleLogin(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	session, err := h.service.Login(c.UserContext(), req)
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(session)
}

// HandleMe returns the authenticated tenant.
// @Summary Current Tenant
// @Description Returns the profile of the tenant owning the bearer token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]Profile
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/auth/me [get]
func (h *Handler) HandleMe(c *fiber.Ctx) error {
	tenant := authmw.Tenant(c)
	if tenant == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Access token required"})
	}
	return c.JSON(fiber.Map{"tenant": h.service.Me(tenant)})
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": ve.Fields})
	case errors.Is(err, ErrTenantExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email or shop domain already registered"})
	case errors.Is(err, ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	case errors.Is(err, ErrInactive):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account is inactive"})
	default:
		l.Error("Auth request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
