package insights

import (
	"errors"

	"commerce-sync/core/logger"
	authmw "commerce-sync/core/middleware/auth"
	"commerce-sync/core/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for dashboard insights.
type Handler struct {
	service *Service
	protect fiber.Handler
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, protect fiber.Handler) *Handler {
	// Force import for Swagger
	var _ = store.Overview{}
	return &Handler{service: service, protect: protect}
}

// RegisterRoutes registers the insights routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/insights", h.protect)
	group.Get("/overview", h.HandleOverview)
	group.Get("/orders-by-date", h.HandleOrdersByDate)
	group.Get("/top-customers", h.HandleTopCustomers)
	group.Get("/revenue-trend", h.HandleRevenueTrend)
}

// HandleOverview returns the tenant counters.
// @Summary Overview
// @Description Customer, product and order counts with total revenue and average order value.
// @Tags insights
// @Produce json
// @Security BearerAuth
// @Success 200 {object} store.Overview
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /api/insights/overview [get]
func (h *Handler) HandleOverview(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	out, err := h.service.Overview(c.UserContext(), authmw.TenantID(c))
	if err != nil {
		l.Error("Overview failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch overview data"})
	}
	return c.JSON(out)
}

// HandleOrdersByDate returns orders grouped per day.
// @Summary Orders By Date
// @Tags insights
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "First day (YYYY-MM-DD)"
// @Param endDate query string false "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {array} store.DailyTotal
// @Failure 400 {object} map[string]string "Invalid Date"
// @Router /api/insights/orders-by-date [get]
func (h *Handler) HandleOrdersByDate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	out, err := h.service.OrdersByDate(c.UserContext(), authmw.TenantID(c), c.Query("startDate"), c.Query("endDate"))
	if errors.Is(err, ErrInvalidDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Orders by date failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch orders by date"})
	}
	return c.JSON(out)
}

// HandleTopCustomers returns the biggest spenders.
// @Summary Top Customers
// @Tags insights
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of customers" default(5)
// @Success 200 {array} store.Customer
// @Router /api/insights/top-customers [get]
func (h *Handler) HandleTopCustomers(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	out, err := h.service.TopCustomers(c.UserContext(), authmw.TenantID(c), c.QueryInt("limit", 5))
	if err != nil {
		l.Error("Top customers failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch top customers"})
	}
	return c.JSON(out)
}

// HandleRevenueTrend returns daily revenue over a period.
// @Summary Revenue Trend
// @Tags insights
// @Produce json
// @Security BearerAuth
// @Param period query string false "7d, 30d or 90d" default(30d)
// @Success 200 {array} RevenuePoint
// @Router /api/insights/revenue-trend [get]
func (h *Handler) HandleRevenueTrend(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	out, err := h.service.RevenueTrend(c.UserContext(), authmw.TenantID(c), c.Query("period", "30d"))
	if err != nil {
		l.Error("Revenue trend failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch revenue trend"})
	}
	return c.JSON(out)
}
