package syncjob

import (
	"context"
	"errors"

	"commerce-sync/core/lock"
	"commerce-sync/core/logger"
	authmw "commerce-sync/core/middleware/auth"
	"commerce-sync/core/reconcile"
	"commerce-sync/core/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for shop connection and syncs.
type Handler struct {
	service *Service
	protect fiber.Handler
}

// NewHandler creates a new HTTP handler. protect authenticates the tenant.
func NewHandler(service *Service, protect fiber.Handler) *Handler {
	return &Handler{service: service, protect: protect}
}

// RegisterRoutes registers the shopify routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/shopify", h.protect)
	group.Post("/connect", h.HandleConnect)
	group.Post("/sync", h.HandleSync)
	group.Get("/sync/runs", h.HandleRuns)
	group.Get("/sync/reports", h.HandleReports)
	group.Get("/sync/runs/:id/report", h.HandleReport)
}

// ConnectRequest carries the Admin API access token of the shop.
type ConnectRequest struct {
	AccessToken string `json:"access_token"`
	// AccessTokenCamel is the spelling sent by older clients.
	AccessTokenCamel string `json:"accessToken,omitempty" swaggerignore:"true"`
}

// Token returns the access token under either spelling.
func (r ConnectRequest) Token() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.AccessTokenCamel
}

// HandleConnect stores the shop's access token.
// @Summary Connect Shop
// @Description Stores the Admin API access token used by subsequent syncs.
// @Tags shopify
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ConnectRequest true "Access token"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Missing Token"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /api/shopify/connect [post]
func (h *Handler) HandleConnect(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req ConnectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	err := h.service.Connect(c.UserContext(), authmw.TenantID(c), req.Token())
	if errors.Is(err, ErrMissingToken) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Access token is required"})
	}
	if err != nil {
		l.Error("Connect failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to connect shop"})
	}

	return c.JSON(fiber.Map{"message": "Shop connected successfully"})
}

// HandleSync runs a full sync of the tenant's shop.
// @Summary Sync Shop Data
// @Description Pulls customers, products and orders from the shop into the local store.
// @Tags shopify
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Sync Result"
// @Failure 400 {object} map[string]string "Shop Not Connected"
// @Failure 409 {object} map[string]string "Sync In Progress"
// @Failure 422 {object} map[string]interface{} "Malformed Record"
// @Failure 502 {object} map[string]interface{} "Upstream Error"
// @Failure 504 {object} map[string]interface{} "Transport Error"
// @Router /api/shopify/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering sync")

	res, err := h.service.Sync(c.UserContext(), authmw.TenantID(c))
	if err != nil {
		status := StatusFor(err)
		if status >= fiber.StatusInternalServerError {
			l.Error("Sync failed", zap.Error(err))
		}
		body := fiber.Map{"error": message(err), "details": err.Error()}
		if res != nil {
			body["run"] = res.Run
			body["counts"] = res.Report
		}
		return c.Status(status).JSON(body)
	}

	return c.JSON(fiber.Map{
		"message": "Data synced successfully",
		"run":     res.Run,
		"counts":  res.Report,
	})
}

// HandleRuns lists recent sync runs.
// @Summary List Sync Runs
// @Description Returns the latest sync runs of the tenant, newest first.
// @Tags shopify
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum runs" default(20)
// @Success 200 {array} store.SyncRun
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /api/shopify/sync/runs [get]
func (h *Handler) HandleRuns(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	runs, err := h.service.Runs(c.UserContext(), authmw.TenantID(c), c.QueryInt("limit", 20))
	if err != nil {
		l.Error("Listing sync runs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(runs)
}

// HandleReports lists the runs with an archived report.
// @Summary List Archived Reports
// @Tags shopify
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]string
// @Failure 404 {object} map[string]string "Archive Disabled"
// @Router /api/shopify/sync/reports [get]
func (h *Handler) HandleReports(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	ids, err := h.service.Reports(c.UserContext(), authmw.TenantID(c))
	if errors.Is(err, ErrArchiveDisabled) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Listing reports failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"runs": ids})
}

// HandleReport downloads the archived report of a run.
// @Summary Get Archived Report
// @Tags shopify
// @Produce json
// @Security BearerAuth
// @Param id path string true "Run ID"
// @Success 200 {object} ArchivedReport
// @Failure 404 {object} map[string]string "Not Found"
// @Router /api/shopify/sync/runs/{id}/report [get]
func (h *Handler) HandleReport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Report(c.UserContext(), authmw.TenantID(c), c.Params("id"))
	if errors.Is(err, ErrArchiveDisabled) || errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Fetching report failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// StatusFor maps a sync error to an HTTP status.
func StatusFor(err error) int {
	var (
		notConnected *reconcile.NotConnectedError
		upstream     *reconcile.UpstreamError
		transport    *reconcile.TransportError
		malformed    *reconcile.MalformedRecordError
	)
	switch {
	case errors.Is(err, ErrSyncInProgress), errors.Is(err, lock.ErrLost):
		return fiber.StatusConflict
	case errors.As(err, &notConnected):
		return fiber.StatusBadRequest
	case errors.As(err, &malformed):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &upstream):
		return fiber.StatusBadGateway
	case errors.As(err, &transport), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func message(err error) string {
	switch StatusFor(err) {
	case fiber.StatusConflict:
		return "A sync is already running for this shop"
	case fiber.StatusBadRequest:
		return "Shopify access token not configured. Please connect your store first."
	case fiber.StatusUnprocessableEntity:
		return "Shop returned a malformed record"
	case fiber.StatusBadGateway:
		return "Shop rejected the request"
	case fiber.StatusGatewayTimeout:
		return "Shop could not be reached"
	default:
		return "Failed to sync data from Shopify"
	}
}
