package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"commerce-sync/core/loader"
	"commerce-sync/core/logger"
	authmw "commerce-sync/core/middleware/auth"
	"commerce-sync/core/middleware/rayid"
	"commerce-sync/core/token"
	"commerce-sync/feature/auth"
	"commerce-sync/feature/insights"
	"commerce-sync/feature/syncjob"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "commerce-sync/docs/swagger"
)

// @title Commerce Sync API
// @version 1.0
// @description Tenant-scoped Shopify data sync and insights.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the commerce sync server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Configuration, logger, database and sync engine
		a, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer a.Close()
		logg := a.logger
		zap.ReplaceGlobals(logg)

		if a.cfg.Auth.Secret == "change-me" {
			logg.Warn("Using the default token secret; set AUTH_JWT_SECRET")
		}

		// 2. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 3. Middleware Registration
		// RayID must be first to trace everything
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			l.Info("Request handled",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("elapsed", time.Since(start)),
			)
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})
		app.Use(cors.New(cors.Config{
			AllowOrigins: a.cfg.Server.CorsOrigins,
			AllowHeaders: strings.Join([]string{fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept, fiber.HeaderAuthorization, rayid.Header}, ","),
		}))

		// 4. Public endpoints
		app.Get("/health", func(c *fiber.Ctx) error {
			status := "ok"
			if err := a.store.Ping(c.UserContext()); err != nil {
				status = "degraded"
			}
			return c.JSON(fiber.Map{"status": status, "timestamp": time.Now().UTC()})
		})
		app.Get(a.cfg.Server.MetricsPath, adaptor.HTTPHandler(a.metrics.Handler()))
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 5. Features
		tokens := token.NewManager(a.cfg.Auth)
		protect := authmw.New(authmw.Config{Tokens: tokens, Load: a.store.FindTenant})

		mgr := loader.NewManager()
		mgr.Register(auth.NewFeature(a.store, tokens, protect, logg))
		mgr.Register(syncjob.NewFeature(a.sync, protect))
		mgr.Register(insights.NewFeature(a.store, protect, logg))

		loaded, err := mgr.LoadAll(app.Group("/api"))
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		app.Use(func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found"})
		})

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port), zap.String("environment", a.cfg.Server.Environment))
			if err := app.Listen(":" + a.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.ShutdownWithTimeout(30 * time.Second)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
