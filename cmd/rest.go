package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	quotaRest "github.com/AzielCF/az-storage/quota/adapter/rest"
	"github.com/AzielCF/az-storage/ui/rest"
	"github.com/AzielCF/az-storage/ui/rest/middleware"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the upload and quota API over http",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(cmd *cobra.Command, _ []string) {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc, err := buildServices(ctx)
	if err != nil {
		logrus.Fatalf("[REST] Failed to initialize services: %v", err)
	}
	defer svc.Close()

	cfg := appConfig
	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.App.BodyLimit,
		Network:               "tcp",
		AppName:               "az-storage " + cfg.App.Version,
		DisableStartupMessage: !cfg.App.Debug,
		ServerHeader:          "Hidden",
	})

	// Security: RequestID for audit trails
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.App.CorsAllowedOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000, // 1 Year
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	rest.InitRestHealth(app.Group(cfg.App.BasePath), svc.healthChecks())

	apiGroup := app.Group(cfg.App.BasePath + "/api")

	quotaHandler := quotaRest.NewQuotaHandler(svc.subs, svc.usage, svc.elig, svc.uploads, svc.storage, svc.profiles).
		WithSettings(svc.settings)

	// Public routes go before the auth middleware is mounted on the group.
	quotaHandler.RegisterPublicRoutes(apiGroup)

	protected := apiGroup.Group("", middleware.Auth(svc.signer))
	quotaHandler.RegisterRoutes(protected)
	rest.InitRestCache(protected, svc.cache)
	rest.InitRestSettings(protected, svc.settings)

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	svc.cache.StartSweeper(ctx, cfg.Cache.SweepInterval)

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
	}()

	logrus.WithFields(cfg.Settings()).Infof("[REST] Listening on :%s", cfg.App.Port)
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Errorf("[REST] Failed to start: %v", err)
	}
	logrus.Info("[APP] Application stopped cleanly.")
}
