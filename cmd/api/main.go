package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"screw-inspection/interfaces/api/handlers"
	"screw-inspection/interfaces/api/middleware"
	"screw-inspection/interfaces/api/routes"
	"screw-inspection/pkg/di"
	"screw-inspection/pkg/logger"
)

// @title Screw Inspection API
// @version 1.0
// @description Real-time screw counting and inspection record keeping for assembly lines

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger
	if err := logger.Init("logs", true); err != nil {
		fmt.Printf("Warning: Failed to initialize logger: %v\n", err)
	}
	logger.Startup("logger_init", "Logger initialized - logs will be written to ./logs/", nil)

	// Initialize DI container
	container := di.NewContainer()

	// Initialize all dependencies
	if err := container.Initialize(); err != nil {
		logger.StartupError("container_init_failed", "Failed to initialize container", err, nil)
		os.Exit(1)
	}
	cfg := container.GetConfig()

	// Create Fiber app
	bodyLimit := cfg.Inference.MaxFrameBytes
	if int64(bodyLimit) < cfg.Storage.MaxArtifactBytes {
		bodyLimit = int(cfg.Storage.MaxArtifactBytes)
	}
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
		AppName:      cfg.App.Name,
		BodyLimit:    bodyLimit + 1<<20,
		ReadTimeout:  2 * time.Minute,
	})

	// Setup middleware
	app.Use(middleware.RecoverMiddleware())
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.CorsMiddleware())
	app.Use("/api", middleware.RateLimiter(&cfg.RateLimit))

	// Create handlers from services
	h := handlers.NewHandlers(container.GetHandlerServices(), container.GetHandlerInfrastructure())

	// Setup routes
	routes.SetupRoutes(app, h, cfg, container.WSManager)

	if container.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(container.Registry, promhttp.HandlerOpts{
			ErrorHandling: promhttp.ContinueOnError,
		})))
	}

	// Setup graceful shutdown
	setupGracefulShutdown(app, container)

	// Start server
	port := cfg.App.Port
	logger.Startup("server_starting", "Server starting", map[string]interface{}{
		"port":        port,
		"environment": cfg.App.Env,
		"health":      fmt.Sprintf("http://localhost:%s/health", port),
		"api":         fmt.Sprintf("http://localhost:%s/api/v1", port),
		"websocket":   fmt.Sprintf("ws://localhost:%s/ws/inspections", port),
		"metrics":     fmt.Sprintf("http://localhost:%s/metrics", port),
	})

	if err := app.Listen(":" + port); err != nil {
		logger.StartupError("server_failed", "Server failed to start", err, nil)
		os.Exit(1)
	}
}

func setupGracefulShutdown(app *fiber.App, container *di.Container) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Startup("shutdown_started", "Gracefully shutting down", nil)

		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			logger.StartupError("server_shutdown_failed", "Error shutting down server", err, nil)
		}

		if err := container.Cleanup(); err != nil {
			logger.StartupError("cleanup_failed", "Error during cleanup", err, nil)
		}

		logger.Startup("shutdown_complete", "Shutdown complete", nil)
		os.Exit(0)
	}()
}
