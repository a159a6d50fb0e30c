package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "weathersuggest/internal/api/http"
	"weathersuggest/internal/config"
	"weathersuggest/internal/scheduler"
	"weathersuggest/internal/store"
	"weathersuggest/internal/suggest"
	"weathersuggest/internal/suggest/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.UpstreamTimeout,
	}

	// Durable history store.
	histStore, err := store.NewSQLiteStore(cfg.DBPath, cfg.ListDefaultLimit, cfg.ListMaxLimit)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer histStore.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 10*time.Second)
	err = histStore.Migrate(migrateCtx)
	cancelMigrate()
	if err != nil {
		log.Fatalf("failed to migrate store: %v", err)
	}

	// Upstream weather/air-quality source.
	source := providers.NewOpenWeatherSource(httpClient, cfg.OpenWeatherAPIKey)

	// Geocoder fallback is optional; without a key the air-quality lookup
	// relies on coordinates from the weather payload.
	var geo suggest.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geo = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}

	// Core service orchestrating source, rule engine and store.
	engine := suggest.NewEngine(nil)
	service := suggest.NewService(source, geo, histStore, engine, suggest.Config{
		UpstreamTimeout: cfg.UpstreamTimeout,
	})

	// Optional periodic refresh for tracked cities.
	sched := scheduler.New(cfg.TrackCities, cfg.TrackInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weathersuggest",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weathersuggest",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
