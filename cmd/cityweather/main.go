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
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/i474232898/cityweather/internal/api/http"
	"github.com/i474232898/cityweather/internal/config"
	"github.com/i474232898/cityweather/internal/icon"
	"github.com/i474232898/cityweather/internal/scheduler"
	"github.com/i474232898/cityweather/internal/store"
	"github.com/i474232898/cityweather/internal/weather"
	"github.com/i474232898/cityweather/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider and icon calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey,
		providers.WithBaseURL(cfg.OpenWeatherBaseURL),
		providers.WithIconBaseURL(cfg.IconBaseURL),
		providers.WithLocation(cfg.Location),
	)
	service := weather.NewService(provider, cfg.DefaultCity, cfg.FetchTimeout)

	icons, err := icon.NewLoader(httpClient, cfg.IconWidth, cfg.IconHeight, cfg.IconCacheSize)
	if err != nil {
		log.Fatalf("failed to create icon loader: %v", err)
	}

	screens := store.NewMemoryStore(cfg.MaxScreens)

	// Janitor that closes screens nobody polls anymore.
	sched := scheduler.New(screens, cfg.JanitorInterval, cfg.ScreenIdleTTL)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "cityweather",
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
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "cityweather",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:     service,
		Screens:     screens,
		Icons:       icons,
		BaseContext: ctx,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("INFO: listening on :%s", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})

	// Wait for termination signal (or a listener failure), then shut down.
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("server stopped: %v", err)
	}

	for _, sc := range screens.Drain() {
		sc.Close()
	}
}
