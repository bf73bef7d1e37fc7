package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/NestyJo/video-chat-backend/internal/conference"
	"github.com/NestyJo/video-chat-backend/internal/config"
	"github.com/NestyJo/video-chat-backend/internal/database"
	"github.com/NestyJo/video-chat-backend/internal/handlers"
	"github.com/NestyJo/video-chat-backend/internal/invites"
	"github.com/NestyJo/video-chat-backend/internal/logging"
	"github.com/NestyJo/video-chat-backend/internal/middleware"
	"github.com/NestyJo/video-chat-backend/internal/notify"
	"github.com/NestyJo/video-chat-backend/internal/persistence"
	"github.com/NestyJo/video-chat-backend/internal/routes"
	"github.com/NestyJo/video-chat-backend/internal/scheduling"
	"github.com/NestyJo/video-chat-backend/internal/seed"
	"github.com/NestyJo/video-chat-backend/internal/services"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.AttachDatabase(db)

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cleanupDone)

	// Redis backs invite tokens and is optional.
	var issuer *invites.Issuer
	var redisPing func() error
	if cfg.RedisAddr != "" {
		client, err := invites.Connect(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			slog.Error("redis connection failed, invite links disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			issuer = invites.NewIssuer(client, cfg.InviteTTL)
			redisPing = func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return client.Ping(ctx).Err()
			}
			slog.Info("redis connected", "addr", cfg.RedisAddr)
		}
	}

	// NATS carries lifecycle events and is optional.
	var events scheduling.Events = scheduling.NoopEvents{}
	var publisher *notify.Publisher
	var natsPing func() error
	if cfg.NATSURL != "" {
		notifyCfg := notify.DefaultConfig()
		notifyCfg.URL = cfg.NATSURL
		notifyCfg.SubjectPrefix = cfg.NATSSubjectPrefix
		publisher, err = notify.NewPublisher(notifyCfg, slog.Default())
		if err != nil {
			slog.Error("nats connection failed, lifecycle events disabled", "url", cfg.NATSURL, "error", err)
		} else {
			events = publisher
			natsPing = publisher.IsHealthy
		}
	}

	// Scheduling core
	store := persistence.NewGormStore(db)
	generator := conference.NewGenerator()
	lifecycle := scheduling.NewLifecycle(store, generator, events, scheduling.LifecycleConfig{
		ProviderAppID:  cfg.ProviderAppID,
		PasswordLength: cfg.MeetingPasswordLength,
	})
	availability := scheduling.NewAvailabilityEngine(store)
	gate := scheduling.NewAccessGate(store, store, nil)
	links := conference.NewLinkBuilder(cfg.BaseURL)

	// Services
	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	meetingHandler := handlers.NewMeetingHandler(lifecycle, availability, gate, links, issuer)
	healthHandler := handlers.NewHealthHandler(db, redisPing, natsPing)

	if cfg.SeedDemoData {
		if err := seed.Run(context.Background(), db, lifecycle); err != nil {
			slog.Error("demo seed failed", "error", err)
		}
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, db, authHandler, userHandler, meetingHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	if publisher != nil {
		publisher.Close()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
