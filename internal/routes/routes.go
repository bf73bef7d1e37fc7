package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/NestyJo/video-chat-backend/internal/config"
	"github.com/NestyJo/video-chat-backend/internal/handlers"
	"github.com/NestyJo/video-chat-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	meetingHandler *handlers.MeetingHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth endpoints are public with a stricter rate limit of 10 req/min per IP.
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// JWT is applied per route, never on a shared prefix, so the guest-facing
	// join endpoints below stay reachable without a token.
	jwt := middleware.JWTProtected(cfg)
	optionalJWT := middleware.OptionalJWT(cfg)

	api.Post("/auth/logout", jwt, authHandler.Logout)

	api.Get("/users/me", jwt, authHandler.Me)
	api.Put("/users/me", jwt, authHandler.UpdateMe)
	api.Put("/users/me/password", jwt, authHandler.ChangePassword)

	api.Post("/meetings", jwt, meetingHandler.Create)
	api.Get("/meetings", jwt, meetingHandler.List)
	api.Get("/meetings/availability", jwt, meetingHandler.Availability)
	api.Get("/meetings/:id", jwt, meetingHandler.Get)
	api.Put("/meetings/:id", jwt, meetingHandler.Update)
	api.Delete("/meetings/:id", jwt, meetingHandler.Cancel)
	api.Put("/meetings/:id/password", jwt, meetingHandler.UpdatePassword)
	api.Post("/meetings/:id/participants", jwt, meetingHandler.AddParticipants)
	api.Get("/meetings/:id/participants", jwt, meetingHandler.ListParticipants)
	api.Put("/meetings/:id/response", jwt, meetingHandler.Respond)
	api.Get("/meetings/:id/share-link", jwt, meetingHandler.ShareLink)

	// Join endpoints: authentication optional, guests allowed through to the
	// access gate.
	api.Post("/meetings/:id/join", optionalJWT, meetingHandler.Join)
	api.Post("/channels/:channel/join", optionalJWT, meetingHandler.JoinByChannel)
	api.Post("/join/:token", optionalJWT, meetingHandler.JoinByToken)

	// Admin user management
	admin := api.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Get("/users", userHandler.ListUsers)
	admin.Put("/users/:id/active", userHandler.SetUserActive)
}
