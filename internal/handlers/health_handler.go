package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/NestyJo/video-chat-backend/internal/database"
	"github.com/NestyJo/video-chat-backend/internal/dto"
)

// HealthHandler reports component health. Redis and NATS checks are nil when
// the component is not configured.
type HealthHandler struct {
	db        *gorm.DB
	redisPing func() error
	natsPing  func() error
}

func NewHealthHandler(db *gorm.DB, redisPing, natsPing func() error) *HealthHandler {
	return &HealthHandler{db: db, redisPing: redisPing, natsPing: natsPing}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Redis:     componentStatus(h.redisPing),
		NATS:      componentStatus(h.natsPing),
	})
}

func componentStatus(ping func() error) string {
	if ping == nil {
		return "disabled"
	}
	if err := ping(); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "ok"
}
