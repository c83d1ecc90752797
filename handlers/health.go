package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/database"
	"github.com/vpoint-tv/vpoint-api/utils/cache"
)

// HealthHandler reports liveness of the API and its backing stores
type HealthHandler struct {
	store database.Storage
	redis *cache.RedisCache
}

// NewHealthHandler creates a health handler. redis may be nil.
func NewHealthHandler(store database.Storage, redis *cache.RedisCache) *HealthHandler {
	return &HealthHandler{store: store, redis: redis}
}

// Ping handles GET /ping
func (h *HealthHandler) Ping(c *fiber.Ctx) error {
	checks := fiber.Map{"database": "ok"}
	status := "ok"

	if err := h.store.HealthCheck(); err != nil {
		checks["database"] = err.Error()
		status = "degraded"
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			status = "degraded"
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "disabled"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{"status": status, "checks": checks})
}
