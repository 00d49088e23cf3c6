package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/byZeet/centralita-neron/internal/persistence"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	postgres *persistence.Postgres
	redis    *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(pg *persistence.Postgres, rd *persistence.Redis) *HealthHandler {
	return &HealthHandler{postgres: pg, redis: rd}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready. Postgres must answer; Redis is reported but does
// not fail readiness since the event stream is best-effort.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{"postgres": "ok", "redis": "ok"}
	status := fiber.StatusOK

	if h.postgres == nil || h.postgres.Pool == nil {
		checks["postgres"] = "not configured"
		status = fiber.StatusServiceUnavailable
	} else if err := h.postgres.Pool.Ping(c.Context()); err != nil {
		checks["postgres"] = err.Error()
		status = fiber.StatusServiceUnavailable
	}

	if err := h.redis.Ping(c.Context()); err != nil {
		checks["redis"] = err.Error()
	}

	return c.Status(status).JSON(fiber.Map{"checks": checks})
}
