package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness reports that the process serves requests.
func (h *HealthHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// Readiness checks the run history database.
func (h *HealthHandler) Readiness(c fiber.Ctx) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  err.Error(),
			})
		}
	}
	return c.JSON(fiber.Map{
		"status": "ready",
	})
}

func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health/live", h.Liveness)
	router.Get("/health/ready", h.Readiness)
}
