package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Engine    string    `json:"engine"`
	Rows      int       `json:"rows"`
}

// HealthIndexAction handles the health check endpoint
func (h *Handlers) HealthIndexAction(c *fiber.Ctx) error {
	health := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		RunID:     h.dataset.RunID,
		Engine:    h.dataset.Engine,
		Rows:      len(h.dataset.Windows),
	}

	if len(h.dataset.Windows) == 0 {
		health.Status = "degraded"
	}

	return c.JSON(health)
}
