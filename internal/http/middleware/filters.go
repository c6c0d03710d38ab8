package middleware

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the filters.
const (
	DeviceKey = "device"
	LimitKey  = "limit"
)

// DeviceFilter sets the requested device category in the request context.
// Unknown categories are rejected with 404.
func DeviceFilter(known []string, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		device := strings.TrimSpace(c.Query("device", c.Get("X-Device-Category")))
		if device == "" {
			return c.Next()
		}

		for _, k := range known {
			if strings.EqualFold(k, device) {
				c.Locals(DeviceKey, k)
				logger.Debug("Applied device filter", slog.String("device", k))
				return c.Next()
			}
		}

		logger.Warn("Unknown device category requested", slog.String("device", device))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Unknown device category",
		})
	}
}

// LimitFilter parses the limit query parameter into the request context,
// falling back to defaultLimit.
func LimitFilter(defaultLimit int, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit")
		if limitStr == "" {
			c.Locals(LimitKey, defaultLimit)
			return c.Next()
		}

		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			logger.Warn("Invalid limit provided", slog.String("limit", limitStr))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid limit",
			})
		}
		c.Locals(LimitKey, limit)
		return c.Next()
	}
}
