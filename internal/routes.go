package internal

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"trafficlens/internal/config"
	"trafficlens/internal/http"
	"trafficlens/internal/http/middleware"
)

// apiCORSConfig allows read-only cross-origin access to the report API.
var apiCORSConfig = cors.Config{
	AllowOrigins: "*",
	AllowMethods: "GET,HEAD,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept",
}

// NewServer creates the fiber app serving dataset.
func NewServer(cfg *config.Config, dataset http.Dataset, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	MountAppRoutes(app, http.NewHandlers(dataset, logger), cfg, logger)
	return app
}

// MountAppRoutes mounts the report routes on app.
func MountAppRoutes(app *fiber.App, h *http.Handlers, cfg *config.Config, logger *slog.Logger) {
	app.Get("/health", h.HealthIndexAction)
	app.Head("/health", h.HealthIndexAction)

	api := app.Group("/api", cors.New(apiCORSConfig))
	api.Get("/windows",
		middleware.DeviceFilter(h.Devices(), logger),
		middleware.LimitFilter(cfg.DisplayRows, logger),
		h.WindowsIndexAction,
	)
	api.Get("/summary", h.SummaryIndexAction)
	api.Get("/charts", h.ChartsIndexAction)

	app.Get("/charts/:name.png", h.ChartShowAction)
}
