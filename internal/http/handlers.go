// Package http serves a computed report over HTTP.
package http

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/guregu/null/v5"

	"trafficlens/internal/analytics"
	"trafficlens/internal/charts"
	"trafficlens/internal/http/middleware"
	"trafficlens/internal/report"
	"trafficlens/internal/window"
)

// Dataset is the in-memory result the handlers serve.
type Dataset struct {
	RunID   string
	Engine  string
	Windows []window.Row
	Summary *analytics.Summary
	Charts  []charts.Chart
}

// Handlers holds the dataset and logger shared by every route.
type Handlers struct {
	dataset Dataset
	logger  *slog.Logger
}

// NewHandlers creates handlers over dataset.
func NewHandlers(dataset Dataset, logger *slog.Logger) *Handlers {
	return &Handlers{dataset: dataset, logger: logger}
}

// Devices lists the device categories present in the dataset.
func (h *Handlers) Devices() []string {
	return window.Partitions(h.dataset.Windows)
}

// WindowRow is the JSON shape of an annotated row.
type WindowRow struct {
	Timestamp      string   `json:"timestamp"`
	Date           string   `json:"date"`
	Weekday        string   `json:"weekday"`
	DeviceCategory string   `json:"device_category"`
	Browser        string   `json:"browser"`
	Visitors       int      `json:"visitors"`
	Sessions       int      `json:"sessions"`
	BounceRate     int      `json:"bounce_rate"`
	RowNum         int      `json:"row_number"`
	Rank           int      `json:"rank"`
	DenseRank      int      `json:"dense_rank"`
	Count          int      `json:"count"`
	First          int      `json:"first"`
	Last           int      `json:"last"`
	Min            int      `json:"min"`
	Max            int      `json:"max"`
	Nth            null.Int `json:"nth"`
	Lag            null.Int `json:"lag"`
	Lead           null.Int `json:"lead"`
	PercentRank    float64  `json:"percent_rank"`
	Ntile          int      `json:"ntile"`
}

func newWindowRow(r window.Row) WindowRow {
	return WindowRow{
		Timestamp:      r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		Date:           r.Date.Format("2006-01-02"),
		Weekday:        r.Weekday,
		DeviceCategory: r.DeviceCategory,
		Browser:        r.Browser,
		Visitors:       r.Visitors,
		Sessions:       r.Sessions,
		BounceRate:     r.BounceRate,
		RowNum:         r.RowNum,
		Rank:           r.Rank,
		DenseRank:      r.DenseRank,
		Count:          r.Count,
		First:          r.First,
		Last:           r.Last,
		Min:            r.Min,
		Max:            r.Max,
		Nth:            r.Nth,
		Lag:            r.Lag,
		Lead:           r.Lead,
		PercentRank:    r.PercentRank,
		Ntile:          r.Ntile,
	}
}

// WindowsIndexAction returns annotated rows, optionally for one device category.
func (h *Handlers) WindowsIndexAction(c *fiber.Ctx) error {
	device, _ := c.Locals(middleware.DeviceKey).(string)
	limit, _ := c.Locals(middleware.LimitKey).(int)

	filtered := window.Filter(h.dataset.Windows, device)
	rows := window.Head(filtered, limit)

	out := make([]WindowRow, len(rows))
	for i, r := range rows {
		out[i] = newWindowRow(r)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"total":   len(filtered),
		"rows":    out,
	})
}

// SummaryIndexAction returns the aggregates, trend and conclusion with its
// factors. The year-over-year comparison is part of the summary.
func (h *Handlers) SummaryIndexAction(c *fiber.Ctx) error {
	if h.dataset.Summary == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "No summary available",
		})
	}

	body := fiber.Map{
		"success":            true,
		"run_id":             h.dataset.RunID,
		"summary":            h.dataset.Summary,
		"conclusion":         report.Conclusion(),
		"conclusion_factors": report.ConclusionFactors(),
	}
	if trend, ok := report.Trends(h.dataset.Summary.Yearly); ok {
		body["trend"] = trend
	}
	return c.JSON(body)
}

// ChartsIndexAction lists the available chart names.
func (h *Handlers) ChartsIndexAction(c *fiber.Ctx) error {
	names := make([]fiber.Map, len(h.dataset.Charts))
	for i, ch := range h.dataset.Charts {
		names[i] = fiber.Map{"name": ch.Name, "title": ch.Title, "url": "/charts/" + ch.Name + ".png"}
	}
	return c.JSON(fiber.Map{"success": true, "charts": names})
}

// ChartShowAction serves one rendered chart as PNG.
func (h *Handlers) ChartShowAction(c *fiber.Ctx) error {
	name := strings.TrimSuffix(c.Params("name"), ".png")
	chart, ok := charts.Find(h.dataset.Charts, name)
	if !ok {
		h.logger.Debug("Chart not found", slog.String("name", name))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Chart not found",
		})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(chart.PNG)
}
