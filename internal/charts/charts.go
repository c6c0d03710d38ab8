// Package charts renders the report charts as PNG images in memory.
package charts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trafficlens/internal/analytics"
	"trafficlens/internal/pkg/async"
)

// ErrNoData is returned when a chart has nothing to plot.
var ErrNoData = errors.New("no data to chart")

// Chart names, also used as file names.
const (
	TopDevices          = "top-devices"
	DailyVisitors       = "daily-visitors"
	WeekdayAverages     = "weekday-averages"
	BounceRateHistogram = "bounce-rate-histogram"
	VisitorsVsBounce    = "visitors-vs-bounce"
	MonthlyVisitors     = "monthly-visitors"
	HourlyVisitors      = "hourly-visitors"
	TopBrowsers         = "top-browsers"
	BounceRateByDevice  = "bounce-rate-by-device"
	VisitorsOverTime    = "visitors-over-time"
)

// Options controls chart size and which charts are produced.
type Options struct {
	Width    int
	Height   int
	Extended bool
	// Workers renders that many charts concurrently; values below 1 mean one.
	Workers int
}

// Chart is a rendered PNG.
type Chart struct {
	Name  string
	Title string
	PNG   []byte
}

var titleCaser = cases.Title(language.English)

// Render draws the five standard charts and, when opts.Extended is set, five
// more: monthly and hourly visitors, browser bounce rates, a bounce-rate box
// plot per device category and visitors per timestamp. Charts without data
// are skipped.
func Render(ctx context.Context, summary *analytics.Summary, opts Options) ([]Chart, error) {
	type job struct {
		name, title string
		draw        func() ([]byte, error)
	}

	jobs := []job{
		{TopDevices, "Top Device Categories by Visitors", func() ([]byte, error) {
			return countBars("Top Device Categories by Visitors", summary.TopDevices, true, opts)
		}},
		{DailyVisitors, "Daily Visitors", func() ([]byte, error) {
			return timeLine("Daily Visitors", summary.Daily, dayLayout, opts)
		}},
		{WeekdayAverages, "Average Visitors by Weekday", func() ([]byte, error) {
			return averageBars("Average Visitors by Weekday", summary.WeekdayAverages, opts)
		}},
		{BounceRateHistogram, "Bounce Rate Distribution", func() ([]byte, error) {
			return histogram("Bounce Rate Distribution", summary.BounceRates, opts)
		}},
		{VisitorsVsBounce, "Visitors vs Bounce Rate", func() ([]byte, error) {
			return scatter("Visitors vs Bounce Rate", summary.Scatter, opts)
		}},
	}
	if opts.Extended {
		jobs = append(jobs,
			job{MonthlyVisitors, "Monthly Visitors", func() ([]byte, error) {
				return timeLine("Monthly Visitors", summary.Monthly, monthLayout, opts)
			}},
			job{HourlyVisitors, "Visitors by Hour of Day", func() ([]byte, error) {
				return countBars("Visitors by Hour of Day", summary.Hourly, false, opts)
			}},
			job{TopBrowsers, "Top Browsers by Bounce Rate", func() ([]byte, error) {
				return averageBars("Top Browsers by Bounce Rate", summary.TopBrowsers, opts)
			}},
			job{BounceRateByDevice, "Bounce Rate by Device Category", func() ([]byte, error) {
				return boxPlot("Bounce Rate by Device Category", summary.BounceByDevice, opts)
			}},
			job{VisitorsOverTime, "Visitors over Time", func() ([]byte, error) {
				return timestampLine("Visitors over Time", summary.Timeline, opts)
			}},
		)
	}

	tasks := make([]async.Task[[]byte], len(jobs))
	for i, j := range jobs {
		draw := j.draw
		tasks[i] = async.Task[[]byte]{
			Name:    j.name,
			Execute: func(context.Context) ([]byte, error) { return draw() },
		}
	}

	results, err := async.NewPool[[]byte](opts.Workers).Execute(ctx, tasks)
	if err != nil {
		return nil, err
	}

	var out []Chart
	for _, j := range jobs {
		res := results[j.name]
		if errors.Is(res.Err, ErrNoData) {
			continue
		}
		if res.Err != nil {
			return nil, fmt.Errorf("render %s: %w", j.name, res.Err)
		}
		out = append(out, Chart{Name: j.name, Title: j.title, PNG: res.Data})
	}
	return out, nil
}

// Find returns the chart called name.
func Find(charts []Chart, name string) (Chart, bool) {
	for _, c := range charts {
		if c.Name == name {
			return c, true
		}
	}
	return Chart{}, false
}

// WriteFiles stores every chart as <dir>/<name>.png, creating dir if needed.
func WriteFiles(dir string, charts []Chart, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create charts directory: %w", err)
	}
	for _, c := range charts {
		path := filepath.Join(dir, c.Name+".png")
		if err := os.WriteFile(path, c.PNG, 0o644); err != nil {
			return fmt.Errorf("write chart %s: %w", c.Name, err)
		}
		logger.Debug("Wrote chart", slog.String("path", path), slog.Int("bytes", len(c.PNG)))
	}
	logger.Info("Charts written", slog.String("dir", dir), slog.Int("count", len(charts)))
	return nil
}

func background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
}

// pointStyle renders points only, without connecting lines.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    col,
	}
}

func encode(draw func(buf *bytes.Buffer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// upperBound returns a y-axis maximum with some headroom above peak.
func upperBound(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	return peak * 1.1
}
