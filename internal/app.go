// Package internal wires the pipeline stages into a runnable application
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime"
	"time"

	"github.com/google/uuid"

	"trafficlens/internal/analytics"
	"trafficlens/internal/charts"
	"trafficlens/internal/config"
	"trafficlens/internal/export"
	"trafficlens/internal/http"
	"trafficlens/internal/normalize"
	"trafficlens/internal/traffic"
	"trafficlens/internal/window"
)

// Result holds everything one pipeline run produced, in memory.
type Result struct {
	RunID   string
	Source  string
	Engine  string
	Visits  []traffic.VisitRecord
	Windows []window.Row
	Summary *analytics.Summary
	Charts  []charts.Chart
}

// Dataset exposes the result to the report server.
func (r *Result) Dataset() http.Dataset {
	return http.Dataset{
		RunID:   r.RunID,
		Engine:  r.Engine,
		Windows: r.Windows,
		Summary: r.Summary,
		Charts:  r.Charts,
	}
}

// Application runs the traffic pipeline with one configuration
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	engine window.Engine
}

// NewApp creates an application with the configured window engine
func NewApp(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	engine, err := window.New(cfg.Engine, logger)
	if err != nil {
		return nil, err
	}
	return &Application{Config: cfg, Logger: logger, engine: engine}, nil
}

// Load reads, enriches and casts the traffic file at path.
func (a *Application) Load(path string) ([]traffic.VisitRecord, error) {
	return a.load(path, a.Logger)
}

func (a *Application) load(path string, logger *slog.Logger) ([]traffic.VisitRecord, error) {
	raw, err := traffic.Load(path, traffic.LoadOptions{Delimiter: a.Config.DelimiterRune()}, logger)
	if err != nil {
		return nil, err
	}

	var n *normalize.Normalizer
	if a.Config.NormalizeLabels {
		n, err = normalize.Default()
		if err != nil {
			return nil, fmt.Errorf("label rules: %w", err)
		}
	}

	return traffic.Parse(raw, n)
}

// Windows computes the window statistics for visits.
func (a *Application) Windows(ctx context.Context, visits []traffic.VisitRecord) ([]window.Row, error) {
	return a.windows(ctx, visits, a.Logger)
}

func (a *Application) windows(ctx context.Context, visits []traffic.VisitRecord, logger *slog.Logger) ([]window.Row, error) {
	engine, err := window.New(a.engine.Name(), logger)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := engine.Compute(ctx, visits)
	if err != nil {
		return nil, fmt.Errorf("%s engine: %w", engine.Name(), err)
	}
	logger.Info("Computed window statistics",
		slog.String("engine", engine.Name()),
		slog.Int("rows", len(rows)),
		slog.Int("partitions", len(window.Partitions(rows))),
		slog.Duration("elapsed", time.Since(start)))
	return rows, nil
}

// Run executes the whole pipeline for the file at path. Nothing is written
// to disk here; see Persist.
func (a *Application) Run(ctx context.Context, path string) (*Result, error) {
	runID := uuid.NewString()
	logger := a.Logger.With(slog.String("run_id", runID))
	logger.Info("Pipeline started", slog.String("path", path), slog.String("engine", a.engine.Name()))

	visits, err := a.load(path, logger)
	if err != nil {
		return nil, err
	}

	rows, err := a.windows(ctx, visits, logger)
	if err != nil {
		return nil, err
	}

	summary, err := analytics.Summarize(visits, analytics.Options{HistogramBins: a.Config.HistogramBins})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	rendered, err := charts.Render(ctx, summary, a.chartOptions())
	if err != nil {
		return nil, err
	}

	logger.Info("Pipeline finished",
		slog.Int("visits", len(visits)),
		slog.Int("charts", len(rendered)))

	return &Result{
		RunID:   runID,
		Source:  path,
		Engine:  a.engine.Name(),
		Visits:  visits,
		Windows: rows,
		Summary: summary,
		Charts:  rendered,
	}, nil
}

func (a *Application) chartOptions() charts.Options {
	return charts.Options{
		Width:    a.Config.ChartWidth,
		Height:   a.Config.ChartHeight,
		Extended: a.Config.ExtendedCharts,
		Workers:  runtime.NumCPU(),
	}
}

// Persist writes charts and the window export when their destinations are
// configured. With neither set it writes nothing.
func (a *Application) Persist(result *Result) error {
	if dir := a.Config.ChartsDirectory; dir != "" {
		if err := charts.WriteFiles(dir, result.Charts, a.Logger); err != nil {
			return err
		}
	}
	if path := a.Config.ExportPath; path != "" {
		if err := export.Write(path, export.WindowTable(result.Windows), a.Logger); err != nil {
			return fmt.Errorf("export windows: %w", err)
		}
	}
	return nil
}

// Serve runs the report server over result until ctx is cancelled.
func (a *Application) Serve(ctx context.Context, result *Result) error {
	app := NewServer(a.Config, result.Dataset(), a.Logger)
	addr := net.JoinHostPort("", a.Config.GetPort())

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Report server listening", slog.String("addr", addr), slog.String("run_id", result.RunID))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		a.Logger.Info("Report server stopped")
		return nil
	}
}
