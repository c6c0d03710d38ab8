package internal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficlens/internal"
	"trafficlens/internal/charts"
	"trafficlens/internal/config"
	"trafficlens/internal/testsupport"
	"trafficlens/internal/window"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	cfg.Environment = config.Test
	return cfg
}

func runPipeline(t *testing.T, cfg *config.Config, csv string) (*internal.Application, *internal.Result) {
	t.Helper()
	app, err := internal.NewApp(cfg, testsupport.GetLogger())
	require.NoError(t, err)

	result, err := app.Run(context.Background(), testsupport.WriteCSV(t, csv))
	require.NoError(t, err)
	return app, result
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	_, result := runPipeline(t, cfg, testsupport.ScenarioCSV)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, window.EngineNative, result.Engine)
	assert.Len(t, result.Visits, 6)
	assert.Len(t, result.Windows, 6)
	assert.Equal(t, int64(120), result.Summary.TotalVisitors)
	assert.Len(t, result.Charts, 5)
}

func TestRunTagsLogsWithRunID(t *testing.T) {
	cfg := testConfig(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	app, err := internal.NewApp(cfg, logger)
	require.NoError(t, err)
	result, err := app.Run(context.Background(), testsupport.WriteCSV(t, testsupport.ScenarioCSV))
	require.NoError(t, err)

	tag := "run_id=" + result.RunID
	for _, msg := range []string{"Pipeline started", "Loaded traffic file", "Computed window statistics", "Pipeline finished"} {
		var line string
		for _, l := range strings.Split(buf.String(), "\n") {
			if strings.Contains(l, msg) {
				line = l
				break
			}
		}
		require.NotEmpty(t, line, msg)
		assert.Contains(t, line, tag, msg)
	}
}

func TestRunEnginesAgree(t *testing.T) {
	cfg := testConfig(t)
	_, native := runPipeline(t, cfg, testsupport.TiesCSV)

	cfg.Engine = config.DuckDBEngine
	_, duck := runPipeline(t, cfg, testsupport.TiesCSV)

	require.Len(t, duck.Windows, len(native.Windows))
	for i := range native.Windows {
		assert.Equal(t, native.Windows[i].Seq, duck.Windows[i].Seq)
		assert.Equal(t, native.Windows[i].Rank, duck.Windows[i].Rank)
	}
}

func TestRunNormalizesLabels(t *testing.T) {
	cfg := testConfig(t)
	csv := "Date,Device Category,Browser,# of Visitors,Sessions,Bounce Rate\n" +
		"2019-01-01,Desktop,Chrome Mobile,3,3,40\n" +
		"2019-01-02,desktop,chrome,4,4,40\n"

	_, result := runPipeline(t, cfg, csv)
	assert.Equal(t, []string{"desktop"}, window.Partitions(result.Windows))
	assert.Equal(t, "Chrome", result.Visits[0].Browser)
	assert.Equal(t, "Chrome", result.Visits[1].Browser)
}

func TestRunMissingColumn(t *testing.T) {
	cfg := testConfig(t)
	app, err := internal.NewApp(cfg, testsupport.GetLogger())
	require.NoError(t, err)

	_, err = app.Run(context.Background(), testsupport.WriteCSV(t, "Date,Browser\n2019-01-01,Chrome\n"))
	assert.Error(t, err)
}

func TestPersistWritesNothingByDefault(t *testing.T) {
	cfg := testConfig(t)
	app, result := runPipeline(t, cfg, testsupport.ScenarioCSV)

	require.NoError(t, app.Persist(result))

	entries, err := os.ReadDir(".")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPersist(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.ChartsDirectory = filepath.Join(dir, "charts")
	cfg.ExportPath = filepath.Join(dir, "windows.xlsx")

	app, result := runPipeline(t, cfg, testsupport.ScenarioCSV)
	require.NoError(t, app.Persist(result))

	_, err := os.Stat(filepath.Join(cfg.ChartsDirectory, charts.DailyVisitors+".png"))
	assert.NoError(t, err)
	_, err = os.Stat(cfg.ExportPath)
	assert.NoError(t, err)
}

func TestServerRoutes(t *testing.T) {
	cfg := testConfig(t)
	_, result := runPipeline(t, cfg, testsupport.ScenarioCSV)
	app := internal.NewServer(cfg, result.Dataset(), testsupport.GetLogger())

	t.Run("health", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, result.RunID, body["run_id"])
	})

	t.Run("windows filtered", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/windows?device=Mobile&limit=2", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Total int `json:"total"`
			Rows  []struct {
				DeviceCategory string `json:"device_category"`
				RowNumber      int    `json:"row_number"`
				Lag            *int   `json:"lag"`
				Max            int    `json:"max"`
			} `json:"rows"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 3, body.Total)
		require.Len(t, body.Rows, 2)
		assert.Equal(t, "mobile", body.Rows[0].DeviceCategory)
		assert.Nil(t, body.Rows[0].Lag)
		require.NotNil(t, body.Rows[1].Lag)
		assert.Equal(t, 10, *body.Rows[1].Lag)
		assert.Equal(t, 30, body.Rows[1].Max)
	})

	t.Run("unknown device", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/windows?device=tv", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/windows?limit=abc", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("summary", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/summary", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body["conclusion"], "After the peak in 2018")
		assert.NotNil(t, body["trend"])

		factors, ok := body["conclusion_factors"].([]interface{})
		require.True(t, ok)
		assert.Len(t, factors, 4)

		summary, ok := body["summary"].(map[string]interface{})
		require.True(t, ok)
		assert.NotContains(t, summary, "year_over_year")
		assert.Len(t, summary["bounce_rate_by_device"], 2)
	})

	t.Run("chart", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/charts/top-devices.png", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "\x89PNG", string(data[:4]))
	})

	t.Run("missing chart", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/charts/nope.png", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}
