package logging_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficlens/internal/config"
	"trafficlens/internal/logging"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("bogus"))
}

func TestNewWithWriterRespectsLevel(t *testing.T) {
	cfg := &config.Config{AppName: "trafficlens", LogLevel: config.LogLevelWarn}
	var buf bytes.Buffer
	logger := logging.NewWithWriter(cfg, &buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("device", "mobile"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "device=mobile")
	assert.Contains(t, out, "app=trafficlens")
}

func TestNewWithWriterProductionLogsJSON(t *testing.T) {
	cfg := &config.Config{
		AppName:     "trafficlens",
		Environment: config.Production,
		LogLevel:    config.LogLevelInfo,
		LogFormat:   "text",
	}
	var buf bytes.Buffer
	logging.NewWithWriter(cfg, &buf).Info("pipeline finished", slog.Int("rows", 6))

	assert.Contains(t, buf.String(), `"msg":"pipeline finished"`)
	assert.Contains(t, buf.String(), `"rows":6`)
}

func TestNewWithWriterTeesToFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		AppName:          "trafficlens",
		LogLevel:         config.LogLevelInfo,
		LogsDirectory:    dir,
		LogsMaxSizeInMb:  1,
		LogsMaxBackups:   1,
		LogsMaxAgeInDays: 1,
	}
	var buf bytes.Buffer
	logger := logging.NewWithWriter(cfg, &buf)
	logger.Info("pipeline finished", slog.Int("rows", 6))

	data, err := os.ReadFile(filepath.Join(dir, "trafficlens.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"pipeline finished"`)
	assert.Contains(t, buf.String(), "pipeline finished")
}
