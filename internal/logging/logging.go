// Package logging builds the application's slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"trafficlens/internal/config"
)

// New returns a logger writing to stderr. When a logs directory is configured
// the output is also written as JSON to a rotated file in that directory.
func New(cfg *config.Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit console writer. Production always logs
// JSON to the console.
func NewWithWriter(cfg *config.Config, console io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.GetLogLevel())}

	var handler slog.Handler
	if cfg.IsProduction() || strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(console, opts)
	} else {
		handler = slog.NewTextHandler(console, opts)
	}

	if dir := cfg.GetLogDirectory(); dir != "" {
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(dir, cfg.AppName+".log"),
			MaxSize:    cfg.LogsMaxSizeInMb,
			MaxBackups: cfg.LogsMaxBackups,
			MaxAge:     cfg.LogsMaxAgeInDays,
			Compress:   true,
		}
		handler = &teeHandler{
			primary:   handler,
			secondary: slog.NewJSONHandler(rotator, opts),
		}
	}

	return slog.New(handler).With(slog.String("app", cfg.AppName))
}

// ParseLevel maps a config log level to a slog level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case string(config.LogLevelDebug):
		return slog.LevelDebug
	case string(config.LogLevelWarn):
		return slog.LevelWarn
	case string(config.LogLevelError):
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
