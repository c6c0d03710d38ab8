// Package config provides configuration management using Viper
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Window engine types
const (
	NativeEngine = "native"
	SQLiteEngine = "sqlite"
	DuckDBEngine = "duckdb"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`
	LogFormat   string   `mapstructure:"logformat"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Input settings
	Delimiter       string `mapstructure:"delimiter"`
	NormalizeLabels bool   `mapstructure:"normalizelabels"`

	// Window engine
	Engine string `mapstructure:"engine"`

	// Report settings
	DisplayRows     int    `mapstructure:"displayrows"`
	ChartWidth      int    `mapstructure:"chartwidth"`
	ChartHeight     int    `mapstructure:"chartheight"`
	HistogramBins   int    `mapstructure:"histogrambins"`
	ExtendedCharts  bool   `mapstructure:"extendedcharts"`
	ChartsDirectory string `mapstructure:"chartsdir"`
	ExportPath      string `mapstructure:"exportpath"`
	NoColor         bool   `mapstructure:"nocolor"`

	// Report server
	ServerPort string `mapstructure:"serverport"`
}

// Load builds a configuration from defaults, an optional YAML file, environment
// variables and whatever bind adds on top (usually command-line flags).
func Load(cfgFile string, bind func(v *viper.Viper) error) (*Config, error) {
	v := viper.New()

	v.SetDefault("appname", "trafficlens")
	v.SetDefault("environment", Development)
	v.SetDefault("loglevel", string(LogLevelInfo))
	v.SetDefault("logformat", "text")
	v.SetDefault("logsdir", "")
	v.SetDefault("logsmaxsizeinmb", 20)
	v.SetDefault("logsmaxbackups", 10)
	v.SetDefault("logsmaxageindays", 30)
	v.SetDefault("delimiter", ",")
	v.SetDefault("normalizelabels", true)
	v.SetDefault("engine", NativeEngine)
	v.SetDefault("displayrows", 20)
	v.SetDefault("chartwidth", 1024)
	v.SetDefault("chartheight", 512)
	v.SetDefault("histogrambins", 20)
	v.SetDefault("extendedcharts", false)
	v.SetDefault("chartsdir", "")
	v.SetDefault("exportpath", "")
	v.SetDefault("nocolor", false)
	v.SetDefault("serverport", "3000")

	v.BindEnv("appname", "TRAFFICLENS_APP_NAME")
	v.BindEnv("environment", "TRAFFICLENS_ENV")
	v.BindEnv("loglevel", "TRAFFICLENS_LOG_LEVEL")
	v.BindEnv("logformat", "TRAFFICLENS_LOG_FORMAT")
	v.BindEnv("logsdir", "TRAFFICLENS_LOGS_DIR")
	v.BindEnv("logsmaxsizeinmb", "TRAFFICLENS_LOGS_MAX_SIZE_IN_MB")
	v.BindEnv("logsmaxbackups", "TRAFFICLENS_LOGS_MAX_BACKUPS")
	v.BindEnv("logsmaxageindays", "TRAFFICLENS_LOGS_MAX_AGE_IN_DAYS")
	v.BindEnv("delimiter", "TRAFFICLENS_DELIMITER")
	v.BindEnv("normalizelabels", "TRAFFICLENS_NORMALIZE_LABELS")
	v.BindEnv("engine", "TRAFFICLENS_ENGINE")
	v.BindEnv("displayrows", "TRAFFICLENS_DISPLAY_ROWS")
	v.BindEnv("chartwidth", "TRAFFICLENS_CHART_WIDTH")
	v.BindEnv("chartheight", "TRAFFICLENS_CHART_HEIGHT")
	v.BindEnv("histogrambins", "TRAFFICLENS_HISTOGRAM_BINS")
	v.BindEnv("extendedcharts", "TRAFFICLENS_EXTENDED_CHARTS")
	v.BindEnv("chartsdir", "TRAFFICLENS_CHARTS_DIR")
	v.BindEnv("exportpath", "TRAFFICLENS_EXPORT_PATH")
	v.BindEnv("nocolor", "NO_COLOR")
	v.BindEnv("serverport", "TRAFFICLENS_SERVER_PORT")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName(".trafficlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/trafficlens")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	if bind != nil {
		if err := bind(v); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validEngines := map[string]bool{
		NativeEngine: true,
		SQLiteEngine: true,
		DuckDBEngine: true,
	}
	if !validEngines[c.Engine] {
		return fmt.Errorf("invalid engine: %s", c.Engine)
	}

	if len([]rune(c.Delimiter)) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}

	if c.HistogramBins < 1 {
		return fmt.Errorf("histogram bins must be positive, got %d", c.HistogramBins)
	}

	if c.ChartWidth < 100 || c.ChartHeight < 100 {
		return fmt.Errorf("chart size too small: %dx%d", c.ChartWidth, c.ChartHeight)
	}

	return nil
}

// DelimiterRune returns the configured field delimiter.
func (c *Config) DelimiterRune() rune {
	return []rune(c.Delimiter)[0]
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// GetLogLevel returns the log level as a string.
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// GetLogDirectory returns the logs directory. Empty means stderr only.
func (c *Config) GetLogDirectory() string {
	return c.LogsDirectory
}

// GetPort returns the report server port.
func (c *Config) GetPort() string {
	return c.ServerPort
}
