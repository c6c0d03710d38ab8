// Package cli contains the trafficlens commands
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"trafficlens/internal"
	"trafficlens/internal/config"
	"trafficlens/internal/logging"
	"trafficlens/internal/output"
)

// cli holds the global flags and the state initialised before every command.
type cli struct {
	cfgFile string
	engine  string
	verbose bool
	noColor bool
	color   string
	version string

	out    io.Writer
	errOut io.Writer

	cfg     *config.Config
	logger  *slog.Logger
	printer *output.Printer
}

// NewRootCommand builds the command tree writing to out and errOut.
func NewRootCommand(version string, out, errOut io.Writer) *cobra.Command {
	c := &cli{version: version, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "trafficlens",
		Short: "Website traffic window analytics",
		Long: `trafficlens loads a website-traffic export, computes window statistics
partitioned by device category and renders charts and a trend summary.

Example usage:
  trafficlens report traffic.csv              # Tables, trend and conclusion
  trafficlens windows traffic.csv -d mobile   # Window statistics for one device
  trafficlens charts traffic.csv --out charts # Write the charts as PNG files
  trafficlens serve traffic.csv               # Serve the report over HTTP`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is .trafficlens.yaml)")
	root.PersistentFlags().StringVarP(&c.engine, "engine", "e", "", "window engine: native, sqlite or duckdb")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&c.color, "color", "auto", "colored output: auto, always or never")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output, same as --color never")

	root.AddCommand(
		newReportCommand(c),
		newWindowsCommand(c),
		newChartsCommand(c),
		newServeCommand(c),
		newVersionCommand(c),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context, version string, out, errOut io.Writer, args []string) error {
	root := NewRootCommand(version, out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// init loads configuration with flags layered on top, then builds the logger
// and printer.
func (c *cli) init(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg, err := config.Load(c.cfgFile, func(v *viper.Viper) error {
		if f := flags.Lookup("engine"); f != nil && f.Changed {
			if err := v.BindPFlag("engine", f); err != nil {
				return err
			}
		}
		if c.verbose {
			v.Set("loglevel", string(config.LogLevelDebug))
		}
		if c.noColor {
			v.Set("nocolor", true)
		}
		return bindCommandFlags(cmd, v)
	})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c.cfg = cfg

	c.logger = logging.NewWithWriter(cfg, c.errOut)
	c.logger.Debug("configuration loaded",
		slog.String("engine", cfg.Engine),
		slog.String("environment", cfg.Environment),
		slog.String("delimiter", cfg.Delimiter))

	mode, err := output.ParseColorMode(c.color)
	if err != nil {
		return err
	}
	if cfg.NoColor {
		mode = output.ColorNever
	}
	c.printer = output.NewPrinter(c.out, output.ResolveColors(mode, c.out))
	return nil
}

// flagKeys maps command flags onto configuration keys.
var flagKeys = map[string]string{
	"limit":    "displayrows",
	"export":   "exportpath",
	"out":      "chartsdir",
	"extended": "extendedcharts",
	"port":     "serverport",
}

// bindCommandFlags lets explicitly set command flags override configuration.
func bindCommandFlags(cmd *cobra.Command, v *viper.Viper) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || !f.Changed || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

// app creates the pipeline application from the loaded configuration.
func (c *cli) app() (*internal.Application, error) {
	return internal.NewApp(c.cfg, c.logger)
}
