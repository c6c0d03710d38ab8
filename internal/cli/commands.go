package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"trafficlens/internal/charts"
	"trafficlens/internal/export"
	"trafficlens/internal/report"
	"trafficlens/internal/window"
)

func newReportCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <csv>",
		Short: "Run the whole pipeline and print tables, trend and conclusion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.app()
			if err != nil {
				return err
			}
			result, err := app.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := app.Persist(result); err != nil {
				return err
			}
			return report.Display(c.printer, result.Windows, result.Summary, c.cfg.DisplayRows)
		},
	}
	cmd.Flags().IntP("limit", "n", 0, "window rows to display (default from config, 0 shows every row)")
	cmd.Flags().String("export", "", "write the window table to a .csv or .xlsx file")
	cmd.Flags().String("out", "", "write charts as PNG files to this directory")
	cmd.Flags().Bool("extended", false, "also render monthly, hourly, browser, box plot and timestamp charts")
	return cmd
}

func newWindowsCommand(c *cli) *cobra.Command {
	var device string

	cmd := &cobra.Command{
		Use:   "windows <csv>",
		Short: "Print the window statistics table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.app()
			if err != nil {
				return err
			}
			visits, err := app.Load(args[0])
			if err != nil {
				return err
			}
			rows, err := app.Windows(cmd.Context(), visits)
			if err != nil {
				return err
			}

			rows = window.Filter(rows, device)
			if device != "" && len(rows) == 0 {
				c.printer.Warning("no rows for device category %q", device)
				return nil
			}

			if path := c.cfg.ExportPath; path != "" {
				if err := export.Write(path, export.WindowTable(rows), c.logger); err != nil {
					return err
				}
				c.printer.Success("exported %d rows to %s", len(rows), path)
			}
			return report.WindowTable(c.printer, rows, c.cfg.DisplayRows)
		},
	}
	cmd.Flags().StringVarP(&device, "device", "d", "", "only show this device category")
	cmd.Flags().IntP("limit", "n", 0, "rows to display (default from config, 0 shows every row)")
	cmd.Flags().String("export", "", "write the rows to a .csv or .xlsx file")
	return cmd
}

func newChartsCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts <csv>",
		Short: "Render the charts to PNG files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.ChartsDirectory == "" {
				return fmt.Errorf("no output directory: pass --out or set chartsdir")
			}
			app, err := c.app()
			if err != nil {
				return err
			}
			result, err := app.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := charts.WriteFiles(c.cfg.ChartsDirectory, result.Charts, c.logger); err != nil {
				return err
			}
			c.printer.Success("wrote %d charts to %s", len(result.Charts), c.cfg.ChartsDirectory)
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "", "directory for the PNG files")
	cmd.Flags().Bool("extended", false, "also render monthly, hourly, browser, box plot and timestamp charts")
	return cmd
}

func newServeCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <csv>",
		Short: "Serve the report over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.app()
			if err != nil {
				return err
			}
			result, err := app.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printer.Info("serving %d rows on port %s", len(result.Windows), c.cfg.GetPort())
			return app.Serve(cmd.Context(), result)
		},
	}
	cmd.Flags().StringP("port", "p", "", "listen port (default from config)")
	cmd.Flags().Bool("extended", false, "also render monthly, hourly, browser, box plot and timestamp charts")
	return cmd
}

func newVersionCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.printer.Print("trafficlens %s (%s %s/%s)", c.version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
