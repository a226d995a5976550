// Command forecast-narrator serves and runs the forecast report pipeline
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aouyang1/go-forecast-narrator/aireport"
	"github.com/aouyang1/go-forecast-narrator/config"
	"github.com/aouyang1/go-forecast-narrator/logging"
	"github.com/aouyang1/go-forecast-narrator/report"
	"github.com/spf13/cobra"
)

var (
	configPath string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "forecast-narrator",
	Short:         "Forecast a daily series and narrate the result",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("unable to load config, %w", err)
		}
		logger = logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, runCmd, sampleCmd)
}

// newBuilder wires the configured report writer into a pipeline builder
func newBuilder() (*report.Builder, bool, error) {
	writer, err := aireport.New(cfg.WriterConfig())
	if err != nil {
		return nil, false, fmt.Errorf("unable to create report writer, %w", err)
	}
	opt, err := cfg.ReportOptions(writer)
	if err != nil {
		return nil, false, err
	}
	b, err := report.New(opt)
	if err != nil {
		return nil, false, fmt.Errorf("unable to create report builder, %w", err)
	}
	return b, writer != nil, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
