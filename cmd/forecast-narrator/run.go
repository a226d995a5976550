package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	forecaster "github.com/aouyang1/go-forecast-narrator"
	"github.com/aouyang1/go-forecast-narrator/report"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type runFlags struct {
	file       string
	dateCol    string
	valueCol   string
	horizon    int
	plot       string
	model      string
	cpuprofile string
}

var runOpt runFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute the forecast report of a CSV file and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runOpt.cpuprofile != "" {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(runOpt.cpuprofile), profile.Quiet).Stop()
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		builder, _, err := newBuilder()
		if err != nil {
			return err
		}
		return run(ctx, builder, runOpt, cmd.OutOrStdout())
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runOpt.file, "file", "", "CSV file to forecast")
	f.StringVar(&runOpt.dateCol, "date-col", "Date", "name of the date column")
	f.StringVar(&runOpt.valueCol, "value-col", "Close", "name of the value column")
	f.IntVar(&runOpt.horizon, "horizon", 0, "days to forecast, the configured default when 0")
	f.StringVar(&runOpt.plot, "plot", "", "write an html plot of the model fit to this path")
	f.StringVar(&runOpt.model, "model", "", "write the fitted model as JSON to this path")
	f.StringVar(&runOpt.cpuprofile, "cpuprofile", "", "write a cpu profile into this directory")
	_ = runCmd.MarkFlagRequired("file")
}

func run(ctx context.Context, builder *report.Builder, opt runFlags, out io.Writer) error {
	horizon := opt.horizon
	if horizon == 0 && cfg != nil {
		horizon = cfg.Forecast.DefaultHorizon
	}

	in, err := os.Open(opt.file)
	if err != nil {
		return fmt.Errorf("unable to open input, %w", err)
	}
	defer in.Close()

	resp, err := builder.Run(ctx, in, opt.dateCol, opt.valueCol, horizon)
	if err != nil {
		return err
	}

	if opt.plot != "" || opt.model != "" {
		if err := writeModelArtifacts(resp.Forecaster(), opt, horizon); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("unable to encode response, %w", err)
	}
	return nil
}

// writeModelArtifacts writes the plot and model of a model based forecast. Fallback forecasts have
// no fitted model so nothing is written.
func writeModelArtifacts(f *forecaster.Forecaster, opt runFlags, horizon int) error {
	if f == nil {
		if logger != nil {
			logger.Warn("forecast used the linear fallback, skipping plot and model output")
		}
		return nil
	}

	if opt.plot != "" {
		file, err := os.Create(opt.plot)
		if err != nil {
			return fmt.Errorf("unable to create plot file, %w", err)
		}
		defer file.Close()
		if err := f.PlotFit(file, &forecaster.PlotOpts{HorizonCnt: horizon, HorizonInterval: 24 * time.Hour}); err != nil {
			return fmt.Errorf("unable to plot fit, %w", err)
		}
	}

	if opt.model != "" {
		d, err := f.Describe()
		if err != nil {
			return fmt.Errorf("unable to export model, %w", err)
		}
		b, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return fmt.Errorf("unable to encode model, %w", err)
		}
		if err := os.WriteFile(opt.model, b, 0o644); err != nil {
			return fmt.Errorf("unable to write model file, %w", err)
		}
	}
	return nil
}
