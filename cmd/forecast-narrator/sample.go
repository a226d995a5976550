package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/aouyang1/go-forecast-narrator/timedataset"
	"github.com/spf13/cobra"
)

const (
	sampleStart    = 2000.0
	sampleDrift    = 0.2
	sampleScale    = 10.0
	sampleWaveAmp  = 20.0
	sampleWaveDays = 5.0
	sampleFloor    = 100.0
)

type sampleFlags struct {
	days int
	seed uint64
	out  string
}

var sampleOpt sampleFlags

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a synthetic business day price series as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		td, err := generateSample(sampleOpt.seed, time.Now().UTC(), sampleOpt.days)
		if err != nil {
			return err
		}
		if sampleOpt.out == "" || sampleOpt.out == "-" {
			return writeCSV(cmd.OutOrStdout(), td)
		}

		f, err := os.Create(sampleOpt.out)
		if err != nil {
			return fmt.Errorf("unable to create output, %w", err)
		}
		defer f.Close()
		return writeCSV(f, td)
	},
}

func init() {
	f := sampleCmd.Flags()
	f.IntVar(&sampleOpt.days, "days", 500, "number of business days")
	f.Uint64Var(&sampleOpt.seed, "seed", 42, "random seed")
	f.StringVar(&sampleOpt.out, "out", "", "output path, stdout when empty")
}

// generateSample returns a random walk with an upward drift plus a five business day rhythm,
// floored at 100 and rounded to one decimal, ending on the last weekday on or before end
func generateSample(seed uint64, end time.Time, days int) (*timedataset.TimeDataset, error) {
	if days < 1 {
		return nil, fmt.Errorf("days must be positive, got %d", days)
	}
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	t := timedataset.GenerateBusinessDayT(end, days)

	rng := rand.New(rand.NewPCG(seed, 0))
	y := timedataset.GenerateRandomWalk(rng, days, sampleStart, sampleDrift, sampleScale).
		Add(timedataset.GenerateIndexWaveY(days, sampleWaveAmp, sampleWaveDays)).
		Floor(sampleFloor).
		Round(1)
	return timedataset.NewUnivariateDataset(t, y)
}

func writeCSV(w io.Writer, td *timedataset.TimeDataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Close"}); err != nil {
		return err
	}
	for i := range td.T {
		if err := cw.Write([]string{
			td.T[i].Format(time.DateOnly),
			strconv.FormatFloat(td.Y[i], 'f', 1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
