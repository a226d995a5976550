package forecaster

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aouyang1/go-forecast-narrator/forecast/options"
	"github.com/aouyang1/go-forecast-narrator/timedataset"
)

func generateExampleSeries() ([]time.Time, []float64) {
	// two years of daily closes with a weekly cycle, a level shift and a few spikes
	days := 2 * 366
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	t := timedataset.GenerateDailyT(end.AddDate(0, 0, -days+1), days)
	rng := rand.New(rand.NewPCG(42, 0))

	period := 7.0 * 86400.0
	y := make(timedataset.Series, days)
	y.Add(timedataset.GenerateConstY(days, 98.3)).
		Add(timedataset.GenerateWaveY(t, 10.5, period, 1.0, 2*86400)).
		Add(timedataset.GenerateWaveY(t, 3.5, period, 3.0, 86400)).
		Add(timedataset.GenerateWaveY(t, 7.3, 365.25*86400, 1.0, 0).MaskWithWeekend(t)).
		Add(timedataset.GenerateNoise(rng, t, 3.2, 0, period, 1.0, 0.0)).
		Add(timedataset.GenerateChange(t, t[days/2], 10.0, 0.0)).
		Add(timedataset.GenerateChange(t, t[days*3/4], 0.0, -0.1)).
		SetConst(t, 2.7, t[days/3], t[days/3+3]).
		SetConst(t, 175.7, t[days*2/3], t[days*2/3+1])

	return t, y
}

func runForecastExample(opt *Options, t []time.Time, y []float64, filename string) error {
	f, err := New(opt)
	if err != nil {
		return err
	}
	if err := f.Fit(t, y); err != nil {
		return err
	}

	m, err := f.Model()
	if err != nil {
		return err
	}
	if err := m.TablePrint(os.Stderr); err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return f.PlotFit(file, &PlotOpts{HorizonCnt: 30, HorizonInterval: 24 * time.Hour})
}

func recoverForecastPanic() {
	if r := recover(); r != nil {
		fmt.Printf("panic: %v\n", r)
		debug.PrintStack()
	}
}

func setupWithOutliers() ([]time.Time, []float64, *Options) {
	t, y := generateExampleSeries()

	opt := NewDefaultOptions()
	opt.SeriesOptions.EventOptions = options.EventOptions{
		HolidayCountry: "us",
		Events: []options.Event{
			options.NewEvent("promotion", t[len(t)/5], t[len(t)/5+7]),
		},
	}
	opt.OutlierOptions = &OutlierOptions{
		NumPasses:       3,
		TukeyFactor:     1.5,
		LowerPercentile: 0.25,
		UpperPercentile: 0.75,
	}
	return t, y, opt
}

func Example_forecasterWithOutliers() {
	t, y, opt := setupWithOutliers()

	defer recoverForecastPanic()

	if err := runForecastExample(opt, t, y, filepath.Join(os.TempDir(), "forecaster.html")); err != nil {
		panic(err)
	}
	// Output:
}

func Example_forecasterBusinessDays() {
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	t := timedataset.GenerateBusinessDayT(end, 260)
	rng := rand.New(rand.NewPCG(42, 0))
	y := timedataset.GenerateRandomWalk(rng, len(t), 2000, 0.2, 10).
		Add(timedataset.GenerateIndexWaveY(len(t), 20, 5))

	defer recoverForecastPanic()

	if err := runForecastExample(nil, t, y, filepath.Join(os.TempDir(), "forecaster_business_days.html")); err != nil {
		panic(err)
	}
	// Output:
}
