package forecaster

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aouyang1/go-forecast-narrator/timedataset"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
)

var benchPredictRes *Results

// businessDaySeries is two years of weekday closes shaped like the bundled sample data
func businessDaySeries() ([]time.Time, []float64) {
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	t := timedataset.GenerateBusinessDayT(end, 520)
	rng := rand.New(rand.NewPCG(42, 0))
	y := timedataset.GenerateRandomWalk(rng, len(t), 2000, 0.2, 10).
		Add(timedataset.GenerateIndexWaveY(len(t), 20, 5)).
		Floor(100)
	return t, y
}

func BenchmarkFit(b *testing.B) {
	benchmarks := map[string]func() ([]time.Time, []float64, *Options){
		"business days": func() ([]time.Time, []float64, *Options) {
			t, y := businessDaySeries()
			return t, y, NewDefaultOptions()
		},
		"daily with outliers": setupWithOutliers,
	}

	for name, setup := range benchmarks {
		t, y, opt := setup()
		b.Run(name, func(b *testing.B) {
			for b.Loop() {
				f, err := New(opt)
				if err != nil {
					b.Fatal(err)
				}
				if err := f.Fit(t, y); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkPredictFromModel(b *testing.B) {
	t, y := businessDaySeries()
	f, err := New(nil)
	if err != nil {
		b.Fatal(err)
	}
	if err := f.Fit(t, y); err != nil {
		b.Fatal(err)
	}
	m, err := f.Model()
	if err != nil {
		b.Fatal(err)
	}
	encoded, err := json.Marshal(m)
	if err != nil {
		b.Fatal(err)
	}

	var model Model
	if err := json.Unmarshal(encoded, &model); err != nil {
		b.Fatal(err)
	}
	restored, err := NewFromModel(model)
	if err != nil {
		b.Fatal(err)
	}

	input := timedataset.DailyHorizon(t[len(t)-1], 30)
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(b.TempDir()), profile.Quiet).Stop()
	for b.Loop() {
		benchPredictRes, err = restored.Predict(input)
		if err != nil {
			b.Fatal(err)
		}
	}
}
