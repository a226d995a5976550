package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-forecast-narrator/feature"
	"github.com/aouyang1/go-forecast-narrator/forecast/options"
	"github.com/aouyang1/go-forecast-narrator/timedataset"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateTrendWave(n int) ([]time.Time, []float64) {
	t := timedataset.GenerateDailyT(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), n)
	y := make([]float64, n)
	for i := range y {
		y[i] = 50.0 + 0.1*float64(i) + 5.0*math.Sin(2.0*math.Pi*float64(i)/7.0)
	}
	return t, y
}

func TestFitConstant(t *testing.T) {
	n := 400
	tWin := timedataset.GenerateDailyT(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), n)
	y := timedataset.GenerateConstY(n, 100.0)

	f, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, f.Fit(tWin, y))

	assert.InDelta(t, 100.0, f.Intercept(), 1e-9)

	future := timedataset.DailyHorizon(tWin[n-1], 30)
	predicted, comp, err := f.Predict(future)
	require.NoError(t, err)
	for i := range predicted {
		assert.InDelta(t, 100.0, predicted[i], 1e-9)
		assert.InDelta(t, 0.0, comp.Seasonality[i], 1e-9)
	}

	// yearly seasonality requires two years of history
	for _, label := range f.FeatureLabels() {
		if val, _ := label.Get("name"); val == options.LabelSeasYearly {
			t.Fatalf("unexpected yearly seasonality feature %s", label)
		}
	}
}

func TestFitTrendWave(t *testing.T) {
	tWin, y := generateTrendWave(140)

	f, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, f.Fit(tWin, y))

	scores := f.Scores()
	assert.Greater(t, scores.R2, 0.99)

	future := timedataset.DailyHorizon(tWin[len(tWin)-1], 14)
	predicted, _, err := f.Predict(future)
	require.NoError(t, err)
	for i, p := range predicted {
		idx := float64(len(tWin) + i)
		expected := 50.0 + 0.1*idx + 5.0*math.Sin(2.0*math.Pi*idx/7.0)
		assert.InDelta(t, expected, p, 1.0)
	}

	eq, err := f.ModelEq()
	require.NoError(t, err)
	assert.Contains(t, eq, "growth_linear")
	assert.Contains(t, eq, "seas_weekly_1")
}

func TestFitErrors(t *testing.T) {
	testData := map[string]struct {
		t   []time.Time
		y   []float64
		err error
	}{
		"single point": {
			t:   []time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			y:   []float64{1},
			err: ErrInsufficientTrainingData,
		},
		"all nans": {
			t:   timedataset.GenerateDailyT(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3),
			y:   []float64{math.NaN(), math.NaN(), math.NaN()},
			err: ErrInsufficientTrainingData,
		},
		"length mismatch": {
			t:   timedataset.GenerateDailyT(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3),
			y:   []float64{1, 2},
			err: timedataset.ErrDatasetLenMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := New(nil)
			require.NoError(t, err)
			err = f.Fit(td.t, td.y)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestPredictUntrained(t *testing.T) {
	f, err := New(nil)
	require.NoError(t, err)
	_, _, err = f.Predict(timedataset.GenerateDailyT(time.Now(), 2))
	assert.ErrorIs(t, err, ErrUntrainedForecast)

	var nilForecast *Forecast
	_, _, err = nilForecast.Predict(nil)
	assert.ErrorIs(t, err, ErrUninitializedForecast)
}

func TestFitFromModel(t *testing.T) {
	tWin, y := generateTrendWave(140)

	opt := options.NewDefaultOptions()
	opt.EventOptions.HolidayCountry = "us"
	f, err := New(opt)
	require.NoError(t, err)
	require.NoError(t, f.Fit(tWin, y))

	model, err := f.Model()
	require.NoError(t, err)

	out, err := json.Marshal(model)
	require.NoError(t, err)

	var loaded Model
	require.NoError(t, json.Unmarshal(out, &loaded))

	// generate new forecast from the previous model and perform inference
	loadedF, err := NewFromModel(loaded)
	require.NoError(t, err)

	future := timedataset.DailyHorizon(tWin[len(tWin)-1], 30)
	expected, _, err := f.Predict(future)
	require.NoError(t, err)
	predicted, _, err := loadedF.Predict(future)
	require.NoError(t, err)
	assert.InDeltaSlice(t, expected, predicted, 1e-6)

	assert.InDelta(t, f.Intercept(), loadedF.Intercept(), 1e-9)
	assert.Equal(t, len(f.FeatureLabels()), len(loadedF.FeatureLabels()))
}

func TestPredictIgnoresUntrainedFeatures(t *testing.T) {
	// weekly seasonality is dropped for a window shorter than two weeks
	tWin, y := generateTrendWave(10)

	f, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, f.Fit(tWin, y))

	for _, label := range f.FeatureLabels() {
		assert.NotEqual(t, feature.FeatureTypeSeasonality, label.Type())
	}

	predicted, comp, err := f.Predict(timedataset.DailyHorizon(tWin[len(tWin)-1], 5))
	require.NoError(t, err)
	assert.Len(t, predicted, 5)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, comp.Seasonality)
}
