package forecaster

import (
	"bytes"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aouyang1/go-forecast-narrator/timedataset"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateDailySeries(n int, seed int64) ([]time.Time, []float64) {
	t := timedataset.GenerateDailyT(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), n)
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	y := make(timedataset.Series, n)
	y.Add(timedataset.GenerateLinearY(n, 100.0, 0.2)).
		Add(timedataset.GenerateIndexWaveY(n, 5.0, 7.0)).
		Add(timedataset.GenerateNoise(rng, t, 1.0, 0, 86400, 1, 0))
	return t, y
}

func TestForecasterBandOrdering(t *testing.T) {
	tWin, y := generateDailySeries(200, 7)

	f, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, f.Fit(tWin, y))

	horizon := timedataset.DailyHorizon(tWin[len(tWin)-1], 30)
	res, err := f.Predict(horizon)
	require.NoError(t, err)
	require.Equal(t, 30, res.Len())

	for i := range res.T {
		assert.LessOrEqual(t, res.Lower[i], res.Forecast[i])
		assert.LessOrEqual(t, res.Forecast[i], res.Upper[i])
	}

	// the trend keeps climbing past the training window
	assert.Greater(t, res.Forecast[29], y[0])
	assert.Len(t, f.Residuals(), len(tWin))
	assert.Equal(t, len(tWin), f.FitResults().Len())
}

func TestForecasterConstant(t *testing.T) {
	n := 400
	tWin := timedataset.GenerateDailyT(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), n)
	y := timedataset.GenerateConstY(n, 100.0)

	f, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, f.Fit(tWin, y))

	res, err := f.Predict(timedataset.DailyHorizon(tWin[n-1], 30))
	require.NoError(t, err)
	for i := range res.T {
		assert.InDelta(t, 100.0, res.Forecast[i], 1e-9)
		assert.InDelta(t, 100.0, res.Lower[i], 1e-9)
		assert.InDelta(t, 100.0, res.Upper[i], 1e-9)
	}
}

func TestForecasterWithOutliers(t *testing.T) {
	tWin, y := generateDailySeries(120, 11)
	y[30] += 200
	y[80] -= 200

	opt := NewDefaultOptions()
	opt.OutlierOptions = NewOutlierOptions()
	opt.OutlierOptions.TukeyFactor = 1.5

	f, err := New(opt)
	require.NoError(t, err)
	require.NoError(t, f.Fit(tWin, y))

	// training data is left untouched by outlier masking
	assert.Equal(t, y[30], f.TrainingData().Y[30])
	assert.True(t, math.IsNaN(f.Residuals()[30]))
	assert.True(t, math.IsNaN(f.Residuals()[80]))
}

func TestForecasterDescribe(t *testing.T) {
	tWin, y := generateDailySeries(100, 3)

	f, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, f.Fit(tWin, y))

	d, err := f.Describe()
	require.NoError(t, err)
	assert.Contains(t, d.SeriesEquation, "y ~ ")
	assert.Contains(t, d.ResidualEquation, "y ~ ")
	assert.NotEmpty(t, d.SeriesCoefficients)
	assert.NotEmpty(t, d.ResidualCoefficients)
	assert.Equal(t, f.SeriesIntercept(), d.SeriesIntercept)
	assert.Equal(t, f.ResidualIntercept(), d.ResidualIntercept)
	assert.NotNil(t, d.Options)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	var loaded Model
	require.NoError(t, json.Unmarshal(out, &loaded))
	_, err = NewFromModel(loaded)
	require.NoError(t, err)
}

func TestForecasterDefaultMasksSpike(t *testing.T) {
	testData := map[string]struct {
		idx int
	}{
		"near the end":  {idx: 190},
		"in the middle": {idx: 100},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			n := 200
			tWin := timedataset.GenerateDailyT(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), n)
			y := timedataset.GenerateConstY(n, 10)
			y[td.idx] = 10000

			f, err := New(nil)
			require.NoError(t, err)
			require.NoError(t, f.Fit(tWin, y))
			assert.Equal(t, 10000.0, f.TrainingData().Y[td.idx])

			res, err := f.Predict(timedataset.DailyHorizon(tWin[n-1], 30))
			require.NoError(t, err)
			for _, v := range res.Forecast {
				assert.InDelta(t, 10.0, v, 1.0)
			}
		})
	}
}

func TestForecasterFromModel(t *testing.T) {
	tWin, y := generateDailySeries(100, 3)

	f, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, f.Fit(tWin, y))

	m, err := f.Model()
	require.NoError(t, err)

	out, err := json.Marshal(m)
	require.NoError(t, err)

	var loaded Model
	require.NoError(t, json.Unmarshal(out, &loaded))

	loadedF, err := NewFromModel(loaded)
	require.NoError(t, err)

	horizon := timedataset.DailyHorizon(tWin[len(tWin)-1], 10)
	expected, err := f.Predict(horizon)
	require.NoError(t, err)
	res, err := loadedF.Predict(horizon)
	require.NoError(t, err)
	assert.InDeltaSlice(t, expected.Forecast, res.Forecast, 1e-6)
	assert.InDeltaSlice(t, expected.Upper, res.Upper, 1e-6)

	_, err = NewFromModel(Model{})
	assert.ErrorIs(t, err, ErrNoOptionsInModel)
}

func TestForecasterInsufficientResidual(t *testing.T) {
	tWin := timedataset.GenerateDailyT(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2)

	f, err := New(nil)
	require.NoError(t, err)
	err = f.Fit(tWin, []float64{1, 2})
	assert.ErrorIs(t, err, ErrInsufficientResidual)
}

func TestOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt func() *Options
		err error
	}{
		"default": {opt: NewDefaultOptions},
		"negative window": {
			opt: func() *Options {
				opt := NewDefaultOptions()
				opt.ResidualWindow = -1
				return opt
			},
			err: ErrNegativeWindow,
		},
		"zero zscore": {
			opt: func() *Options {
				opt := NewDefaultOptions()
				opt.ResidualZscore = 0
				return opt
			},
			err: ErrNonPositiveZscore,
		},
		"inverted percentiles": {
			opt: func() *Options {
				opt := NewDefaultOptions()
				opt.OutlierOptions = &OutlierOptions{LowerPercentile: 0.9, UpperPercentile: 0.1}
				return opt
			},
			err: ErrInvalidPercentiles,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			err := td.opt().Validate()
			if td.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestPlotFit(t *testing.T) {
	tWin, y := generateDailySeries(60, 5)

	f, err := New(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.ErrorIs(t, f.PlotFit(&buf, nil), ErrEmptyTimeDataset)

	require.NoError(t, f.Fit(tWin, y))
	require.NoError(t, f.PlotFit(&buf, &PlotOpts{HorizonCnt: 14, HorizonInterval: 24 * time.Hour}))
	assert.Contains(t, buf.String(), "Forecast Fit")
	assert.Contains(t, buf.String(), "Forecast Components")
}
