package report

import (
	"fmt"

	forecaster "github.com/aouyang1/go-forecast-narrator"
	"github.com/aouyang1/go-forecast-narrator/forecast"
	"github.com/aouyang1/go-forecast-narrator/linearmodel"
	"github.com/aouyang1/go-forecast-narrator/stats"
	"github.com/aouyang1/go-forecast-narrator/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// MinModelPoints is the fewest observations handed to the model. Shorter series, or series
	// shorter than the horizon, are extrapolated linearly instead.
	MinModelPoints = 10

	FallbackWindow = 30
	FallbackZscore = 1.96
)

// linearFallback fits a line through the last FallbackWindow points and extends it from the last
// observed value with a band of FallbackZscore sample standard deviations of the fit residual
func linearFallback(td *timedataset.TimeDataset, horizon int) (*forecaster.Results, forecast.Scores, error) {
	tail := td.Tail(FallbackWindow)
	n := tail.Len()

	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}

	ols, err := linearmodel.NewOLSRegression(linearmodel.NewDefaultOLSOptions())
	if err != nil {
		return nil, forecast.Scores{}, err
	}
	xMx := mat.NewDense(n, 1, x)
	if err := ols.Fit(xMx, mat.NewDense(n, 1, tail.Y)); err != nil {
		return nil, forecast.Scores{}, fmt.Errorf("unable to fit linear fallback, %w", err)
	}
	fitted, err := ols.Predict(xMx)
	if err != nil {
		return nil, forecast.Scores{}, fmt.Errorf("unable to predict linear fallback, %w", err)
	}

	residual := make([]float64, n)
	floats.SubTo(residual, tail.Y, fitted)
	band := FallbackZscore * stats.SampleStdDev(residual)

	var scores forecast.Scores
	if s, err := forecast.NewScores(fitted, tail.Y); err == nil {
		scores = *s
	}

	slope := ols.Coef()[0]
	lastT, level := td.Last()
	res := &forecaster.Results{
		T:        timedataset.DailyHorizon(lastT, horizon),
		Forecast: make([]float64, horizon),
		Upper:    make([]float64, horizon),
		Lower:    make([]float64, horizon),
	}
	for i := 0; i < horizon; i++ {
		yhat := level + slope*float64(i+1)
		res.Forecast[i] = yhat
		res.Upper[i] = yhat + band
		res.Lower[i] = yhat - band
	}
	return res, scores, nil
}
