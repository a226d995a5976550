package forecaster

import (
	"time"

	"github.com/aouyang1/go-forecast-narrator/forecast"
)

// Results holds the predicted value and uncertainty band for each requested time
type Results struct {
	T        []time.Time `json:"time"`
	Forecast []float64   `json:"forecast"`
	Upper    []float64   `json:"upper"`
	Lower    []float64   `json:"lower"`

	SeriesComponents   forecast.Components `json:"series_components"`
	ResidualComponents forecast.Components `json:"residual_components"`
}

// Len returns the number of predicted points
func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(r.T)
}

// Point is a single day of a forecast with its band
type Point struct {
	Ds        string  `json:"ds"`
	Yhat      float64 `json:"yhat"`
	YhatLower float64 `json:"yhat_lower"`
	YhatUpper float64 `json:"yhat_upper"`
}

// Points flattens the results into one Point per predicted time with the date formatted as
// YYYY-MM-DD
func (r *Results) Points() []Point {
	points := make([]Point, 0, r.Len())
	for i := 0; i < r.Len(); i++ {
		points = append(points, Point{
			Ds:        r.T[i].Format(time.DateOnly),
			Yhat:      r.Forecast[i],
			YhatLower: r.Lower[i],
			YhatUpper: r.Upper[i],
		})
	}
	return points
}
