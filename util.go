package forecaster

import (
	"math"
	"time"

	"github.com/aouyang1/go-forecast-narrator/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that must have the same length as the input time slice. NaN values are
// rendered as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	xAxis := make([]string, 0, len(t))
	for _, tPnt := range t {
		xAxis = append(xAxis, tPnt.Format(time.DateOnly))
	}
	line = line.SetXAxis(xAxis)

	for i, series := range seriesName {
		if i >= len(y) {
			break
		}
		line = line.AddSeries(series, lineData(y[i]))
	}
	return line
}

func lineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, 0, len(y))
	for _, v := range y {
		if math.IsNaN(v) {
			data = append(data, opts.LineData{Value: "-"})
			continue
		}
		data = append(data, opts.LineData{Value: v})
	}
	return data
}

// LineForecaster generates an echart line chart for a fit result plotting the actual values
// along with the forecasted, upper, lower values over the training window and the horizon.
func LineForecaster(trainingData *timedataset.TimeDataset, fitRes, horizonRes *Results) *charts.Line {
	n := trainingData.Len()
	h := horizonRes.Len()

	t := make([]time.Time, 0, n+h)
	t = append(t, trainingData.T...)
	t = append(t, horizonRes.T...)

	actual := make([]float64, 0, n+h)
	actual = append(actual, trainingData.Y...)
	for i := 0; i < h; i++ {
		actual = append(actual, math.NaN())
	}

	join := func(a, b []float64) []float64 {
		res := make([]float64, 0, len(a)+len(b))
		res = append(res, a...)
		return append(res, b...)
	}

	return LineTSeries(
		"Forecast Fit",
		[]string{"Actual", "Forecast", "Upper", "Lower"},
		t,
		[][]float64{
			actual,
			join(fitRes.Forecast, horizonRes.Forecast),
			join(fitRes.Upper, horizonRes.Upper),
			join(fitRes.Lower, horizonRes.Lower),
		},
	)
}
