package report

import (
	"math"

	forecaster "github.com/aouyang1/go-forecast-narrator"
	"github.com/aouyang1/go-forecast-narrator/analyze"
	"github.com/aouyang1/go-forecast-narrator/forecast"
	"github.com/aouyang1/go-forecast-narrator/ingest"
	"github.com/aouyang1/go-forecast-narrator/narrate"
	"github.com/aouyang1/go-forecast-narrator/profile"
	"github.com/aouyang1/go-forecast-narrator/summary"
)

const (
	MethodModel    = "changepoint_fourier_lasso"
	MethodFallback = "linear_extrapolation"
)

type HistoryPoint struct {
	Ds string  `json:"ds"`
	Y  float64 `json:"y"`
}

// ModelInfo describes how the forecast was produced and how well it fit the history. Scores that
// are not finite are omitted.
type ModelInfo struct {
	Method   string   `json:"method"`
	MAPE     *float64 `json:"mape"`
	MSE      *float64 `json:"mse"`
	R2       *float64 `json:"r2"`
	Equation string   `json:"equation,omitempty"`
}

func newModelInfo(method string, scores forecast.Scores, eq string) ModelInfo {
	return ModelInfo{
		Method:   method,
		MAPE:     finite(scores.MAPE),
		MSE:      finite(scores.MSE),
		R2:       finite(scores.R2),
		Equation: eq,
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Response bundles everything computed for a single request
type Response struct {
	History         []HistoryPoint       `json:"history"`
	Forecast        []forecaster.Point   `json:"forecast"`
	Profile         profile.Profile      `json:"profile"`
	Seasonality     analyze.Seasonality  `json:"seasonality"`
	Trend           analyze.Trend        `json:"trend"`
	ForecastSummary summary.Summary      `json:"forecast_summary"`
	Explanations    narrate.Explanations `json:"explanations"`
	NarrativeScript []narrate.Beat       `json:"narrativeScript"`
	Targets         map[string][]string  `json:"targets"`
	SummaryText     string               `json:"summaryText"`
	Report          string               `json:"report"`
	Model           ModelInfo            `json:"model"`
	Warnings        []string             `json:"warnings"`
	Diagnostics     ingest.Diagnostics   `json:"diagnostics"`

	fitted *forecaster.Forecaster
}

// Forecaster returns the fitted model behind the forecast. It is nil when the forecast came from
// the linear extrapolation fallback.
func (r *Response) Forecaster() *forecaster.Forecaster {
	if r == nil {
		return nil
	}
	return r.fitted
}
