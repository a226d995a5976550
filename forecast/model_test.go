package forecast

import (
	"bytes"
	"testing"
	"time"

	"github.com/aouyang1/go-forecast-narrator/feature"
	"github.com/aouyang1/go-forecast-narrator/forecast/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelTablePrint(t *testing.T) {
	testData := map[string]struct {
		m        Model
		prefix   string
		indent   string
		expected string
	}{
		"no input": {
			expected: `Forecast:
Training End Time: 0001-01-01 00:00:00 +0000 UTC
Weights:
      Type Labels Value
 Intercept        0.000
`,
		},
		"basic input with prefix and indent": {
			m: Model{
				TrainEndTime: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				Scores: &Scores{
					MAPE: 0.1234,
					MSE:  1.2345,
					R2:   0.0123,
				},
			},
			prefix: "--",
			indent: "**",
			expected: `--Forecast:
--**Training End Time: 1970-01-01 00:00:00 +0000 UTC
--Scores:
--**MAPE: 0.123    MSE: 1.234    R2: 0.012
--Weights:
      --**Type Labels Value
 --**Intercept        0.000
`,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			err := td.m.TablePrint(&buf, td.prefix, td.indent)
			require.NoError(t, err)
			assert.Equal(t, td.expected, buf.String())
		})
	}
}

func TestModelTablePrintWithOptions(t *testing.T) {
	m := Model{
		TrainEndTime: time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
		Options: &options.Options{
			Regularization: 0.5,
			GrowthType:     feature.GrowthLinear,
			ChangepointOptions: options.ChangepointOptions{
				Changepoints: []options.Changepoint{
					options.NewChangepoint("c0", time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)),
				},
			},
			SeasonalityOptions: options.SeasonalityOptions{
				SeasonalityConfigs: []options.SeasonalityConfig{
					options.NewWeeklySeasonalityConfig(2),
				},
			},
			EventOptions: options.EventOptions{
				HolidayCountry: "jp",
			},
		},
		Weights: Weights{
			Intercept: 1.1,
			Coef: []FeatureWeight{
				NewFeatureWeight(feature.NewChangepoint("c0", feature.ChangepointCompBias), 9.8),
				NewFeatureWeight(feature.NewSeasonality("weekly", feature.FourierCompSin, 1), 0),
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, m.TablePrint(&buf, "", "  "))
	out := buf.String()

	assert.Contains(t, out, "  Regularization: 0.500\n")
	assert.Contains(t, out, "  Growth: linear\n")
	assert.Contains(t, out, "1970-01-02")
	assert.Contains(t, out, "weekly")
	assert.Contains(t, out, "    Holidays: jp\n")
	assert.Contains(t, out, `{"changepoint_component":"bias","name":"c0"} 9.800`)
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, "Changepoints: None")
}

func TestFeatureWeightToFeature(t *testing.T) {
	testData := map[string]struct {
		feat feature.Feature
	}{
		"changepoint": {feature.NewChangepoint("auto_0", feature.ChangepointCompSlope)},
		"seasonality": {feature.NewSeasonality("yearly", feature.FourierCompCos, 4)},
		"event":       {feature.NewEvent("New_Year's_Day")},
		"growth":      {feature.Linear()},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			fw := NewFeatureWeight(td.feat, 1.5)
			res, err := fw.ToFeature()
			require.NoError(t, err)
			assert.Equal(t, td.feat.String(), res.String())
			assert.Equal(t, td.feat.Type(), res.Type())
		})
	}

	fw := FeatureWeight{Type: feature.FeatureTypeTime}
	_, err := fw.ToFeature()
	assert.ErrorIs(t, err, ErrUnknownFeatureType)
}
