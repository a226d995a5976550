package narrate

import (
	"golang.org/x/text/message"
)

// Metric paths are dot paths into the response JSON that the frontend tags with data-metric
const (
	PathProfileRows       = "profile.rows"
	PathProfileDateMin    = "profile.date_min"
	PathProfileDateMax    = "profile.date_max"
	PathProfileMean       = "profile.mean"
	PathProfileMedian     = "profile.median"
	PathProfileStd        = "profile.std"
	PathProfileCV         = "profile.cv"
	PathProfileOutliers   = "profile.outliers"
	PathWeeklyStrength    = "seasonality.weekly_strength"
	PathWeekendDeltaPct   = "seasonality.weekend_delta_pct"
	PathAcf7              = "seasonality.acf7"
	PathSlope30d          = "trend.slope_30d"
	PathDelta3moPct       = "trend.delta_3mo_pct"
	PathChangepoints      = "trend.changepoints"
	PathForecastP50_5     = "forecast_summary.p50_5"
	PathForecastP50_30    = "forecast_summary.p50_30"
	PathForecastDelta30   = "forecast_summary.delta_30_pct"
	PathForecastBandRatio = "forecast_summary.band_ratio"
	PathForecastConfident = "forecast_summary.confidence"
)

// TargetPaths lists every metric path the frontend can highlight
var TargetPaths = []string{
	PathProfileRows,
	PathProfileDateMin,
	PathProfileDateMax,
	PathProfileMean,
	PathProfileMedian,
	PathProfileStd,
	PathProfileCV,
	PathProfileOutliers,
	PathWeeklyStrength,
	PathWeekendDeltaPct,
	PathAcf7,
	PathSlope30d,
	PathDelta3moPct,
	PathChangepoints,
	PathForecastP50_5,
	PathForecastP50_30,
	PathForecastDelta30,
	PathForecastBandRatio,
	PathForecastConfident,
}

// Targets maps each metric path to the CSS selectors of the elements showing it
func Targets() map[string][]string {
	targets := make(map[string][]string, len(TargetPaths))
	for _, path := range TargetPaths {
		targets[path] = []string{"[data-metric='" + path + "']"}
	}
	return targets
}

func beats(p *message.Printer, snap Snapshot) []Beat {
	pr := snap.Profile
	fs := snap.Summary
	cv := orZero(pr.CV)
	delta3mo := orZero(snap.Trend.Delta3moPct)

	return []Beat{
		{
			ID:        "opening",
			Text:      p.Sprintf("beat.opening", pr.DateMin, pr.DateMax, count(p, pr.Rows)),
			Highlight: []string{PathProfileRows},
			WaitMs:    4000,
		},
		{
			ID: "data_overview",
			Text: p.Sprintf("beat.data_overview",
				number(p, pr.Mean, 1), number(p, pr.Median, 1), distributionComment(p, pr),
			),
			Highlight: []string{PathProfileMean, PathProfileMedian},
			WaitMs:    4500,
		},
		{
			ID:        "variation_analysis",
			Text:      p.Sprintf("beat.variation_analysis", number(p, cv, 2), variationLevel(p, cv)),
			Highlight: []string{PathProfileCV},
			WaitMs:    5000,
		},
		{
			ID:        "seasonality_analysis",
			Text:      p.Sprintf("beat.seasonality_analysis", seasonalityComment(p, snap.Seasonality)),
			Highlight: []string{PathWeeklyStrength},
			WaitMs:    5500,
		},
		{
			ID:        "trend_analysis",
			Text:      p.Sprintf("beat.trend_analysis", trendDirection(p, delta3mo), signed(p, delta3mo, 1)),
			Highlight: []string{PathDelta3moPct},
			WaitMs:    4500,
		},
		{
			ID: "forecast_results",
			Text: p.Sprintf("beat.forecast_results",
				number(p, fs.P50_30, 1), signed(p, orZero(fs.Delta30Pct), 1),
			),
			Highlight: []string{PathForecastP50_30, PathForecastDelta30},
			WaitMs:    6000,
		},
		{
			ID:        "reliability_assessment",
			Text:      p.Sprintf("beat.reliability_assessment", predictionReliability(p, fs.Confidence)),
			Highlight: []string{PathForecastConfident},
			WaitMs:    5000,
		},
		{
			ID:        "conclusion",
			Text:      p.Sprintf("beat.conclusion"),
			Highlight: []string{},
			WaitMs:    5500,
		},
	}
}
