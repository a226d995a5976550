// Package summary reduces a forecast to its headline figures.
package summary

import (
	"fmt"
	"math"

	forecaster "github.com/aouyang1/go-forecast-narrator"
)

const (
	// ConfidenceHighMaxBand and ConfidenceMediumMaxBand are the exclusive upper limits of the
	// 30 day band ratio for the high and medium confidence levels
	ConfidenceHighMaxBand   = 0.1
	ConfidenceMediumMaxBand = 0.2

	ConfidenceHigh    = "高"
	ConfidenceMedium  = "中"
	ConfidenceLow     = "低"
	ConfidenceUnknown = "不明"

	ShortHorizonDay = 5
	LongHorizonDay  = 30
)

// Summary holds the forecast at day 5 and day 30 along with the relative change against the last
// observed value and the qualitative confidence of the band
type Summary struct {
	P50_5      float64  `json:"p50_5"`
	Lo5        float64  `json:"lo_5"`
	Up5        float64  `json:"up_5"`
	P50_30     float64  `json:"p50_30"`
	Lo30       float64  `json:"lo_30"`
	Up30       float64  `json:"up_30"`
	Delta30Pct *float64 `json:"delta_30_pct"`
	BandRatio  *float64 `json:"band_ratio"`
	Confidence string   `json:"confidence"`
}

// Confidence buckets a band ratio. A nil ratio is unknown.
func Confidence(bandRatio *float64) string {
	if bandRatio == nil {
		return ConfidenceUnknown
	}
	switch {
	case *bandRatio < ConfidenceHighMaxBand:
		return ConfidenceHigh
	case *bandRatio < ConfidenceMediumMaxBand:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Summarize looks up day 5 and day 30 of the forecast falling back to the last point when the
// horizon is shorter. The band ratio is relative to the magnitude of the day 30 median.
func Summarize(points []forecaster.Point, lastValue float64) (Summary, []string) {
	var warnings []string
	if len(points) == 0 {
		return Summary{Confidence: ConfidenceUnknown}, []string{"予測結果が空のため、要約を作成できませんでした。"}
	}

	if len(points) < LongHorizonDay {
		warnings = append(warnings,
			fmt.Sprintf("予測期間が%d日未満のため、%d日先の値は%d日先の値で代用しています。", LongHorizonDay, LongHorizonDay, len(points)),
		)
	}

	p5 := points[min(ShortHorizonDay, len(points))-1]
	p30 := points[min(LongHorizonDay, len(points))-1]

	s := Summary{
		P50_5:  p5.Yhat,
		Lo5:    p5.YhatLower,
		Up5:    p5.YhatUpper,
		P50_30: p30.Yhat,
		Lo30:   p30.YhatLower,
		Up30:   p30.YhatUpper,
	}
	if lastValue != 0 {
		delta := (s.P50_30 - lastValue) / lastValue * 100
		s.Delta30Pct = &delta
	}
	if s.P50_30 != 0 {
		ratio := (s.Up30 - s.Lo30) / math.Abs(s.P50_30)
		s.BandRatio = &ratio
	}
	s.Confidence = Confidence(s.BandRatio)
	return s, warnings
}
