// Package analyze derives the weekly seasonality and trend snapshot of a series.
package analyze

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aouyang1/go-forecast-narrator/stats"
	"github.com/aouyang1/go-forecast-narrator/timedataset"
)

type Seasonality struct {
	WeeklyStrength  string   `json:"weekly_strength"`
	WeeklyRatio     *float64 `json:"weekly_ratio"`
	WeekendDeltaPct *float64 `json:"weekend_delta_pct"`
	Acf7            *float64 `json:"acf7"`
}

type Changepoint struct {
	Ds         string  `json:"ds"`
	SlopeDelta float64 `json:"slope_delta"`
}

type Trend struct {
	Slope30d     float64       `json:"slope_30d"`
	Delta3moPct  *float64      `json:"delta_3mo_pct"`
	Changepoints []Changepoint `json:"changepoints"`
}

type Result struct {
	Seasonality Seasonality
	Trend       Trend
}

// Analyzer computes the seasonality and trend snapshot. It holds no per series state and is safe
// for concurrent use.
type Analyzer struct {
	opt *Options
}

// New returns an analyzer. Nil options or invalid options fall back to the defaults.
func New(opt *Options) *Analyzer {
	if opt == nil || opt.Validate() != nil {
		opt = NewDefaultOptions()
	}
	o := *opt
	return &Analyzer{opt: &o}
}

// Analyze returns the snapshot of td along with warnings for computations that ran on less data
// than requested
func (a *Analyzer) Analyze(td *timedataset.TimeDataset) (Result, []string) {
	var warnings []string
	res := Result{
		Seasonality: Seasonality{WeeklyStrength: StrengthUnknown},
		Trend:       Trend{Changepoints: []Changepoint{}},
	}
	if td == nil || td.Len() == 0 {
		return res, warnings
	}

	ratio := WeeklyRatio(td)
	res.Seasonality.WeeklyRatio = ratio
	res.Seasonality.WeeklyStrength = StrengthLabel(ratio)
	res.Seasonality.WeekendDeltaPct = WeekendDeltaPct(td)
	res.Seasonality.Acf7 = Autocorrelation(td.Y, AutocorrLag)

	n := td.Len()
	if n < a.opt.SlopeWindow {
		warnings = append(warnings,
			fmt.Sprintf("直近%d点に満たないため、傾きは%d点から算出しました。", a.opt.SlopeWindow, n),
		)
	}
	res.Trend.Slope30d = stats.LinearSlope(td.Y[n-min(a.opt.SlopeWindow, n):])
	res.Trend.Delta3moPct = DeltaPct(td, a.opt.LookbackDays)
	res.Trend.Changepoints = a.Changepoints(td)

	return res, warnings
}

// WeeklyRatio returns the count weighted variance of weekday means over the population variance.
// Nil when there are too few points, fewer than 2 distinct weekdays or no variance.
func WeeklyRatio(td *timedataset.TimeDataset) *float64 {
	n := td.Len()
	if n < MinWeeklyPoints {
		return nil
	}

	var sums [7]float64
	var counts [7]int
	var total float64
	for i, t := range td.T {
		wd := t.Weekday()
		sums[wd] += td.Y[i]
		counts[wd]++
		total += td.Y[i]
	}
	mean := total / float64(n)

	var distinct int
	var between float64
	for wd := range sums {
		if counts[wd] == 0 {
			continue
		}
		distinct++
		d := sums[wd]/float64(counts[wd]) - mean
		between += float64(counts[wd]) * d * d
	}
	if distinct < 2 {
		return nil
	}

	var totalVar float64
	for _, v := range td.Y {
		d := v - mean
		totalVar += d * d
	}
	if totalVar == 0 {
		return nil
	}

	ratio := between / totalVar
	return &ratio
}

// WeekendDeltaPct compares the mean of Saturday and Sunday means against the mean of the
// weekday means present in the series
func WeekendDeltaPct(td *timedataset.TimeDataset) *float64 {
	var sums [7]float64
	var counts [7]int
	for i, t := range td.T {
		sums[t.Weekday()] += td.Y[i]
		counts[t.Weekday()]++
	}

	groupMean := func(days ...time.Weekday) (float64, bool) {
		var acc float64
		var present int
		for _, d := range days {
			if counts[d] == 0 {
				continue
			}
			acc += sums[d] / float64(counts[d])
			present++
		}
		if present == 0 {
			return 0, false
		}
		return acc / float64(present), true
	}

	weekend, ok := groupMean(time.Saturday, time.Sunday)
	if !ok {
		return nil
	}
	weekday, ok := groupMean(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
	if !ok || weekday == 0 {
		return nil
	}

	delta := (weekend - weekday) / weekday * 100
	return &delta
}

// Autocorrelation is the Pearson correlation of y against itself shifted by lag. Nil with fewer
// than 2*lag points or when either side is constant.
func Autocorrelation(y []float64, lag int) *float64 {
	if lag <= 0 || len(y) < max(MinAutocorrPoints, 2*lag) {
		return nil
	}
	r, err := stats.Pearson(y[:len(y)-lag], y[lag:])
	if err != nil || math.IsNaN(r) {
		return nil
	}
	return &r
}

// DeltaPct is the percent change from the observation nearest to lookbackDays before the last
// date to the last observation. Ties resolve to the earlier observation.
func DeltaPct(td *timedataset.TimeDataset, lookbackDays int) *float64 {
	n := td.Len()
	if n < 2 {
		return nil
	}
	lastT, lastY := td.Last()
	target := lastT.AddDate(0, 0, -lookbackDays)

	// first index at or after target
	idx := sort.Search(n, func(i int) bool {
		return !td.T[i].Before(target)
	})
	ref := idx
	switch {
	case idx >= n:
		ref = n - 1
	case idx > 0 && target.Sub(td.T[idx-1]) <= td.T[idx].Sub(target):
		ref = idx - 1
	}

	if ref == n-1 || td.Y[ref] == 0 {
		return nil
	}
	delta := (lastY - td.Y[ref]) / td.Y[ref] * 100
	return &delta
}

var errNoVariance = errors.New("series has no variance")

// Changepoints finds indices where least squares slopes over a window on each side change sign by
// at least ChangepointMinDeltaRatio * std(y) / window. Candidates within one window of a larger
// candidate are suppressed and the result is returned in date order.
func (a *Analyzer) Changepoints(td *timedataset.TimeDataset) []Changepoint {
	res := []Changepoint{}
	cands, err := a.changepointCandidates(td.Y)
	if err != nil {
		return res
	}

	w := a.opt.ChangepointWindow
	sort.SliceStable(cands, func(i, j int) bool {
		return math.Abs(cands[i].delta) > math.Abs(cands[j].delta)
	})

	var kept []candidate
	for _, c := range cands {
		if len(kept) >= a.opt.MaxChangepoints {
			break
		}
		suppressed := false
		for _, k := range kept {
			if abs(c.idx-k.idx) < w {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].idx < kept[j].idx
	})
	for _, k := range kept {
		res = append(res, Changepoint{
			Ds:         td.T[k.idx].Format(time.DateOnly),
			SlopeDelta: k.delta,
		})
	}
	return res
}

type candidate struct {
	idx   int
	delta float64
}

func (a *Analyzer) changepointCandidates(y []float64) ([]candidate, error) {
	w := a.opt.ChangepointWindow
	n := len(y)
	if w < 2 || n < 2*w {
		return nil, nil
	}
	std := stats.SampleStdDev(y)
	if std == 0 {
		return nil, errNoVariance
	}
	threshold := a.opt.ChangepointMinDeltaRatio * std / float64(w)

	var cands []candidate
	for i := w; i <= n-w; i++ {
		left := stats.LinearSlope(y[i-w : i])
		right := stats.LinearSlope(y[i : i+w])
		if left*right >= 0 {
			continue
		}
		delta := right - left
		if math.Abs(delta) < threshold {
			continue
		}
		cands = append(cands, candidate{idx: i, delta: delta})
	}
	return cands, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
