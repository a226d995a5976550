// Package stats contains the descriptive statistics shared by the forecaster, profiler and
// analyzer.
package stats

import (
	"errors"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmptySlice     = errors.New("empty slice")
	ErrLengthMismatch = errors.New("slices have different lengths")
	ErrConstantSeries = errors.New("constant series has no defined correlation")
)

// DetectOutliers returns the indices of values outside the range formed by the lower and upper
// percentiles expanded by the tukey factor times that range.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	if len(y) == 0 {
		return nil
	}
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) {
			yCopy = append(yCopy, v)
		}
	}
	if len(yCopy) == 0 {
		return nil
	}
	sort.Float64s(yCopy)
	lowerIdx := int(math.Floor(float64(len(yCopy)) * lowerPerc))
	upperIdx := int(math.Ceil(float64(len(yCopy)) * upperPerc))
	lowerIdx = min(max(lowerIdx, 0), len(yCopy)-1)
	upperIdx = min(max(upperIdx, 0), len(yCopy)-1)

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		if innerRange > 0 && (y[i] >= upper || y[i] <= lower) {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// Quantile returns the p-th quantile of y using linear interpolation between the closest ranks.
// p is clamped to [0, 1].
func Quantile(y []float64, p float64) (float64, error) {
	if len(y) == 0 {
		return 0, ErrEmptySlice
	}
	sorted := slices.Clone(y)
	sort.Float64s(sorted)
	return quantileSorted(sorted, p), nil
}

func quantileSorted(sorted []float64, p float64) float64 {
	p = math.Min(math.Max(p, 0.0), 1.0)
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Median returns the middle value of y, averaging the two middle values for even lengths
func Median(y []float64) (float64, error) {
	return Quantile(y, 0.5)
}

// IQROutliers returns the indices of values below Q1 - factor*IQR or above Q3 + factor*IQR.
// Fewer than 4 values never yields an outlier.
func IQROutliers(y []float64, factor float64) []int {
	if len(y) < 4 {
		return nil
	}
	sorted := slices.Clone(y)
	sort.Float64s(sorted)
	q1 := quantileSorted(sorted, 0.25)
	q3 := quantileSorted(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - factor*iqr
	upper := q3 + factor*iqr

	var idx []int
	for i, v := range y {
		if v < lower || v > upper {
			idx = append(idx, i)
		}
	}
	return idx
}

// ZScoreOutliers returns the indices of values whose absolute z-score, computed with the sample
// standard deviation, exceeds the threshold. Fewer than 4 values never yields an outlier.
func ZScoreOutliers(y []float64, threshold float64) []int {
	if len(y) < 4 {
		return nil
	}
	mean, std := stat.MeanStdDev(y, nil)
	if std == 0 || math.IsNaN(std) {
		return nil
	}

	var idx []int
	for i, v := range y {
		if math.Abs(v-mean)/std > threshold {
			idx = append(idx, i)
		}
	}
	return idx
}

// SampleStdDev returns the standard deviation with one degree of freedom removed. A single value
// has a standard deviation of 0.
func SampleStdDev(y []float64) float64 {
	if len(y) < 2 {
		return 0
	}
	return stat.StdDev(y, nil)
}

// Pearson computes the correlation coefficient between x and y
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, ErrLengthMismatch
	}
	if len(x) < 2 {
		return 0, ErrEmptySlice
	}
	if floats.Max(x) == floats.Min(x) || floats.Max(y) == floats.Min(y) {
		return 0, ErrConstantSeries
	}
	return stat.Correlation(x, y, nil), nil
}

// LinearSlope returns the least squares slope of y against its index 0..n-1. Fewer than 2 values
// has a slope of 0.
func LinearSlope(y []float64) float64 {
	if len(y) < 2 {
		return 0
	}
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	_, beta := stat.LinearRegression(x, y, nil, false)
	return beta
}
