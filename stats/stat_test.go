package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectOutliers(t *testing.T) {
	testData := map[string]struct {
		y           []float64
		lowerPerc   float64
		upperPerc   float64
		tukeyFactor float64
		expected    []int
	}{
		"empty": {
			y:        nil,
			expected: nil,
		},
		"no outliers": {
			y:           []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			lowerPerc:   0.1,
			upperPerc:   0.9,
			tukeyFactor: 1.0,
			expected:    nil,
		},
		"single spike": {
			y:           []float64{1, 2, 1, 2, 1, 2, 1, 2, 1, 100},
			lowerPerc:   0.1,
			upperPerc:   0.8,
			tukeyFactor: 1.0,
			expected:    []int{9},
		},
		"constant series": {
			y:           []float64{3, 3, 3, 3},
			lowerPerc:   0.1,
			upperPerc:   0.9,
			tukeyFactor: 1.0,
			expected:    nil,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := DetectOutliers(td.y, td.lowerPerc, td.upperPerc, td.tukeyFactor)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestQuantile(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		p        float64
		expected float64
		err      error
	}{
		"empty":           {y: nil, p: 0.5, err: ErrEmptySlice},
		"median odd":      {y: []float64{3, 1, 2}, p: 0.5, expected: 2},
		"median even":     {y: []float64{4, 1, 3, 2}, p: 0.5, expected: 2.5},
		"first quartile":  {y: []float64{1, 2, 3, 4}, p: 0.25, expected: 1.75},
		"third quartile":  {y: []float64{1, 2, 3, 4}, p: 0.75, expected: 3.25},
		"clamped above 1": {y: []float64{1, 2, 3}, p: 1.5, expected: 3},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Quantile(td.y, td.p)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.expected, res, 1e-12)
		})
	}
}

func TestIQROutliers(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		factor   float64
		expected []int
	}{
		"too few points": {
			y:        []float64{1, 100, 1},
			factor:   1.5,
			expected: nil,
		},
		"high and low": {
			y:        []float64{-50, 10, 11, 12, 10, 11, 12, 10, 11, 80},
			factor:   1.5,
			expected: []int{0, 9},
		},
		"none": {
			y:        []float64{10, 11, 12, 13},
			factor:   1.5,
			expected: nil,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, IQROutliers(td.y, td.factor))
		})
	}
}

func TestZScoreOutliers(t *testing.T) {
	y := make([]float64, 0, 21)
	for i := 0; i < 20; i++ {
		y = append(y, float64(10+i%2))
	}
	y = append(y, 100)

	assert.Equal(t, []int{20}, ZScoreOutliers(y, 3.0))
	assert.Nil(t, ZScoreOutliers([]float64{5, 5, 5, 5}, 3.0))
}

func TestSampleStdDev(t *testing.T) {
	assert.Equal(t, 0.0, SampleStdDev([]float64{4}))
	assert.InDelta(t, 1.2909944, SampleStdDev([]float64{1, 2, 3, 4}), 1e-6)
}

func TestPearson(t *testing.T) {
	testData := map[string]struct {
		x, y     []float64
		expected float64
		err      error
	}{
		"perfect positive": {
			x:        []float64{1, 2, 3, 4},
			y:        []float64{2, 4, 6, 8},
			expected: 1.0,
		},
		"perfect negative": {
			x:        []float64{1, 2, 3, 4},
			y:        []float64{8, 6, 4, 2},
			expected: -1.0,
		},
		"constant": {
			x:   []float64{1, 1, 1},
			y:   []float64{1, 2, 3},
			err: ErrConstantSeries,
		},
		"length mismatch": {
			x:   []float64{1, 2},
			y:   []float64{1},
			err: ErrLengthMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Pearson(td.x, td.y)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.expected, res, 1e-12)
		})
	}
}

func TestLinearSlope(t *testing.T) {
	assert.Equal(t, 0.0, LinearSlope(nil))
	assert.Equal(t, 0.0, LinearSlope([]float64{5}))
	assert.InDelta(t, 2.0, LinearSlope([]float64{1, 3, 5, 7}), 1e-12)
	assert.InDelta(t, -0.5, LinearSlope([]float64{10, 9.5, 9, 8.5}), 1e-12)
}
