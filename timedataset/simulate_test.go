package timedataset

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateT(t *testing.T) {
	nowFunc := func() time.Time {
		return time.Date(1970, 1, 8, 0, 0, 0, 0, time.UTC)
	}

	numPnts := 7
	res := GenerateT(numPnts, 24*time.Hour, nowFunc)
	assert.Len(t, res, numPnts)

	assert.Equal(t, res[0], time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, res[numPnts-1], time.Date(1970, 1, 7, 0, 0, 0, 0, time.UTC))
}

func TestGenerateBusinessDayT(t *testing.T) {
	// 2024-01-07 is a Sunday
	end := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	res := GenerateBusinessDayT(end, 6)
	require.Len(t, res, 6)
	assert.Equal(t, time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC), res[0])
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), res[5])
	assert.False(t, TimeSlice(res).HasWeekend())
}

func TestSeries(t *testing.T) {
	numPnts := 7
	s := Series(GenerateConstY(numPnts, 1))

	res := s.Add(GenerateConstY(numPnts, 2))
	require.Equal(t, Series([]float64{3, 3, 3, 3, 3, 3, 3}), res)

	nowFunc := func() time.Time {
		return time.Date(1970, 1, 8, 0, 0, 0, 0, time.UTC)
	}

	tSeries := GenerateT(numPnts, 24*time.Hour, nowFunc)
	s.SetConst(tSeries, 2.0,
		time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(1970, 1, 5, 0, 0, 0, 0, time.UTC),
	)
	assert.Equal(t, Series([]float64{3, 3, 2, 2, 3, 3, 3}), s)

	s.MaskWithWeekend(tSeries)
	assert.Equal(t, Series([]float64{0, 0, 2, 2, 0, 0, 0}), s)

	s.Add(GenerateConstY(numPnts, 1))
	s.MaskWithTimeRange(
		time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(1970, 1, 5, 0, 0, 0, 0, time.UTC),
		tSeries,
	)
	assert.Equal(t, Series([]float64{0, 0, 3, 3, 1, 0, 0}), s)

	assert.Equal(t, Series([]float64{5, 5.5, 6}), GenerateLinearY(3, 5, 0.5))
	assert.Equal(t, Series([]float64{1.2, 3}), Series([]float64{1.24, 3}).Round(1))
	assert.Equal(t, Series([]float64{100, 150}), Series([]float64{20, 150}).Floor(100))
}

func TestGenerateRandomWalkDeterministic(t *testing.T) {
	a := GenerateRandomWalk(rand.New(rand.NewPCG(42, 0)), 50, 2000, 0.2, 10)
	b := GenerateRandomWalk(rand.New(rand.NewPCG(42, 0)), 50, 2000, 0.2, 10)
	assert.Equal(t, a, b)

	c := GenerateRandomWalk(rand.New(rand.NewPCG(7, 0)), 50, 2000, 0.2, 10)
	assert.NotEqual(t, a, c)
}

func TestGenerateChange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := GenerateDailyT(start, 4)
	res := GenerateChange(tSeries, tSeries[2], 10, 2)
	assert.Equal(t, Series([]float64{0, 0, 10, 12}), res)
}
