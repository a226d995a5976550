package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateT returns n points ending one interval before the current minute
func GenerateT(n int, interval time.Duration, nowFunc func() time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	ct := time.Unix(nowFunc().Unix()/60*60, 0).Add(-time.Duration(n) * interval).UTC()
	for i := 0; i < n; i++ {
		t = append(t, ct.Add(interval*time.Duration(i)))
	}
	return t
}

// GenerateDailyT returns n consecutive calendar days starting at start
func GenerateDailyT(start time.Time, n int) []time.Time {
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, start.AddDate(0, 0, i))
	}
	return t
}

// GenerateBusinessDayT returns the n most recent weekdays ending on or before end
func GenerateBusinessDayT(end time.Time, n int) []time.Time {
	t := make([]time.Time, n)
	ct := end
	for i := n - 1; i >= 0; {
		switch ct.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			t[i] = ct
			i--
		}
		ct = ct.AddDate(0, 0, -1)
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func (s Series) SetConst(t []time.Time, val float64, start, end time.Time) Series {
	n := len(s)
	for i := 0; i < n; i++ {
		if (t[i].After(start) || t[i].Equal(start)) && t[i].Before(end) {
			s[i] = val
		}
	}
	return s
}

func (s Series) MaskWithWeekend(t []time.Time) Series {
	n := len(s)
	for i := 0; i < n; i++ {
		switch t[i].Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			s[i] = 0.0
		}
	}
	return s
}

func (s Series) MaskWithTimeRange(start, end time.Time, t []time.Time) Series {
	n := len(s)
	for i := 0; i < n; i++ {
		if t[i].Before(start) || t[i].After(end) {
			s[i] = 0.0
		}
	}
	return s
}

// Floor raises every value below floor up to it
func (s Series) Floor(floor float64) Series {
	for i, v := range s {
		s[i] = math.Max(v, floor)
	}
	return s
}

// Round rounds every value to the given number of decimals
func (s Series) Round(decimals int) Series {
	scale := math.Pow(10, float64(decimals))
	for i, v := range s {
		s[i] = math.Round(v*scale) / scale
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateLinearY returns start + slope*i for each index i
func GenerateLinearY(n int, start, slope float64) Series {
	y := make([]float64, n)
	for i := range y {
		y[i] = start + slope*float64(i)
	}
	return Series(y)
}

func GenerateWaveY(t []time.Time, amp, periodSec, order, timeOffset float64) Series {
	n := len(t)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		val := amp * math.Sin(2.0*math.Pi*order/periodSec*(float64(t[i].Unix())+timeOffset))
		y = append(y, val)
	}
	return Series(y)
}

// GenerateIndexWaveY returns a sine wave over the sample index instead of time, useful for
// series that skip calendar days
func GenerateIndexWaveY(n int, amp, periodSamples float64) Series {
	y := make([]float64, n)
	for i := range y {
		y[i] = amp * math.Sin(float64(i)*2.0*math.Pi/periodSamples)
	}
	return Series(y)
}

// GenerateNoise returns gaussian noise whose scale itself oscillates with the given period
func GenerateNoise(rng *rand.Rand, t []time.Time, noiseScale, amp, periodSec, order, timeOffset float64) Series {
	n := len(t)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		scale := (noiseScale + amp*math.Sin(2.0*math.Pi*order/periodSec*(float64(t[i].Unix())+timeOffset)))
		y = append(y, rng.NormFloat64()*scale)
	}
	return Series(y)
}

// GenerateRandomWalk returns the cumulative sum of gaussian steps with the given drift and scale
// starting from start
func GenerateRandomWalk(rng *rand.Rand, n int, start, drift, scale float64) Series {
	y := make([]float64, n)
	level := start
	for i := range y {
		level += drift + rng.NormFloat64()*scale
		y[i] = level
	}
	return Series(y)
}

// GenerateChange returns a series that jumps by bias at chpt and then grows by slope per day
func GenerateChange(t []time.Time, chpt time.Time, bias, slope float64) Series {
	n := len(t)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		if t[i].After(chpt) || t[i].Equal(chpt) {
			y[i] = bias + slope*t[i].Sub(chpt).Hours()/24.0
		}
	}
	return Series(y)
}
