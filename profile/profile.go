// Package profile computes descriptive statistics of a cleaned series.
package profile

import (
	"time"

	"github.com/aouyang1/go-forecast-narrator/ingest"
	"github.com/aouyang1/go-forecast-narrator/stats"
	"github.com/aouyang1/go-forecast-narrator/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Profile is an immutable snapshot of the series statistics. Std is the sample standard deviation
// and CV is nil when the mean is 0.
type Profile struct {
	Rows       int      `json:"rows"`
	DateMin    string   `json:"date_min"`
	DateMax    string   `json:"date_max"`
	Mean       float64  `json:"mean"`
	Median     float64  `json:"median"`
	Min        float64  `json:"min"`
	Max        float64  `json:"max"`
	Std        float64  `json:"std"`
	CV         *float64 `json:"cv"`
	Missing    int      `json:"missing"`
	Duplicates int      `json:"duplicates"`
	Outliers   int      `json:"outliers"`
}

// Compute builds the profile of td carrying over the ingest diagnostics
func Compute(td *timedataset.TimeDataset, diag ingest.Diagnostics) Profile {
	p := Profile{
		Missing:    diag.Missing,
		Duplicates: diag.Deduped,
		Outliers:   diag.Outliers,
	}
	if td == nil || td.Len() == 0 {
		return p
	}

	y := td.Y
	tSlice := timedataset.TimeSlice(td.T)
	p.Rows = len(y)
	p.DateMin = tSlice.StartTime().Format(time.DateOnly)
	p.DateMax = tSlice.EndTime().Format(time.DateOnly)
	p.Mean = stat.Mean(y, nil)
	p.Median, _ = stats.Median(y)
	p.Min = floats.Min(y)
	p.Max = floats.Max(y)
	p.Std = stats.SampleStdDev(y)
	if p.Mean != 0 {
		cv := p.Std / p.Mean
		p.CV = &cv
	}
	return p
}
