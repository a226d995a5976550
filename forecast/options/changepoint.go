package options

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-forecast-narrator/feature"
	"github.com/aouyang1/go-forecast-narrator/forecast/util"
)

const (
	DefaultAutoNumChangepoints = 10
	DefaultAutoRange           = 0.8

	// MinPointsPerChangepoint limits the number of automatic changepoints on short series
	MinPointsPerChangepoint = 4
)

// Changepoint describes a point in time that will change the ongoing trend. This will
// include both a bias a growth feature.
type Changepoint struct {
	T    time.Time `json:"time"`
	Name string    `json:"name"`
}

func NewChangepoint(name string, t time.Time) Changepoint {
	return Changepoint{t, name}
}

// ChangepointOptions configures the changepoint fit to either use auto-detection
// by evenly placing N changepoints in the first AutoRange fraction of the training window or
// to use explicitly provided changepoints. Auto-detected changepoints are regularized so
// the ones that do not improve the fit are removed.
type ChangepointOptions struct {
	Changepoints        []Changepoint `json:"changepoints"`
	EnableGrowth        bool          `json:"enable_growth"`
	Auto                bool          `json:"auto"`
	AutoNumChangepoints int           `json:"auto_num_changepoints"`
	AutoRange           float64       `json:"auto_range"`
}

// NewDefaultChangepointOptions generates a set of default changepoint options
func NewDefaultChangepointOptions() ChangepointOptions {
	return ChangepointOptions{
		Auto:                true,
		EnableGrowth:        true,
		AutoNumChangepoints: DefaultAutoNumChangepoints,
		AutoRange:           DefaultAutoRange,
	}
}

func (c ChangepointOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	noCfg := " None"
	if len(c.Changepoints) > 0 {
		noCfg = ""
	}
	if _, err := fmt.Fprintf(w, "%s%sChangepoints:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	if len(c.Changepoints) > 0 {
		if _, err := fmt.Fprintf(tbl, "%s%sName\tDatetime\t\n", prefix, util.IndentExpand(indent, indentGrowth+1)); err != nil {
			return err
		}
	}
	for _, chpt := range c.Changepoints {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			chpt.Name, chpt.T.Format(time.DateOnly)); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// GenerateAutoChangepoints replaces the configured changepoints with evenly spaced ones over
// the first AutoRange of the training window. The training start is never a changepoint since
// it would duplicate the growth feature.
func (c *ChangepointOptions) GenerateAutoChangepoints(t []time.Time) []Changepoint {
	if !c.Auto || len(t) < 2 {
		return nil
	}

	if c.AutoNumChangepoints <= 0 {
		c.AutoNumChangepoints = DefaultAutoNumChangepoints
	}
	if c.AutoRange <= 0 || c.AutoRange > 1 {
		c.AutoRange = DefaultAutoRange
	}
	n := min(c.AutoNumChangepoints, len(t)/MinPointsPerChangepoint)

	minTime, maxTime := t[0], t[len(t)-1]
	window := time.Duration(float64(maxTime.Sub(minTime)) * c.AutoRange)

	chpts := make([]Changepoint, 0, n)
	for i := 1; i <= n; i++ {
		chpntTime := minTime.Add(window * time.Duration(i) / time.Duration(n))
		chpts = append(chpts, NewChangepoint("auto_"+strconv.Itoa(i-1), chpntTime))
	}

	c.Changepoints = chpts
	return chpts
}

// GenerateFeatures produces a bias (step) feature per changepoint and a growth (ramp) feature
// when growth is enabled. The ramp is scaled to 1 at the training end time.
func (c ChangepointOptions) GenerateFeatures(t []time.Time, trainingEndTime time.Time) *feature.Set {
	feat := feature.NewSet()
	for i, chpt := range c.Changepoints {
		// changepoints at or after the training end cannot be modeled
		if !chpt.T.Before(trainingEndTime) {
			continue
		}

		delta := trainingEndTime.Sub(chpt.T).Seconds()
		bias := make([]float64, len(t))
		var growth []float64
		if c.EnableGrowth {
			growth = make([]float64, len(t))
		}
		for j, tPnt := range t {
			if tPnt.Before(chpt.T) {
				continue
			}
			bias[j] = 1.0
			if c.EnableGrowth {
				growth[j] = tPnt.Sub(chpt.T).Seconds() / delta
			}
		}

		chpntName := strconv.Itoa(i)
		if chpt.Name != "" {
			chpntName = chpt.Name
		}
		feat.Set(feature.NewChangepoint(chpntName, feature.ChangepointCompBias), bias)
		if c.EnableGrowth {
			feat.Set(feature.NewChangepoint(chpntName, feature.ChangepointCompSlope), growth)
		}
	}
	return feat
}
