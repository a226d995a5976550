// Package ingest reads uploaded tabular bytes into a clean daily series, counting the rows it had to
// drop or collapse along the way.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aouyang1/go-forecast-narrator/stats"
	"github.com/aouyang1/go-forecast-narrator/timedataset"
)

const (
	OutlierMethodIQR    = "iqr"
	OutlierMethodZScore = "zscore"

	DefaultIQRFactor       = 1.5
	DefaultZScoreThreshold = 3.0
)

var (
	ErrParse                = errors.New("unable to parse tabular data")
	ErrColumnNotFound       = errors.New("column not found")
	ErrEmptySeries          = errors.New("no valid rows after cleaning")
	ErrUnknownOutlierMethod = errors.New("unknown outlier method")
	ErrNegativeThreshold    = errors.New("negative outlier threshold")
	ErrNoColumn             = errors.New("date and value columns must be set")
)

// Options selects the columns to read and how outliers are flagged
type Options struct {
	DateColumn  string `json:"date_column"`
	ValueColumn string `json:"value_column"`

	OutlierMethod string `json:"outlier_method"`
	// OutlierThreshold is the IQR factor or the absolute z-score depending on the method.
	// 0 uses the default of the method.
	OutlierThreshold float64 `json:"outlier_threshold"`
}

// NewDefaultOptions returns options for the given columns flagging outliers with a 1.5 IQR fence
func NewDefaultOptions(dateCol, valueCol string) *Options {
	return &Options{
		DateColumn:    dateCol,
		ValueColumn:   valueCol,
		OutlierMethod: OutlierMethodIQR,
	}
}

func (o *Options) Validate() error {
	if o.DateColumn == "" || o.ValueColumn == "" {
		return ErrNoColumn
	}
	return ValidateOutlierOptions(o.OutlierMethod, o.OutlierThreshold)
}

// ValidateOutlierOptions checks an outlier method and threshold. An empty method is IQR.
func ValidateOutlierOptions(method string, threshold float64) error {
	switch method {
	case "", OutlierMethodIQR, OutlierMethodZScore:
	default:
		return fmt.Errorf("%q, %w", method, ErrUnknownOutlierMethod)
	}
	if threshold < 0 {
		return ErrNegativeThreshold
	}
	return nil
}

func (o *Options) outliers(y []float64) []int {
	switch o.OutlierMethod {
	case OutlierMethodZScore:
		threshold := o.OutlierThreshold
		if threshold == 0 {
			threshold = DefaultZScoreThreshold
		}
		return stats.ZScoreOutliers(y, threshold)
	default:
		factor := o.OutlierThreshold
		if factor == 0 {
			factor = DefaultIQRFactor
		}
		return stats.IQROutliers(y, factor)
	}
}

// Diagnostics counts the recoverable problems found while cleaning
type Diagnostics struct {
	Outliers int `json:"outliers"`
	Missing  int `json:"missing"`
	Deduped  int `json:"deduped"`
}

// Result is the cleaned series and what was done to get there. Outliers are only flagged and
// remain in the series.
type Result struct {
	Series         *timedataset.TimeDataset
	Diagnostics    Diagnostics
	OutlierIndices []int
}

type observation struct {
	t time.Time
	y float64
}

// Read parses the date and value columns, drops rows where either cannot be coerced, sorts by
// date and collapses duplicate dates keeping the last occurrence in file order.
func Read(r io.Reader, opt *Options) (*Result, error) {
	if opt == nil {
		return nil, ErrNoColumn
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptySeries
	}

	header := normalizeHeader(records[0])
	dateIdx, err := columnIndex(header, opt.DateColumn)
	if err != nil {
		return nil, err
	}
	valueIdx, err := columnIndex(header, opt.ValueColumn)
	if err != nil {
		return nil, err
	}

	var diag Diagnostics
	obs := make([]observation, 0, len(records)-1)
	for _, rec := range records[1:] {
		t, err := ParseDate(cell(rec, dateIdx))
		if err != nil {
			diag.Missing++
			continue
		}
		y, err := ParseValue(cell(rec, valueIdx))
		if err != nil {
			diag.Missing++
			continue
		}
		obs = append(obs, observation{t, y})
	}
	if len(obs) == 0 {
		return nil, ErrEmptySeries
	}

	obs, diag.Deduped = dedupKeepLast(obs)

	t := make([]time.Time, len(obs))
	y := make([]float64, len(obs))
	for i, o := range obs {
		t[i] = o.t
		y[i] = o.y
	}
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return nil, fmt.Errorf("unable to build series, %w", err)
	}

	outlierIdx := opt.outliers(y)
	diag.Outliers = len(outlierIdx)

	return &Result{
		Series:         td,
		Diagnostics:    diag,
		OutlierIndices: outlierIdx,
	}, nil
}

// dedupKeepLast sorts by date keeping file order among equal dates and then retains only the
// last observation of every date
func dedupKeepLast(obs []observation) ([]observation, int) {
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].t.Before(obs[j].t)
	})

	res := make([]observation, 0, len(obs))
	var deduped int
	for _, o := range obs {
		if n := len(res); n > 0 && res[n-1].t.Equal(o.t) {
			res[n-1] = o
			deduped++
			continue
		}
		res = append(res, o)
	}
	return res, deduped
}

func columnIndex(header []string, name string) (int, error) {
	target := normalizeCell(name)
	for i, col := range header {
		if col == target {
			return i, nil
		}
	}
	for i, col := range header {
		if strings.EqualFold(col, target) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%q not in [%s], %w", name, strings.Join(header, ", "), ErrColumnNotFound)
}

func cell(rec []string, idx int) string {
	if idx >= len(rec) {
		return ""
	}
	return rec[idx]
}
