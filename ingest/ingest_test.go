package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func dailyCSV(start time.Time, n int, value func(i int) float64) string {
	var sb strings.Builder
	sb.WriteString("Date,Close\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%s,%.2f\n", start.AddDate(0, 0, i).Format(time.DateOnly), value(i))
	}
	return sb.String()
}

func TestRead(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		csv         string
		opt         *Options
		expectedT   []time.Time
		expectedY   []float64
		expectedDia Diagnostics
		err         error
	}{
		"nil options": {
			csv: "Date,Close\n2024-01-01,1\n",
			err: ErrNoColumn,
		},
		"unknown outlier method": {
			csv: "Date,Close\n2024-01-01,1\n",
			opt: &Options{DateColumn: "Date", ValueColumn: "Close", OutlierMethod: "mad"},
			err: ErrUnknownOutlierMethod,
		},
		"empty input": {
			csv: "",
			opt: NewDefaultOptions("Date", "Close"),
			err: ErrEmptySeries,
		},
		"header only": {
			csv: "Date,Close\n",
			opt: NewDefaultOptions("Date", "Close"),
			err: ErrEmptySeries,
		},
		"missing column": {
			csv: "Date,Close\n2024-01-01,1\n",
			opt: NewDefaultOptions("Date", "Open"),
			err: ErrColumnNotFound,
		},
		"all rows invalid": {
			csv: "Date,Close\nfoo,1\n2024-01-01,bar\n",
			opt: NewDefaultOptions("Date", "Close"),
			err: ErrEmptySeries,
		},
		"duplicate keep last": {
			csv: "Date,Close\n2024-01-02,10\n2024-01-01,5\n2024-01-02,12\n",
			opt: NewDefaultOptions("Date", "Close"),
			expectedT: []time.Time{
				start,
				start.AddDate(0, 0, 1),
			},
			expectedY:   []float64{5, 12},
			expectedDia: Diagnostics{Deduped: 1},
		},
		"case insensitive columns and mixed formats": {
			csv: "date,CLOSE,extra\n2024/01/01,\"1,000\",x\n20240102,(5)\n2024年1月3日,１２\n",
			opt: NewDefaultOptions("Date", "Close"),
			expectedT: []time.Time{
				start,
				start.AddDate(0, 0, 1),
				start.AddDate(0, 0, 2),
			},
			expectedY: []float64{1000, -5, 12},
		},
		"missing values counted": {
			csv: "Date,Close\n2024-01-01,1\n2024-01-02,\n2024-01-03,NaN\n2024-01-04,-\n2024-01-05,2\n",
			opt: NewDefaultOptions("Date", "Close"),
			expectedT: []time.Time{
				start,
				start.AddDate(0, 0, 4),
			},
			expectedY:   []float64{1, 2},
			expectedDia: Diagnostics{Missing: 3},
		},
		"outliers flagged not removed": {
			csv: "Date,Close\n2024-01-01,1\n2024-01-02,2\n2024-01-03,1\n2024-01-04,2\n2024-01-05,100\n",
			opt: NewDefaultOptions("Date", "Close"),
			expectedT: []time.Time{
				start,
				start.AddDate(0, 0, 1),
				start.AddDate(0, 0, 2),
				start.AddDate(0, 0, 3),
				start.AddDate(0, 0, 4),
			},
			expectedY:   []float64{1, 2, 1, 2, 100},
			expectedDia: Diagnostics{Outliers: 1},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Read(strings.NewReader(td.csv), td.opt)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expectedT, res.Series.T)
			assert.Equal(t, td.expectedY, res.Series.Y)
			assert.Equal(t, td.expectedDia, res.Diagnostics)
		})
	}
}

func TestReadUnparseableDates(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	csv := dailyCSV(start, 100, func(i int) float64 { return float64(i) })
	csv += ",1\n2023-13-45,2\n2023-02-30,3\n"

	res, err := Read(strings.NewReader(csv), NewDefaultOptions("Date", "Close"))
	require.NoError(t, err)
	assert.Equal(t, 100, res.Series.Len())
	assert.Equal(t, 3, res.Diagnostics.Missing)
	assert.Equal(t, 0, res.Diagnostics.Deduped)
}

func TestReadJunkDates(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	csv := dailyCSV(start, 100, func(i int) float64 { return 100 + float64(i) })
	csv += "1.5,100\n3/4,101\n12:30,102\n"

	res, err := Read(strings.NewReader(csv), NewDefaultOptions("Date", "Close"))
	require.NoError(t, err)
	assert.Equal(t, 100, res.Series.Len())
	assert.Equal(t, 3, res.Diagnostics.Missing)
	assert.Equal(t, start, res.Series.T[0])
}

func TestReadIdempotent(t *testing.T) {
	csv := "Date,Close\n2024-01-03,3\n2024-01-01,1\n2024-01-03,4\n2024-01-02,2\n2024-01-01,0\n"
	opt := NewDefaultOptions("Date", "Close")

	first, err := Read(strings.NewReader(csv), opt)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Diagnostics.Deduped)

	var sb strings.Builder
	sb.WriteString("Date,Close\n")
	for i, ts := range first.Series.T {
		fmt.Fprintf(&sb, "%s,%g\n", ts.Format(time.DateOnly), first.Series.Y[i])
	}

	second, err := Read(strings.NewReader(sb.String()), opt)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Diagnostics.Deduped)
	assert.Equal(t, first.Series, second.Series)
	assert.Equal(t, []float64{0, 2, 4}, second.Series.Y)
}

func TestReadEncodings(t *testing.T) {
	utf8Text := "日付,終値\n2024-01-01,１００\n2024-01-02,１０１\n"
	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(utf8Text))
	require.NoError(t, err)

	testData := map[string]struct {
		raw []byte
	}{
		"utf8":     {raw: []byte(utf8Text)},
		"utf8 bom": {raw: append([]byte{0xEF, 0xBB, 0xBF}, []byte(utf8Text)...)},
		"shiftjis": {raw: sjis},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Read(bytes.NewReader(td.raw), NewDefaultOptions("日付", "終値"))
			require.NoError(t, err)
			assert.Equal(t, []float64{100, 101}, res.Series.Y)
		})
	}
}

func TestReadZScore(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	csv := dailyCSV(start, 30, func(i int) float64 {
		if i == 20 {
			return 1000
		}
		return float64(i % 3)
	})

	opt := &Options{DateColumn: "Date", ValueColumn: "Close", OutlierMethod: OutlierMethodZScore}
	res, err := Read(strings.NewReader(csv), opt)
	require.NoError(t, err)
	assert.Equal(t, []int{20}, res.OutlierIndices)
	assert.Equal(t, 1, res.Diagnostics.Outliers)
}

func TestColumnNotFoundMessage(t *testing.T) {
	_, err := Read(strings.NewReader("Date,Close\n2024-01-01,1\n"), NewDefaultOptions("Date", "Open"))
	require.ErrorIs(t, err, ErrColumnNotFound)
	assert.Contains(t, err.Error(), "Date, Close")
}
