package profile

import (
	"testing"
	"time"

	"github.com/aouyang1/go-forecast-narrator/ingest"
	"github.com/aouyang1/go-forecast-narrator/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func TestCompute(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		y        []float64
		diag     ingest.Diagnostics
		expected Profile
	}{
		"constant": {
			y: timedataset.GenerateConstY(10, 100),
			expected: Profile{
				Rows: 10, DateMin: "2024-01-01", DateMax: "2024-01-10",
				Mean: 100, Median: 100, Min: 100, Max: 100, Std: 0, CV: ptr(0),
			},
		},
		"zero mean": {
			y: []float64{-1, 1, -1, 1},
			expected: Profile{
				Rows: 4, DateMin: "2024-01-01", DateMax: "2024-01-04",
				Mean: 0, Median: 0, Min: -1, Max: 1, Std: 1.1547005383792515, CV: nil,
			},
		},
		"single row": {
			y:    []float64{5},
			diag: ingest.Diagnostics{Missing: 2, Deduped: 1},
			expected: Profile{
				Rows: 1, DateMin: "2024-01-01", DateMax: "2024-01-01",
				Mean: 5, Median: 5, Min: 5, Max: 5, Std: 0, CV: ptr(0),
				Missing: 2, Duplicates: 1,
			},
		},
		"even count median": {
			y:    []float64{1, 2, 3, 10},
			diag: ingest.Diagnostics{Outliers: 1},
			expected: Profile{
				Rows: 4, DateMin: "2024-01-01", DateMax: "2024-01-04",
				Mean: 4, Median: 2.5, Min: 1, Max: 10, Std: 4.08248290463863, CV: ptr(4.08248290463863 / 4),
				Outliers: 1,
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ds, err := timedataset.NewUnivariateDataset(timedataset.GenerateDailyT(start, len(td.y)), td.y)
			require.NoError(t, err)

			res := Compute(ds, td.diag)
			assert.Equal(t, td.expected.Rows, res.Rows)
			assert.Equal(t, td.expected.DateMin, res.DateMin)
			assert.Equal(t, td.expected.DateMax, res.DateMax)
			assert.InDelta(t, td.expected.Mean, res.Mean, 1e-9)
			assert.InDelta(t, td.expected.Median, res.Median, 1e-9)
			assert.InDelta(t, td.expected.Min, res.Min, 1e-9)
			assert.InDelta(t, td.expected.Max, res.Max, 1e-9)
			assert.InDelta(t, td.expected.Std, res.Std, 1e-9)
			if td.expected.CV == nil {
				assert.Nil(t, res.CV)
			} else {
				require.NotNil(t, res.CV)
				assert.InDelta(t, *td.expected.CV, *res.CV, 1e-9)
			}
			assert.Equal(t, td.expected.Missing, res.Missing)
			assert.Equal(t, td.expected.Duplicates, res.Duplicates)
			assert.Equal(t, td.expected.Outliers, res.Outliers)
		})
	}
}

func TestComputeEmpty(t *testing.T) {
	res := Compute(nil, ingest.Diagnostics{Missing: 3})
	assert.Equal(t, Profile{Missing: 3}, res)
}
