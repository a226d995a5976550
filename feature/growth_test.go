package feature

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowthString(t *testing.T) {
	assert.Equal(t, "growth_linear", Linear().String())
	assert.Equal(t, "growth_intercept", Intercept().String())
}

func TestGrowthGenerate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(4 * 24 * time.Hour)
	tSeries := []time.Time{start, start.Add(48 * time.Hour), end, end.Add(48 * time.Hour)}
	epoch := NewTime("epoch").Generate(tSeries)

	testData := map[string]struct {
		g        *Growth
		start    time.Time
		end      time.Time
		expected []float64
	}{
		"intercept": {
			g:        Intercept(),
			start:    start,
			end:      end,
			expected: []float64{1, 1, 1, 1},
		},
		"linear extrapolates past training end": {
			g:        Linear(),
			start:    start,
			end:      end,
			expected: []float64{0, 0.5, 1, 1.5},
		},
		"linear with empty window": {
			g:        Linear(),
			start:    start,
			end:      start,
			expected: []float64{0, 0, 0, 0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.g.Generate(epoch, td.start, td.end)
			assert.InDeltaSlice(t, td.expected, res, 1e-9)
		})
	}
}

func TestGrowthUnmarshalJSON(t *testing.T) {
	out, err := json.Marshal(Linear().Decode())
	require.Nil(t, err)

	var g Growth
	require.Nil(t, json.Unmarshal(out, &g))
	assert.Equal(t, *Linear(), g)
}
