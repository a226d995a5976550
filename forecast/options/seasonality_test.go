package options

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeasonalityFitWindow(t *testing.T) {
	day := 24 * time.Hour

	testData := map[string]struct {
		span       time.Duration
		hasWeekend bool
		expected   []SeasonalityConfig
	}{
		"too short for any": {
			span:       13 * day,
			hasWeekend: true,
			expected:   []SeasonalityConfig{},
		},
		"weekly only": {
			span:       400 * day,
			hasWeekend: true,
			expected:   []SeasonalityConfig{NewWeeklySeasonalityConfig(DefaultWeeklyOrders)},
		},
		"weekly capped without weekends": {
			span:       400 * day,
			hasWeekend: false,
			expected:   []SeasonalityConfig{NewWeeklySeasonalityConfig(NoWeekendWeeklyOrders)},
		},
		"weekly and yearly": {
			span:       731 * day,
			hasWeekend: true,
			expected: []SeasonalityConfig{
				NewWeeklySeasonalityConfig(DefaultWeeklyOrders),
				NewYearlySeasonalityConfig(DefaultYearlyOrders),
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := NewDefaultSeasonalityOptions()
			opt.FitWindow(td.span, td.hasWeekend)
			assert.Equal(t, td.expected, opt.SeasonalityConfigs)
		})
	}
}

func TestSeasonalityRemoveDuplicates(t *testing.T) {
	opt := SeasonalityOptions{
		SeasonalityConfigs: []SeasonalityConfig{
			NewYearlySeasonalityConfig(2),
			NewWeeklySeasonalityConfig(1),
			NewWeeklySeasonalityConfig(3),
			NewSeasonalityConfig("", time.Hour, 1),
			NewSeasonalityConfig("empty", time.Hour, 0),
		},
	}
	opt.removeDuplicates()
	assert.Equal(t, []SeasonalityConfig{
		NewWeeklySeasonalityConfig(3),
		NewYearlySeasonalityConfig(2),
	}, opt.SeasonalityConfigs)
}
