package analyze

import (
	"errors"
)

const (
	// WeeklyStrengthHigh and WeeklyStrengthMedium bucket the ratio of between weekday variance to
	// total variance
	WeeklyStrengthHigh   = 0.3
	WeeklyStrengthMedium = 0.1
	MinWeeklyPoints      = 14

	StrengthStrong  = "強"
	StrengthMedium  = "中"
	StrengthWeak    = "弱"
	StrengthUnknown = "不明"

	MinAutocorrPoints = 14
	AutocorrLag       = 7

	DefaultSlopeWindow              = 30
	DefaultLookbackDays             = 90
	DefaultChangepointWindow        = 14
	DefaultChangepointMinDeltaRatio = 0.5
	DefaultMaxChangepoints          = 10
)

var (
	ErrNonPositiveWindow   = errors.New("window must be positive")
	ErrNegativeDeltaRatio  = errors.New("changepoint delta ratio must be non-negative")
	ErrNegativeChangepoint = errors.New("max changepoints must be non-negative")
)

type Options struct {
	SlopeWindow  int `json:"slope_window"`
	LookbackDays int `json:"lookback_days"`

	ChangepointWindow        int     `json:"changepoint_window"`
	ChangepointMinDeltaRatio float64 `json:"changepoint_min_delta_ratio"`
	MaxChangepoints          int     `json:"max_changepoints"`
}

func NewDefaultOptions() *Options {
	return &Options{
		SlopeWindow:              DefaultSlopeWindow,
		LookbackDays:             DefaultLookbackDays,
		ChangepointWindow:        DefaultChangepointWindow,
		ChangepointMinDeltaRatio: DefaultChangepointMinDeltaRatio,
		MaxChangepoints:          DefaultMaxChangepoints,
	}
}

func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	if o.SlopeWindow <= 0 || o.LookbackDays <= 0 || o.ChangepointWindow <= 0 {
		return ErrNonPositiveWindow
	}
	if o.ChangepointMinDeltaRatio < 0 {
		return ErrNegativeDeltaRatio
	}
	if o.MaxChangepoints < 0 {
		return ErrNegativeChangepoint
	}
	return nil
}

// StrengthLabel buckets a weekly variance ratio. A nil ratio is unknown.
func StrengthLabel(ratio *float64) string {
	if ratio == nil {
		return StrengthUnknown
	}
	switch {
	case *ratio >= WeeklyStrengthHigh:
		return StrengthStrong
	case *ratio >= WeeklyStrengthMedium:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}
