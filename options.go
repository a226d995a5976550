package forecaster

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-forecast-narrator/feature"
	"github.com/aouyang1/go-forecast-narrator/forecast/options"
)

const (
	// DefaultResidualWindow is the number of daily residuals used to compute each rolling
	// standard deviation sample of the uncertainty model
	DefaultResidualWindow = 28

	// DefaultResidualZscore scales the rolling standard deviation into an 80% band
	DefaultResidualZscore = 1.2816
)

var (
	ErrNonPositiveZscore  = errors.New("residual z-score must be positive")
	ErrNegativeWindow     = errors.New("residual window must not be negative")
	ErrInvalidPercentiles = errors.New("lower percentile must be less than upper percentile")
)

// OutlierOptions configures the iterative removal of outliers from the series fit. Each pass
// refits the series after masking the residual outliers found with a tukey fence on the given
// percentiles.
type OutlierOptions struct {
	NumPasses       int     `json:"num_passes"`
	UpperPercentile float64 `json:"upper_percentile"`
	LowerPercentile float64 `json:"lower_percentile"`
	TukeyFactor     float64 `json:"tukey_factor"`
}

// DefaultOutlierPasses is the number of refits applied to the series by default
const DefaultOutlierPasses = 3

func NewOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		NumPasses:       DefaultOutlierPasses,
		UpperPercentile: 0.9,
		LowerPercentile: 0.1,
		TukeyFactor:     1.0,
	}
}

// Options configures the series model, the uncertainty model fit on the rolling residual
// standard deviation and optional outlier removal.
type Options struct {
	SeriesOptions   *options.Options `json:"series_options"`
	ResidualOptions *options.Options `json:"residual_options"`

	OutlierOptions *OutlierOptions `json:"outlier_options"`
	ResidualWindow int             `json:"residual_window"`
	ResidualZscore float64         `json:"residual_zscore"`
}

// NewDefaultResidualOptions returns the options of the uncertainty model which only tracks
// linear growth and weekly seasonality of the residual spread
func NewDefaultResidualOptions() *options.Options {
	opt := options.NewDefaultOptions()
	opt.ChangepointOptions = options.ChangepointOptions{}
	opt.SeasonalityOptions = options.SeasonalityOptions{
		SeasonalityConfigs: []options.SeasonalityConfig{
			options.NewWeeklySeasonalityConfig(options.DefaultWeeklyOrders),
		},
	}
	opt.GrowthType = feature.GrowthLinear
	return opt
}

// NewDefaultOptions masks residual outliers of the series fit so a single spike cannot pull the
// changepoint ramps. The returned history is never modified.
func NewDefaultOptions() *Options {
	return &Options{
		SeriesOptions:   options.NewDefaultOptions(),
		ResidualOptions: NewDefaultResidualOptions(),
		OutlierOptions:  NewOutlierOptions(),
		ResidualWindow:  DefaultResidualWindow,
		ResidualZscore:  DefaultResidualZscore,
	}
}

// Validate checks both model options and the residual settings
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	if err := o.SeriesOptions.Validate(); err != nil {
		return fmt.Errorf("unable to validate series options, %w", err)
	}
	if err := o.ResidualOptions.Validate(); err != nil {
		return fmt.Errorf("unable to validate residual options, %w", err)
	}
	if o.ResidualWindow < 0 {
		return ErrNegativeWindow
	}
	if o.ResidualZscore <= 0 {
		return ErrNonPositiveZscore
	}
	if o.OutlierOptions != nil && o.OutlierOptions.LowerPercentile >= o.OutlierOptions.UpperPercentile {
		return ErrInvalidPercentiles
	}
	return nil
}

// Copy returns a deep copy of the options
func (o *Options) Copy() *Options {
	if o == nil {
		return nil
	}
	c := *o
	c.SeriesOptions = o.SeriesOptions.Copy()
	c.ResidualOptions = o.ResidualOptions.Copy()
	if o.OutlierOptions != nil {
		outlierOpt := *o.OutlierOptions
		c.OutlierOptions = &outlierOpt
	}
	return &c
}
