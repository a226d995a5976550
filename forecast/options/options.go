// Package options contains all forecast options for a linear fit of a univariate daily time series
package options

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aouyang1/go-forecast-narrator/feature"
	"github.com/aouyang1/go-forecast-narrator/linearmodel"
)

const (
	LabelTimeEpoch = "epoch"

	LabelSeasWeekly = "weekly"
	LabelSeasYearly = "yearly"

	// DefaultRegularization is the lambda applied to changepoint and event features relative to
	// the number of observations and the standard deviation of the training data
	DefaultRegularization = 0.01
)

var (
	ErrUnknownTimeFeature     = errors.New("unknown time feature")
	ErrNegativeRegularization = errors.New("negative regularization")
	ErrUnknownGrowthType      = errors.New("unknown growth type")
)

// Options configures a forecast by specifying changepoints, seasonality order, holiday events
// and an optional regularization parameter where higher values removes more changepoints
// that contribute the least to the fit.
type Options struct {
	ChangepointOptions ChangepointOptions `json:"changepoint_options"`

	// Lasso related options
	Regularization float64 `json:"regularization"`
	Iterations     int     `json:"iterations"`
	Tolerance      float64 `json:"tolerance"`

	SeasonalityOptions SeasonalityOptions `json:"seasonality_options"`
	EventOptions       EventOptions       `json:"event_options"`
	GrowthType         string             `json:"growth_type"`
}

// NewDefaultOptions returns a set of default forecast options with linear growth, automatic
// changepoints and weekly plus yearly seasonality
func NewDefaultOptions() *Options {
	return &Options{
		ChangepointOptions: NewDefaultChangepointOptions(),
		Regularization:     DefaultRegularization,
		Iterations:         linearmodel.DefaultIterations,
		Tolerance:          linearmodel.DefaultTolerance,
		SeasonalityOptions: NewDefaultSeasonalityOptions(),
		GrowthType:         feature.GrowthLinear,
	}
}

// Validate checks the options for values that cannot be fit
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	if o.Regularization < 0 {
		return ErrNegativeRegularization
	}
	switch o.GrowthType {
	case "", feature.GrowthLinear:
	default:
		return fmt.Errorf("%q, %w", o.GrowthType, ErrUnknownGrowthType)
	}
	if o.EventOptions.HolidayCountry != "" {
		if _, err := CountryHolidays(o.EventOptions.HolidayCountry); err != nil {
			return err
		}
	}
	return nil
}

// Copy returns a deep copy of the options so a fit can adjust them without affecting the caller
func (o *Options) Copy() *Options {
	if o == nil {
		return nil
	}
	c := *o
	c.ChangepointOptions.Changepoints = slices.Clone(o.ChangepointOptions.Changepoints)
	c.SeasonalityOptions.SeasonalityConfigs = slices.Clone(o.SeasonalityOptions.SeasonalityConfigs)
	c.EventOptions.Events = slices.Clone(o.EventOptions.Events)
	return &c
}

// NewLassoOptions builds the lasso options for a design matrix with the given feature labels.
// Only changepoint and event features are penalized.
func (o *Options) NewLassoOptions(labels *feature.Labels, lambda float64) *linearmodel.LassoOptions {
	lassoOpt := linearmodel.NewDefaultLassoOptions()
	lassoOpt.Lambda = lambda
	lassoOpt.FitIntercept = true

	lassoOpt.Iterations = o.Iterations
	if o.Iterations == 0 {
		lassoOpt.Iterations = linearmodel.DefaultIterations
	}

	lassoOpt.Tolerance = o.Tolerance
	if o.Tolerance == 0 {
		lassoOpt.Tolerance = linearmodel.DefaultTolerance
	}

	penalty := make([]float64, 0, labels.Len())
	for _, label := range labels.Labels() {
		switch label.Type() {
		case feature.FeatureTypeChangepoint, feature.FeatureTypeEvent:
			penalty = append(penalty, 1.0)
		default:
			penalty = append(penalty, 0.0)
		}
	}
	lassoOpt.PenaltyFactors = penalty
	return lassoOpt
}

// GenerateTimeFeatures returns the epoch time feature used by the seasonality features along
// with growth and event features
func (o *Options) GenerateTimeFeatures(t []time.Time, trainStartTime, trainEndTime time.Time) (*feature.Set, *feature.Set) {
	if o == nil {
		o = NewDefaultOptions()
	}

	tFeat := feature.NewSet()
	epochFeat := feature.NewTime(LabelTimeEpoch)
	epoch := epochFeat.Generate(t)
	tFeat.Set(epochFeat, epoch)

	x := feature.NewSet()
	if o.GrowthType == feature.GrowthLinear && trainEndTime.After(trainStartTime) {
		linearFeat := feature.Linear()
		x.Set(linearFeat, linearFeat.Generate(epoch, trainStartTime, trainEndTime))
	}
	x.Update(o.EventOptions.GenerateFeatures(t))
	return tFeat, x
}

// GenerateFourierFeatures returns the sine and cosine features of every seasonality config
func (o *Options) GenerateFourierFeatures(tFeat *feature.Set) (*feature.Set, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	x := feature.NewSet()

	o.SeasonalityOptions.removeDuplicates()
	for _, seasCfg := range o.SeasonalityOptions.SeasonalityConfigs {
		orders := make([]int, 0, seasCfg.Orders)
		for i := 1; i <= seasCfg.Orders; i++ {
			orders = append(orders, i)
		}
		seasFeatures, err := generateFourierOrders(tFeat, orders, seasCfg.Period, seasCfg.Name)
		if err != nil {
			return nil, fmt.Errorf("unable to generate seasonality features for %q, %w", seasCfg.Name, err)
		}
		x.Update(seasFeatures)
	}
	return x, nil
}

func generateFourierOrders(tFeatures *feature.Set, orders []int, periodDur time.Duration, label string) (*feature.Set, error) {
	if tFeatures == nil {
		return nil, ErrUnknownTimeFeature
	}

	tFeat, exists := tFeatures.Get(feature.NewTime(LabelTimeEpoch))
	if !exists {
		return nil, ErrUnknownTimeFeature
	}

	period := periodDur.Seconds()

	x := feature.NewSet()
	for _, order := range orders {
		sinFeat := feature.NewSeasonality(label, feature.FourierCompSin, order)
		cosFeat := feature.NewSeasonality(label, feature.FourierCompCos, order)
		x.Set(sinFeat, sinFeat.Generate(tFeat, order, period))
		x.Set(cosFeat, cosFeat.Generate(tFeat, order, period))
	}
	return x, nil
}
