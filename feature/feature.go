// Package feature contains the typed labels used to build design matrices for
// the forecast linear model.
package feature

// FeatureType identifies the family a feature belongs to.
type FeatureType int

const (
	FeatureTypeChangepoint FeatureType = iota
	FeatureTypeSeasonality
	FeatureTypeTime
	FeatureTypeEvent
	FeatureTypeGrowth
)

func (f FeatureType) String() string {
	switch f {
	case FeatureTypeChangepoint:
		return "changepoint"
	case FeatureTypeSeasonality:
		return "seasonality"
	case FeatureTypeTime:
		return "time"
	case FeatureTypeEvent:
		return "event"
	case FeatureTypeGrowth:
		return "growth"
	}
	return "unknown"
}

// Feature is the interface every feature label satisfies. String must be unique
// per feature since it is used as the key in a Set.
type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
	Decode() map[string]string
}
