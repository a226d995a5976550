package feature

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Time is a feature derived directly from the time of each observation
type Time struct {
	Name string `json:"name"`
}

func NewTime(name string) *Time {
	return &Time{name}
}

func (t Time) String() string {
	return "tfeat_" + t.Name
}

func (t Time) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return t.Name, true
	}
	return "", false
}

func (t Time) Type() FeatureType {
	return FeatureTypeTime
}

func (t Time) Decode() map[string]string {
	return map[string]string{"name": t.Name}
}

// Generate converts each time point to seconds since the unix epoch
func (t Time) Generate(tSeries []time.Time) []float64 {
	epoch := make([]float64, len(tSeries))
	for i, tPnt := range tSeries {
		epoch[i] = float64(tPnt.UnixNano()) / 1e9
	}
	return epoch
}

func (t *Time) UnmarshalJSON(data []byte) error {
	type alias Time
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = Time(a)
	return nil
}
