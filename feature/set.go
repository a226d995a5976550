package feature

import (
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Set stores feature data keyed by the string representation of the feature. All
// features in the set share the same number of observations, m. Shorter inputs are
// zero padded to m and longer inputs grow every existing feature.
type Set struct {
	m      int
	set    map[string][]float64
	labels []Feature
}

// NewSet returns an empty feature set
func NewSet() *Set {
	return &Set{
		set: make(map[string][]float64),
	}
}

// Len returns the number of features tracked
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.labels)
}

// Rows returns the number of observations per feature
func (s *Set) Rows() int {
	if s == nil {
		return 0
	}
	return s.m
}

// Set stores the data for a feature, replacing any data previously stored for it
func (s *Set) Set(f Feature, data []float64) *Set {
	if s == nil {
		return nil
	}
	if s.set == nil {
		s.set = make(map[string][]float64)
	}

	if len(data) > s.m {
		for label, existing := range s.set {
			s.set[label] = append(existing, make([]float64, len(data)-len(existing))...)
		}
		s.m = len(data)
	}

	padded := make([]float64, s.m)
	copy(padded, data)

	key := f.String()
	if _, exists := s.set[key]; !exists {
		idx, _ := slices.BinarySearchFunc(s.labels, key, func(l Feature, k string) int {
			return strings.Compare(l.String(), k)
		})
		s.labels = slices.Insert(s.labels, idx, f)
	}
	s.set[key] = padded
	return s
}

// Get returns the stored data for a feature
func (s *Set) Get(f Feature) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	data, exists := s.set[f.String()]
	return data, exists
}

// Update copies every feature of other into this set
func (s *Set) Update(other *Set) *Set {
	if s == nil || other == nil {
		return s
	}
	for _, label := range other.labels {
		s.Set(label, other.set[label.String()])
	}
	return s
}

// Del removes a feature from the set
func (s *Set) Del(f Feature) {
	if s == nil {
		return
	}
	key := f.String()
	if _, exists := s.set[key]; !exists {
		return
	}
	delete(s.set, key)
	s.labels = slices.DeleteFunc(s.labels, func(l Feature) bool {
		return l.String() == key
	})
}

// FilterByType returns a new set only containing features of the given types
func (s *Set) FilterByType(types ...FeatureType) *Set {
	res := NewSet()
	if s == nil {
		return res
	}
	for _, label := range s.labels {
		if slices.Contains(types, label.Type()) {
			res.Set(label, s.set[label.String()])
		}
	}
	return res
}

// Labels returns the sorted labels of all tracked features in the Set
func (s *Set) Labels() *Labels {
	if s == nil {
		return NewLabels(nil)
	}
	labels := make([]Feature, len(s.labels))
	copy(labels, s.labels)
	return NewLabels(labels)
}

// Matrix returns a matrix representation of the Set to be used with matrix methods.
// The matrix has m rows representing the number of observations and n columns representing
// the number of features.
func (s *Set) Matrix(intercept bool) *mat.Dense {
	if s == nil || s.m == 0 {
		return nil
	}

	n := len(s.labels)
	if intercept {
		n += 1
	}
	if n == 0 {
		return nil
	}

	obs := make([]float64, s.m*n)
	featNum := 0
	if intercept {
		for i := 0; i < s.m; i++ {
			obs[n*i] = 1.0
		}
		featNum += 1
	}

	for _, label := range s.labels {
		data := s.set[label.String()]
		for i := 0; i < len(data); i++ {
			obs[n*i+featNum] = data[i]
		}
		featNum += 1
	}
	return mat.NewDense(s.m, n, obs)
}

// MatrixSlice returns the Set as a slice of slices where each slice represents a
// feature column.
func (s *Set) MatrixSlice(intercept bool) [][]float64 {
	if s == nil || s.m == 0 {
		return nil
	}

	n := len(s.labels)
	if intercept {
		n += 1
	}

	obs := make([][]float64, 0, n)
	if intercept {
		ones := make([]float64, s.m)
		floats.AddConst(1.0, ones)
		obs = append(obs, ones)
	}
	for _, label := range s.labels {
		obs = append(obs, s.set[label.String()])
	}
	return obs
}
