package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Scores are the in-sample fit scores of a model. A score is NaN when no observation could be
// scored.
type Scores struct {
	MSE  float64 `json:"mse"`
	MAPE float64 `json:"mape"`
	R2   float64 `json:"r2"`
}

// NewScores scores the predicted values against the actual ones, skipping positions where either
// is NaN
func NewScores(predicted, actual []float64) (*Scores, error) {
	p, a, err := scoredPairs(predicted, actual)
	if err != nil {
		return nil, err
	}
	return &Scores{
		MSE:  mse(p, a),
		MAPE: mape(p, a),
		R2:   rSquared(p, a),
	}, nil
}

// MSE is the mean of the squared errors over the scored observations. 0 is a perfect fit.
func MSE(predicted, actual []float64) (float64, error) {
	p, a, err := scoredPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	return mse(p, a), nil
}

// MAPE is the mean of abs((y-yhat)/y) over the scored observations with a non zero actual value.
// 0 is a perfect fit.
func MAPE(predicted, actual []float64) (float64, error) {
	p, a, err := scoredPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	return mape(p, a), nil
}

// RSquared is the coefficient of determination. A constant actual series scores 1 when matched
// exactly and 0 otherwise.
func RSquared(predicted, actual []float64) (float64, error) {
	p, a, err := scoredPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	return rSquared(p, a), nil
}

func scoredPairs(predicted, actual []float64) ([]float64, []float64, error) {
	if len(predicted) != len(actual) {
		return nil, nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	p := make([]float64, 0, len(predicted))
	a := make([]float64, 0, len(actual))
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		p = append(p, predicted[i])
		a = append(a, actual[i])
	}
	return p, a, nil
}

func mse(p, a []float64) float64 {
	if len(a) == 0 {
		return math.NaN()
	}
	var sum float64
	for i := range a {
		d := a[i] - p[i]
		sum += d * d
	}
	return sum / float64(len(a))
}

func mape(p, a []float64) float64 {
	var sum float64
	var cnt int
	for i := range a {
		if a[i] == 0 {
			continue
		}
		sum += math.Abs((a[i] - p[i]) / a[i])
		cnt++
	}
	if cnt == 0 {
		return math.NaN()
	}
	return sum / float64(cnt)
}

func rSquared(p, a []float64) float64 {
	if len(a) == 0 {
		return math.NaN()
	}
	if stat.Variance(a, nil) == 0 || len(a) == 1 {
		if mse(p, a) == 0 {
			return 1.0
		}
		return 0.0
	}
	return stat.RSquaredFrom(p, a, nil)
}
