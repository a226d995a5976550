// Package linearmodel is a collection of linear regression fitting implementations to be used in the
// forecaster
package linearmodel

import (
	"gonum.org/v1/gonum/mat"
)

// Model is implemented by every regression in this package
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}

func withIntercept(x mat.Matrix) mat.Matrix {
	m, _ := x.Dims()
	ones := make([]float64, m)
	for i := range ones {
		ones[i] = 1.0
	}
	onesMx := mat.NewDense(1, m, ones)

	var xWithOnes mat.Dense
	xWithOnes.Stack(onesMx, x.T())
	return xWithOnes.T()
}
