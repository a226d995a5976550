package linearmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestOLSRegression(t *testing.T) {
	// y = 2 + 3*x0 + 4*x1
	x := denseFromRows([][]float64{
		{0, 0},
		{3, 5},
		{9, 20},
		{12, 6},
		{15, 10},
	})
	y := mat.NewDense(5, 1, []float64{2, 31, 109, 62, 87})

	testData := map[string]struct {
		opt       *OLSOptions
		x         mat.Matrix
		intercept float64
		coef      []float64
	}{
		"with intercept": {
			opt:       NewDefaultOLSOptions(),
			x:         x,
			intercept: 2.0,
			coef:      []float64{3.0, 4.0},
		},
		"without intercept": {
			opt: &OLSOptions{FitIntercept: false},
			x: denseFromRows([][]float64{
				{1, 0, 0},
				{1, 3, 5},
				{1, 9, 20},
				{1, 12, 6},
				{1, 15, 10},
			}),
			intercept: 0.0,
			coef:      []float64{2.0, 3.0, 4.0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			model, err := NewOLSRegression(td.opt)
			require.Nil(t, err)
			testModel(t, model, td.x, y, td.intercept, td.coef, 1e-6)
		})
	}
}

func TestOLSRegressionErrors(t *testing.T) {
	model, err := NewOLSRegression(nil)
	require.Nil(t, err)

	err = model.Fit(nil, nil)
	assert.ErrorIs(t, err, ErrNoTrainingMatrix)

	x := denseFromRows([][]float64{{1}, {2}, {3}})
	err = model.Fit(x, mat.NewDense(2, 1, []float64{1, 2}))
	assert.ErrorIs(t, err, ErrTargetLenMismatch)

	// duplicated column cannot be solved
	dup := denseFromRows([][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}})
	err = model.Fit(dup, mat.NewDense(4, 1, []float64{1, 2, 3, 4}))
	assert.ErrorIs(t, err, ErrSingularMatrix)
}
