package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestEvaluateKnownValues(t *testing.T) {
	report, err := Evaluate([]float64{1, 2, 3}, []float64{1, 2, 7})
	assert.NoError(t, err)
	assert.Equal(t, 3, report.NumObservations)
	// residuals are (0, 0, -4): rmse = sqrt(16/3), mae = 4/3
	assert.InDelta(t, 2.309401076758503, report.RMSE, 1e-12)
	assert.InDelta(t, 4.0/3.0, report.MAE, 1e-12)
	assert.InDelta(t, 10.0/3.0, report.MeanActual, 1e-12)
	assert.InDelta(t, 2.0, report.MeanPredicted, 1e-12)
}

func TestEvaluatePerfectPredictions(t *testing.T) {
	report, err := Evaluate([]float64{1.5, -2, 0}, []float64{1.5, -2, 0})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, report.RMSE)
	assert.Equal(t, 0.0, report.MAE)
}

func TestEvaluateSymmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 100).Draw(rt, "n")
		predicted := make([]float64, n)
		actual := make([]float64, n)
		for i := 0; i < n; i++ {
			predicted[i] = rapid.Float64Range(-1e6, 1e6).Draw(rt, "predicted")
			actual[i] = rapid.Float64Range(-1e6, 1e6).Draw(rt, "actual")
		}

		forward, err := Evaluate(predicted, actual)
		if err != nil {
			rt.Fatalf("failed to evaluate: %v", err)
		}
		backward, err := Evaluate(actual, predicted)
		if err != nil {
			rt.Fatalf("failed to evaluate reversed: %v", err)
		}

		// Property: swapping arguments does not change the error magnitudes
		assert.InDelta(rt, forward.RMSE, backward.RMSE, 1e-9)
		assert.InDelta(rt, forward.MAE, backward.MAE, 1e-9)
	})
}

func TestEvaluateDimensionMismatch(t *testing.T) {
	_, err := Evaluate([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestEvaluateEmpty(t *testing.T) {
	_, err := Evaluate([]float64{}, []float64{})
	assert.ErrorIs(t, err, ErrNoObservations)
}
