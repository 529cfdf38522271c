package evaluate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var ErrDimensionMismatch = fmt.Errorf("predicted and actual sequences have different lengths")
var ErrNoObservations = fmt.Errorf("nothing to evaluate")

// Report holds regression error metrics for one scored partition.
type Report struct {
	NumObservations int
	RMSE            float64
	MAE             float64
	MeanActual      float64
	MeanPredicted   float64
}

func (r *Report) String() string {
	return fmt.Sprintf("n=%d rmse=%.6g mae=%.6g mean_actual=%.6g mean_predicted=%.6g",
		r.NumObservations, r.RMSE, r.MAE, r.MeanActual, r.MeanPredicted)
}

// Evaluate compares predictions against actuals. Both error metrics are
// symmetric in their arguments.
func Evaluate(predicted, actual []float64) (*Report, error) {
	if len(predicted) != len(actual) {
		return nil, fmt.Errorf("%w: %d predicted, %d actual", ErrDimensionMismatch, len(predicted), len(actual))
	}
	n := len(predicted)
	if n == 0 {
		return nil, ErrNoObservations
	}

	predictedVec := mat.NewVecDense(n, predicted)
	actualVec := mat.NewVecDense(n, actual)

	residuals := mat.NewVecDense(n, nil)
	residuals.SubVec(predictedVec, actualVec)

	return &Report{
		NumObservations: n,
		RMSE:            mat.Norm(residuals, 2) / math.Sqrt(float64(n)),
		MAE:             mat.Norm(residuals, 1) / float64(n),
		MeanActual:      mat.Sum(actualVec) / float64(n),
		MeanPredicted:   mat.Sum(predictedVec) / float64(n),
	}, nil
}
