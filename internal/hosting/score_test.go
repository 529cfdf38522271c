package hosting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func inServiceEndpoint(t *testing.T, deployer *SageMakerDeployer) *Endpoint {
	endpoint, err := deployer.Deploy(context.TODO(), "s3://b/model.tar.gz", testResourceSpec())
	assert.NoError(t, err)
	assert.NoError(t, deployer.AwaitInService(context.TODO(), endpoint, time.Second, time.Hour))
	return endpoint
}

func TestScoreEmptyBatch(t *testing.T) {
	deployer, _, runtime := newTestDeployer()
	endpoint := inServiceEndpoint(t, deployer)

	predictions, err := Score(context.TODO(), deployer, endpoint, [][]float64{}, 100)
	assert.NoError(t, err)
	assert.Equal(t, []float64{}, predictions)
	// An empty batch never reaches the endpoint
	assert.Equal(t, 0, runtime.Invokes)
}

func TestScorePreservesOrderAcrossChunks(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		deployer, _, runtime := newTestDeployer()
		runtime.Invokes = 0
		endpoint, err := deployer.Deploy(context.TODO(), "s3://b/model.tar.gz", testResourceSpec())
		if err != nil {
			rt.Fatalf("failed to deploy: %v", err)
		}
		if err := deployer.AwaitInService(context.TODO(), endpoint, time.Second, time.Hour); err != nil {
			rt.Fatalf("failed to await: %v", err)
		}

		numRows := rapid.IntRange(1, 40).Draw(rt, "numRows")
		chunkSize := rapid.IntRange(1, 50).Draw(rt, "chunkSize")
		rows := make([][]float64, numRows)
		for i := range rows {
			// The mock predicts each row's mean, so prediction i must equal i.
			rows[i] = []float64{float64(i), float64(i), float64(i)}
		}

		predictions, err := Score(context.TODO(), deployer, endpoint, rows, chunkSize)
		if err != nil {
			rt.Fatalf("failed to score: %v", err)
		}

		if len(predictions) != numRows {
			rt.Fatalf("expected %d predictions, got %d", numRows, len(predictions))
		}
		for i, prediction := range predictions {
			assert.InDelta(rt, float64(i), prediction, 1e-9)
		}

		expectedInvokes := (numRows + chunkSize - 1) / chunkSize
		assert.Equal(rt, expectedInvokes, runtime.Invokes)
	})
}

func TestScorePredictionCountMismatch(t *testing.T) {
	mock := &DeployerMock{
		PredictionFor: func(lines int) string {
			return "0.5" // always one prediction regardless of rows sent
		},
	}
	endpoint := &Endpoint{EndpointName: "mock-endpoint", Status: StatusInService}

	_, err := Score(context.TODO(), mock, endpoint, [][]float64{{1}, {2}, {3}}, 100)
	assert.ErrorIs(t, err, ErrUnexpectedPredictionCount)
}

func TestDecodePredictions(t *testing.T) {
	decoded, err := decodePredictions([]byte("1.5,2.5\n3.5\r\n"))
	assert.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5, 3.5}, decoded)

	decoded, err = decodePredictions([]byte("  "))
	assert.NoError(t, err)
	assert.Equal(t, []float64{}, decoded)

	_, err = decodePredictions([]byte("1.5,abc"))
	assert.Error(t, err)
}
