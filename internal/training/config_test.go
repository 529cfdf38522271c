package training

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestConfigHyperparametersFileOverride(t *testing.T) {
	t.Setenv("TRAINING_ALGORITHM_IMAGE", "xgboost:latest")
	t.Setenv("TRAINING_ROLE_ARN", "arn:aws:iam::123456789012:role/SageMakerRole")
	t.Setenv("TRAINING_HYPERPARAMETERS", `{"eta": "0.1", "num_round": "100"}`)
	t.Setenv("TRAINING_HYPERPARAMETERS_FILE", "/config/hyperparameters.yaml")

	filesystem := afero.NewMemMapFs()
	err := afero.WriteFile(filesystem, "/config/hyperparameters.yaml",
		[]byte("eta: \"0.3\"\nmax_depth: \"6\"\n"), 0644)
	assert.NoError(t, err)

	cfg, err := newConfigFromEnv(filesystem)
	assert.NoError(t, err)
	// The file wins for keys present in both sources
	assert.Equal(t, "0.3", cfg.Hyperparameters["eta"])
	assert.Equal(t, "100", cfg.Hyperparameters["num_round"])
	assert.Equal(t, "6", cfg.Hyperparameters["max_depth"])
	assert.Equal(t, int64(5*1024*1024*1024), cfg.VolumeSize.Value())
}

func TestConfigRequiresAlgorithmImage(t *testing.T) {
	t.Setenv("TRAINING_ROLE_ARN", "arn:aws:iam::123456789012:role/SageMakerRole")

	_, err := newConfigFromEnv(afero.NewMemMapFs())
	assert.Error(t, err)
}

func TestConfigMissingHyperparametersFile(t *testing.T) {
	t.Setenv("TRAINING_ALGORITHM_IMAGE", "xgboost:latest")
	t.Setenv("TRAINING_ROLE_ARN", "arn:aws:iam::123456789012:role/SageMakerRole")
	t.Setenv("TRAINING_HYPERPARAMETERS_FILE", "/config/missing.yaml")

	_, err := newConfigFromEnv(afero.NewMemMapFs())
	assert.Error(t, err)
}
