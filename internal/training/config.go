package training

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"k8s.io/apimachinery/pkg/api/resource"

	lconfig "github.infra.cloudera.com/CAI/AmpModelWorkflow/pkg/config"
)

type Config struct {
	AlgorithmImage      string            `env:"TRAINING_ALGORITHM_IMAGE"`
	RoleARN             string            `env:"TRAINING_ROLE_ARN"`
	OutputPrefix        string            `env:"TRAINING_OUTPUT_PREFIX"`
	InstanceType        string            `env:"TRAINING_INSTANCE_TYPE" envDefault:"ml.m5.xlarge"`
	InstanceCount       int64             `env:"TRAINING_INSTANCE_COUNT" envDefault:"1"`
	VolumeSize          resource.Quantity `env:"TRAINING_VOLUME_SIZE" envDefault:"5Gi"`
	MaxRuntime          time.Duration     `env:"TRAINING_MAX_RUNTIME" envDefault:"1h"`
	PollInterval        time.Duration     `env:"TRAINING_POLL_INTERVAL" envDefault:"30s"`
	Timeout             time.Duration     `env:"TRAINING_TIMEOUT" envDefault:"2h"`
	Hyperparameters     map[string]string `env:"TRAINING_HYPERPARAMETERS"`
	HyperparametersFile string            `env:"TRAINING_HYPERPARAMETERS_FILE"`
}

func NewConfigFromEnv() (*Config, error) {
	return newConfigFromEnv(afero.NewOsFs())
}

func newConfigFromEnv(filesystem afero.Fs) (*Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AlgorithmImage == "" {
		return nil, fmt.Errorf("training algorithm image is required")
	}
	if cfg.RoleARN == "" {
		return nil, fmt.Errorf("training role ARN is required")
	}

	// File-sourced hyperparameters override the environment value key by key.
	if cfg.HyperparametersFile != "" {
		fromFile := make(map[string]string)
		if err := lconfig.LoadYamlFile(cfg.HyperparametersFile, filesystem, &fromFile); err != nil {
			return nil, err
		}
		if cfg.Hyperparameters == nil {
			cfg.Hyperparameters = make(map[string]string)
		}
		for key, value := range fromFile {
			cfg.Hyperparameters[key] = value
		}
	}

	if err := Hyperparameters(cfg.Hyperparameters).Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
