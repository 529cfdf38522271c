package workflow

import (
	"fmt"

	lconfig "github.infra.cloudera.com/CAI/AmpModelWorkflow/pkg/config"

	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/dataset"
)

type Config struct {
	RunName         string  `env:"WORKFLOW_RUN_NAME"`
	TrainRatio      float64 `env:"WORKFLOW_TRAIN_RATIO" envDefault:"0.7"`
	ValidationRatio float64 `env:"WORKFLOW_VALIDATION_RATIO" envDefault:"0.15"`
	TestRatio       float64 `env:"WORKFLOW_TEST_RATIO" envDefault:"0.15"`
	Seed            int64   `env:"WORKFLOW_SEED" envDefault:"42"`
	// KeepStaged leaves the staged partitions in place after the run for
	// later inspection; they are otherwise discarded during teardown.
	KeepStaged bool `env:"WORKFLOW_KEEP_STAGED" envDefault:"false"`
}

func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var ErrInvalidSplitRatios = fmt.Errorf("invalid split ratios")

func validateConfig(cfg *Config) error {
	ratios := cfg.Ratios()
	if ratios.Train <= 0 || ratios.Validation <= 0 || ratios.Test <= 0 {
		return ErrInvalidSplitRatios
	}
	if ratios.Train+ratios.Validation+ratios.Test > 1.0000001 {
		return ErrInvalidSplitRatios
	}
	return nil
}

func (c *Config) Ratios() dataset.Ratios {
	return dataset.Ratios{
		Train:      c.TrainRatio,
		Validation: c.ValidationRatio,
		Test:       c.TestRatio,
	}
}
