package hosting

import (
	"fmt"
	"time"

	lconfig "github.infra.cloudera.com/CAI/AmpModelWorkflow/pkg/config"
)

var ErrDeployment = fmt.Errorf("failed to deploy model endpoint")
var ErrUnexpectedPredictionCount = fmt.Errorf("endpoint returned a different number of predictions than rows sent")

type EndpointStatus string

const (
	StatusProvisioning EndpointStatus = "Creating"
	StatusInService    EndpointStatus = "InService"
	StatusFailed       EndpointStatus = "Failed"
	StatusDeleted      EndpointStatus = "Deleted"
)

// Endpoint is the handle to a deployed scoring resource. It is exclusively
// owned by the workflow run that created it; nothing else may score against
// it or tear it down. Until teardown succeeds the remote endpoint keeps
// running and billing.
type Endpoint struct {
	EndpointName string
	ConfigName   string
	ModelName    string
	ModelRef     string
	Status       EndpointStatus
}

type ResourceSpec struct {
	// Image is the serving container; for built-in algorithms this is the
	// same image that trained the model.
	Image         string
	InstanceType  string
	InstanceCount int64
}

type Config struct {
	InstanceType   string        `env:"HOSTING_INSTANCE_TYPE" envDefault:"ml.m5.large"`
	InstanceCount  int64         `env:"HOSTING_INSTANCE_COUNT" envDefault:"1"`
	PollInterval   time.Duration `env:"HOSTING_POLL_INTERVAL" envDefault:"30s"`
	DeployTimeout  time.Duration `env:"HOSTING_DEPLOY_TIMEOUT" envDefault:"20m"`
	ScoreChunkSize int           `env:"HOSTING_SCORE_CHUNK_SIZE" envDefault:"500"`
	RoleARN        string        `env:"HOSTING_ROLE_ARN"`
}

func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	if cfg.ScoreChunkSize < 1 {
		return nil, fmt.Errorf("score chunk size must be positive")
	}
	return &cfg, nil
}
