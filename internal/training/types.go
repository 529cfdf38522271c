package training

import (
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/staging"
)

var ErrInvalidHyperparameter = fmt.Errorf("hyperparameter keys must be non-empty")

type JobStatus string

const (
	StatusSubmitted  JobStatus = "Submitted"
	StatusInProgress JobStatus = "InProgress"
	StatusCompleted  JobStatus = "Completed"
	StatusFailed     JobStatus = "Failed"
	StatusStopped    JobStatus = "Stopped"
)

func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusStopped
}

// Hyperparameters are passed through to the training container
// uninterpreted. Only the shape is validated here, never the semantics.
type Hyperparameters map[string]string

func (h Hyperparameters) Validate() error {
	for key := range h {
		if key == "" {
			return ErrInvalidHyperparameter
		}
	}
	return nil
}

type ResourceSpec struct {
	InstanceType  string
	InstanceCount int64
	Volume        resource.Quantity
	MaxRuntime    time.Duration
}

// JobSpec describes one training job submission. The algorithm container is
// an opaque image reference; this package never inspects what it runs.
type JobSpec struct {
	Name            string
	AlgorithmImage  string
	RoleARN         string
	Train           staging.StagedArtifact
	Validation      staging.StagedArtifact
	OutputPrefix    string
	Resources       ResourceSpec
	Hyperparameters Hyperparameters
}

// JobHandle represents a submitted remote training job. Status transitions
// are driven entirely by Describe calls against the remote service.
type JobHandle struct {
	Name          string
	ARN           string
	Status        JobStatus
	ModelArtifact string
	FailureReason string
}
