//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/awsclients"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/dataset"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/hosting"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/runstore"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/staging"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/training"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/workflow"
)

// wire up the dependencies.
func InitializeDependencies() (*dependencies, error) {
	wire.Build(
		awsclients.NewConfigFromEnv, awsclients.NewSession,
		awsclients.NewS3, awsclients.NewSageMaker, awsclients.NewSageMakerRuntime,
		dataset.NewConfigFromEnv, dataset.NewLoader,
		staging.NewConfigFromEnv, staging.NewStager,
		wire.Bind(new(workflow.Stager), new(*staging.Stager)),
		training.NewConfigFromEnv, training.NewSageMakerTrainer,
		wire.Bind(new(training.Trainer), new(*training.SageMakerTrainer)),
		hosting.NewConfigFromEnv, hosting.NewSageMakerDeployer,
		wire.Bind(new(hosting.Deployer), new(*hosting.SageMakerDeployer)),
		runstore.NewConfigFromEnv, runstore.NewStore,
		workflow.NewConfigFromEnv, workflow.NewDriver,
		newDependencies)
	return &dependencies{}, nil
}
