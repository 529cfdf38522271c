package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/dataset"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/runstore"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/workflow"
)

type dependencies struct {
	cfg    *workflow.Config
	loader *dataset.Loader
	driver *workflow.Driver
	store  runstore.Store
}

func newDependencies(cfg *workflow.Config, loader *dataset.Loader,
	driver *workflow.Driver, store runstore.Store) *dependencies {
	return &dependencies{
		cfg:    cfg,
		loader: loader,
		driver: driver,
		store:  store,
	}
}

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	deps, err := InitializeDependencies()
	if err != nil {
		log.Fatalf("failed to initialize workflow: %v", err)
	}
	defer deps.store.Close()

	ctx := context.Background()

	ds, err := deps.loader.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}

	result, err := deps.driver.Run(ctx, ds)
	if err != nil {
		log.Errorf("workflow run failed in state %s: %v", deps.driver.State(), err)
		os.Exit(1)
	}

	fmt.Printf("run %s finished: %s\n", result.RunName, result.Report)
	fmt.Printf("model artifact: %s\n", result.ModelArtifact)
}
