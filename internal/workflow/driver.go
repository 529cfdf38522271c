package workflow

import (
	"context"
	"fmt"
	"path"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/dataset"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/evaluate"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/hosting"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/runstore"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/staging"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/training"
	ltime "github.infra.cloudera.com/CAI/AmpModelWorkflow/pkg/time"
)

// Stager is the slice of the staging layer the driver needs.
type Stager interface {
	StageSplit(ctx context.Context, runName string, split *dataset.Split) (*staging.StagedSplit, error)
	Discard(ctx context.Context, artifact staging.StagedArtifact) error
}

// Result summarizes a finished run.
type Result struct {
	RunName       string
	State         State
	ModelArtifact string
	Report        *evaluate.Report
}

// Driver owns one run of the partition → stage → train → deploy → score →
// evaluate → teardown sequence. Every remote resource it creates (staged
// artifacts, training job output, hosted endpoint) belongs to it alone, and
// it tears them down on both success and failure. A Driver is single-use:
// handles from one run are never reused by the next.
type Driver struct {
	config      *Config
	trainingCfg *training.Config
	hostingCfg  *hosting.Config

	stager   Stager
	trainer  training.Trainer
	deployer hosting.Deployer
	store    runstore.Store

	sleeper ltime.Sleeper
	watch   ltime.Watch
	tracer  trace.Tracer

	state    State
	runId    int64
	staged   *staging.StagedSplit
	job      *training.JobHandle
	endpoint *hosting.Endpoint
}

func NewDriver(cfg *Config, trainingCfg *training.Config, hostingCfg *hosting.Config,
	stager Stager, trainer training.Trainer, deployer hosting.Deployer,
	store runstore.Store) *Driver {
	return &Driver{
		config:      cfg,
		trainingCfg: trainingCfg,
		hostingCfg:  hostingCfg,
		stager:      stager,
		trainer:     trainer,
		deployer:    deployer,
		store:       store,
		sleeper:     ltime.NewWallSleeper(),
		watch:       ltime.NewWallWatch(),
		tracer:      otel.Tracer("workflow_driver"),
		state:       StateInit,
	}
}

func (d *Driver) State() State {
	return d.state
}

// Run executes the full workflow over an already-loaded dataset.
func (d *Driver) Run(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	if d.state != StateInit {
		return nil, fmt.Errorf("driver already ran to %s; drivers are single-use", d.state)
	}

	runName := d.config.RunName
	if runName == "" {
		runName = fmt.Sprintf("workflow-%d", d.watch.Now().Unix())
	}

	runId, err := d.store.CreateRun(ctx, runName)
	if err != nil {
		// The store is an audit trail; never let it stop a run.
		log.Warnf("failed to create run record: %s", err)
	}
	d.runId = runId
	log.Infof("starting workflow run %s over %d rows", runName, ds.NumRows())

	split, err := d.partition(ctx, ds)
	if err != nil {
		return nil, d.fail(ctx, err)
	}
	d.advance(ctx, StatePartitioned, fmt.Sprintf("train=%d validation=%d test=%d",
		split.Train.Data.NumRows(), split.Validation.Data.NumRows(), split.Test.Data.NumRows()))

	staged, err := d.stage(ctx, runName, split)
	if err != nil {
		return nil, d.fail(ctx, err)
	}
	d.staged = staged
	d.advance(ctx, StateStaged, staged.Train.URI())

	modelArtifact, err := d.train(ctx, runName, staged)
	if err != nil {
		return nil, d.fail(ctx, err)
	}
	d.advance(ctx, StateTrained, modelArtifact)

	endpoint, err := d.deploy(ctx, modelArtifact)
	if err != nil {
		return nil, d.fail(ctx, err)
	}
	d.endpoint = endpoint
	d.advance(ctx, StateDeployed, endpoint.EndpointName)

	predictions, err := d.score(ctx, split.Test)
	if err != nil {
		return nil, d.fail(ctx, err)
	}
	d.advance(ctx, StateScored, fmt.Sprintf("%d predictions", len(predictions)))

	report, err := evaluate.Evaluate(predictions, split.Test.Data.Targets)
	if err != nil {
		return nil, d.fail(ctx, err)
	}
	log.Infof("run %s evaluation: %s", runName, report)

	if err := d.cleanup(ctx); err != nil {
		return nil, d.fail(ctx, err)
	}
	d.advance(ctx, StateTornDown, "")

	if err := d.store.CompleteRun(ctx, d.runId, string(StateTornDown), report.String()); err != nil {
		log.Warnf("failed to complete run record: %s", err)
	}

	return &Result{
		RunName:       runName,
		State:         d.state,
		ModelArtifact: modelArtifact,
		Report:        report,
	}, nil
}

func (d *Driver) partition(ctx context.Context, ds *dataset.Dataset) (*dataset.Split, error) {
	_, span := d.startSpan(ctx, "Partition")
	defer span.End()

	return dataset.NewSplit(ds, d.config.Ratios(), d.config.Seed)
}

func (d *Driver) stage(ctx context.Context, runName string, split *dataset.Split) (*staging.StagedSplit, error) {
	ctx, span := d.startSpan(ctx, "Stage")
	defer span.End()

	return d.stager.StageSplit(ctx, runName, split)
}

func (d *Driver) train(ctx context.Context, runName string, staged *staging.StagedSplit) (string, error) {
	ctx, span := d.startSpan(ctx, "Train")
	defer span.End()

	spec := &training.JobSpec{
		Name:           runName,
		AlgorithmImage: d.trainingCfg.AlgorithmImage,
		RoleARN:        d.trainingCfg.RoleARN,
		Train:          staged.Train,
		Validation:     staged.Validation,
		OutputPrefix:   outputPrefix(d.trainingCfg.OutputPrefix, staged.Train),
		Resources: training.ResourceSpec{
			InstanceType:  d.trainingCfg.InstanceType,
			InstanceCount: d.trainingCfg.InstanceCount,
			Volume:        d.trainingCfg.VolumeSize,
			MaxRuntime:    d.trainingCfg.MaxRuntime,
		},
		Hyperparameters: d.trainingCfg.Hyperparameters,
	}

	job, err := d.trainer.Submit(ctx, spec)
	if err != nil {
		return "", err
	}
	d.job = job

	return training.AwaitCompletion(ctx, d.trainer, job, training.PollPolicy{
		Interval: d.trainingCfg.PollInterval,
		Timeout:  d.trainingCfg.Timeout,
	}, d.sleeper, d.watch)
}

func (d *Driver) deploy(ctx context.Context, modelArtifact string) (*hosting.Endpoint, error) {
	ctx, span := d.startSpan(ctx, "Deploy")
	defer span.End()

	endpoint, err := d.deployer.Deploy(ctx, modelArtifact, &hosting.ResourceSpec{
		Image:         d.trainingCfg.AlgorithmImage,
		InstanceType:  d.hostingCfg.InstanceType,
		InstanceCount: d.hostingCfg.InstanceCount,
	})
	if err != nil {
		return nil, err
	}
	// The handle exists from here on; cleanup owns it even if provisioning fails.
	d.endpoint = endpoint

	err = d.deployer.AwaitInService(ctx, endpoint, d.hostingCfg.PollInterval, d.hostingCfg.DeployTimeout)
	if err != nil {
		return nil, err
	}
	return endpoint, nil
}

func (d *Driver) score(ctx context.Context, test *dataset.Partition) ([]float64, error) {
	ctx, span := d.startSpan(ctx, "Score")
	defer span.End()

	return hosting.Score(ctx, d.deployer, d.endpoint, test.Data.Features, d.hostingCfg.ScoreChunkSize)
}

// cleanup releases every remote resource the run owns. It keeps going after
// individual failures and reports them all.
func (d *Driver) cleanup(ctx context.Context) error {
	var result *multierror.Error

	if d.endpoint != nil {
		if err := d.deployer.Teardown(ctx, d.endpoint); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if d.staged != nil && !d.config.KeepStaged {
		for _, artifact := range d.staged.Artifacts() {
			if err := d.stager.Discard(ctx, artifact); err != nil {
				result = multierror.Append(result, err)
			}
		}
		d.staged = nil
	}

	return result.ErrorOrNil()
}

// fail moves the driver to its absorbing state, attempts cleanup, and hands
// the stage error back. A cleanup failure is logged as a resource leak but
// never masks the error that ended the run.
func (d *Driver) fail(ctx context.Context, stageErr error) error {
	previous := d.state
	d.state = StateFailed
	if err := d.store.RecordTransition(ctx, d.runId, string(previous), string(StateFailed), stageErr.Error()); err != nil {
		log.Warnf("failed to record failure transition: %s", err)
	}

	if cleanupErr := d.cleanup(ctx); cleanupErr != nil {
		log.Warnf("best-effort cleanup failed, manual cleanup may be required: %s", cleanupErr)
		if d.endpoint != nil && d.endpoint.Status != hosting.StatusDeleted {
			log.Warnf("endpoint %s may still be running and billing", d.endpoint.EndpointName)
		}
	}

	if err := d.store.CompleteRun(ctx, d.runId, string(StateFailed), stageErr.Error()); err != nil {
		log.Warnf("failed to complete run record: %s", err)
	}
	return stageErr
}

func (d *Driver) advance(ctx context.Context, to State, detail string) {
	if err := d.store.RecordTransition(ctx, d.runId, string(d.state), string(to), detail); err != nil {
		log.Warnf("failed to record transition %s -> %s: %s", d.state, to, err)
	}
	log.Debugf("workflow state %s -> %s", d.state, to)
	d.state = to
}

func (d *Driver) startSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return d.tracer.Start(ctx, "Workflow."+stage,
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func outputPrefix(configured string, train staging.StagedArtifact) string {
	if configured != "" {
		return configured
	}
	// Default next to the staged inputs.
	return fmt.Sprintf("s3://%s/%s", train.Bucket, path.Join(path.Dir(path.Dir(train.Key)), "output"))
}
