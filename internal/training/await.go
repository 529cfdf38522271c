package training

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	ltime "github.infra.cloudera.com/CAI/AmpModelWorkflow/pkg/time"
)

// ErrTrainingTimeout means the wait was abandoned, not that the job failed;
// the remote job may still be running and billing. Callers decide whether to
// keep polling or tear the run down.
var ErrTrainingTimeout = fmt.Errorf("timed out waiting for training job")
var ErrTrainingFailed = fmt.Errorf("training job failed")

type PollPolicy struct {
	Interval time.Duration
	Timeout  time.Duration
}

// AwaitCompletion polls the trainer until the job reaches a terminal status
// or the timeout elapses. The job is described at least once, so a zero
// timeout still observes an already-terminal job.
func AwaitCompletion(ctx context.Context, trainer Trainer, handle *JobHandle, policy PollPolicy, sleeper ltime.Sleeper, watch ltime.Watch) (string, error) {
	deadline := watch.Now().Add(policy.Timeout)

	for {
		updated, err := trainer.Describe(ctx, handle)
		if err != nil {
			return "", err
		}
		*handle = *updated

		switch {
		case handle.Status == StatusCompleted:
			log.Infof("training job %s completed, model artifact %s", handle.Name, handle.ModelArtifact)
			return handle.ModelArtifact, nil
		case handle.Status.Terminal():
			return "", fmt.Errorf("%w: job %s: %s", ErrTrainingFailed, handle.Name, handle.FailureReason)
		}

		if !watch.Now().Before(deadline) {
			return "", fmt.Errorf("%w: job %s still %s after %s", ErrTrainingTimeout, handle.Name, handle.Status, policy.Timeout)
		}

		log.Debugf("training job %s is %s, polling again in %s", handle.Name, handle.Status, policy.Interval)
		sleeper.Sleep(policy.Interval)

		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
}
