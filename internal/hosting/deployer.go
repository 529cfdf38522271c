package hosting

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/aws/aws-sdk-go/service/sagemaker/sagemakeriface"
	"github.com/aws/aws-sdk-go/service/sagemakerruntime"
	"github.com/aws/aws-sdk-go/service/sagemakerruntime/sagemakerruntimeiface"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	ltime "github.infra.cloudera.com/CAI/AmpModelWorkflow/pkg/time"
)

// Deployer is the boundary to the managed hosting service.
type Deployer interface {
	Deploy(ctx context.Context, modelRef string, spec *ResourceSpec) (*Endpoint, error)
	AwaitInService(ctx context.Context, endpoint *Endpoint, interval, timeout time.Duration) error
	Invoke(ctx context.Context, endpoint *Endpoint, payload []byte, contentType string) ([]byte, error)
	Teardown(ctx context.Context, endpoint *Endpoint) error
}

type SageMakerDeployer struct {
	config  *Config
	api     sagemakeriface.SageMakerAPI
	runtime sagemakerruntimeiface.SageMakerRuntimeAPI
	sleeper ltime.Sleeper
	watch   ltime.Watch
}

var _ Deployer = &SageMakerDeployer{}

func NewSageMakerDeployer(cfg *Config, api sagemakeriface.SageMakerAPI, runtime sagemakerruntimeiface.SageMakerRuntimeAPI) *SageMakerDeployer {
	return &SageMakerDeployer{
		config:  cfg,
		api:     api,
		runtime: runtime,
		sleeper: ltime.NewWallSleeper(),
		watch:   ltime.NewWallWatch(),
	}
}

// Deploy creates the model, endpoint config and endpoint for a trained model
// artifact. The returned handle is still provisioning; callers follow up
// with AwaitInService before scoring.
func (d *SageMakerDeployer) Deploy(ctx context.Context, modelRef string, spec *ResourceSpec) (*Endpoint, error) {
	name := fmt.Sprintf("workflow-%d", d.watch.Now().UnixNano())
	endpoint := &Endpoint{
		EndpointName: name,
		ConfigName:   name + "-config",
		ModelName:    name + "-model",
		ModelRef:     modelRef,
		Status:       StatusProvisioning,
	}

	_, err := d.api.CreateModelWithContext(ctx, &sagemaker.CreateModelInput{
		ModelName:        aws.String(endpoint.ModelName),
		ExecutionRoleArn: aws.String(d.config.RoleARN),
		PrimaryContainer: &sagemaker.ContainerDefinition{
			Image:        aws.String(spec.Image),
			ModelDataUrl: aws.String(modelRef),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create model: %s", ErrDeployment, err)
	}

	_, err = d.api.CreateEndpointConfigWithContext(ctx, &sagemaker.CreateEndpointConfigInput{
		EndpointConfigName: aws.String(endpoint.ConfigName),
		ProductionVariants: []*sagemaker.ProductionVariant{
			{
				VariantName:          aws.String("AllTraffic"),
				ModelName:            aws.String(endpoint.ModelName),
				InstanceType:         aws.String(spec.InstanceType),
				InitialInstanceCount: aws.Int64(spec.InstanceCount),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create endpoint config: %s", ErrDeployment, err)
	}

	_, err = d.api.CreateEndpointWithContext(ctx, &sagemaker.CreateEndpointInput{
		EndpointName:       aws.String(endpoint.EndpointName),
		EndpointConfigName: aws.String(endpoint.ConfigName),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create endpoint: %s", ErrDeployment, err)
	}

	log.Infof("deploying model %s behind endpoint %s", modelRef, endpoint.EndpointName)
	return endpoint, nil
}

func (d *SageMakerDeployer) AwaitInService(ctx context.Context, endpoint *Endpoint, interval, timeout time.Duration) error {
	deadline := d.watch.Now().Add(timeout)

	for {
		output, err := d.api.DescribeEndpointWithContext(ctx, &sagemaker.DescribeEndpointInput{
			EndpointName: aws.String(endpoint.EndpointName),
		})
		if err != nil {
			return errors.Wrapf(err, "failed to describe endpoint %s", endpoint.EndpointName)
		}

		status := EndpointStatus(aws.StringValue(output.EndpointStatus))
		endpoint.Status = status
		switch status {
		case StatusInService:
			log.Infof("endpoint %s is in service", endpoint.EndpointName)
			return nil
		case StatusFailed:
			return fmt.Errorf("%w: endpoint %s: %s", ErrDeployment, endpoint.EndpointName, aws.StringValue(output.FailureReason))
		}

		if !d.watch.Now().Before(deadline) {
			return fmt.Errorf("%w: endpoint %s still %s after %s", ErrDeployment, endpoint.EndpointName, status, timeout)
		}

		log.Debugf("endpoint %s is %s, polling again in %s", endpoint.EndpointName, status, interval)
		d.sleeper.Sleep(interval)

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (d *SageMakerDeployer) Invoke(ctx context.Context, endpoint *Endpoint, payload []byte, contentType string) ([]byte, error) {
	output, err := d.runtime.InvokeEndpointWithContext(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(endpoint.EndpointName),
		ContentType:  aws.String(contentType),
		Body:         payload,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to invoke endpoint %s", endpoint.EndpointName)
	}
	return output.Body, nil
}

// Teardown deletes the endpoint, its config and its model. It is idempotent:
// resources that are already gone are skipped, and tearing down a handle
// that was already torn down is a no-op.
func (d *SageMakerDeployer) Teardown(ctx context.Context, endpoint *Endpoint) error {
	if endpoint == nil || endpoint.Status == StatusDeleted {
		return nil
	}

	var result *multierror.Error

	_, err := d.api.DeleteEndpointWithContext(ctx, &sagemaker.DeleteEndpointInput{
		EndpointName: aws.String(endpoint.EndpointName),
	})
	if err != nil && !alreadyGone(err) {
		result = multierror.Append(result, errors.Wrapf(err, "failed to delete endpoint %s", endpoint.EndpointName))
	}

	_, err = d.api.DeleteEndpointConfigWithContext(ctx, &sagemaker.DeleteEndpointConfigInput{
		EndpointConfigName: aws.String(endpoint.ConfigName),
	})
	if err != nil && !alreadyGone(err) {
		result = multierror.Append(result, errors.Wrapf(err, "failed to delete endpoint config %s", endpoint.ConfigName))
	}

	_, err = d.api.DeleteModelWithContext(ctx, &sagemaker.DeleteModelInput{
		ModelName: aws.String(endpoint.ModelName),
	})
	if err != nil && !alreadyGone(err) {
		result = multierror.Append(result, errors.Wrapf(err, "failed to delete model %s", endpoint.ModelName))
	}

	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	endpoint.Status = StatusDeleted
	log.Infof("tore down endpoint %s", endpoint.EndpointName)
	return nil
}

// The service reports deletion of a missing resource as a ValidationException.
func alreadyGone(err error) bool {
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		return awsErr.Code() == "ValidationException"
	}
	return false
}
