package training

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/aws/aws-sdk-go/service/sagemaker/sagemakeriface"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Trainer is the boundary to the managed training service. The service is a
// black box: it consumes staged artifacts and hyperparameters and, on
// success, emits one model artifact.
type Trainer interface {
	Submit(ctx context.Context, spec *JobSpec) (*JobHandle, error)
	Describe(ctx context.Context, handle *JobHandle) (*JobHandle, error)
}

type SageMakerTrainer struct {
	config *Config
	api    sagemakeriface.SageMakerAPI
}

var _ Trainer = &SageMakerTrainer{}

func NewSageMakerTrainer(cfg *Config, api sagemakeriface.SageMakerAPI) *SageMakerTrainer {
	return &SageMakerTrainer{
		config: cfg,
		api:    api,
	}
}

func (t *SageMakerTrainer) Submit(ctx context.Context, spec *JobSpec) (*JobHandle, error) {
	if err := spec.Hyperparameters.Validate(); err != nil {
		return nil, err
	}

	hyperparameters := make(map[string]*string, len(spec.Hyperparameters))
	for key, value := range spec.Hyperparameters {
		hyperparameters[key] = aws.String(value)
	}

	input := &sagemaker.CreateTrainingJobInput{
		TrainingJobName: aws.String(spec.Name),
		RoleArn:         aws.String(spec.RoleARN),
		AlgorithmSpecification: &sagemaker.AlgorithmSpecification{
			TrainingImage:     aws.String(spec.AlgorithmImage),
			TrainingInputMode: aws.String(sagemaker.TrainingInputModeFile),
		},
		InputDataConfig: []*sagemaker.Channel{
			channel("train", spec.Train.URI(), spec.Train.ContentType),
			channel("validation", spec.Validation.URI(), spec.Validation.ContentType),
		},
		OutputDataConfig: &sagemaker.OutputDataConfig{
			S3OutputPath: aws.String(spec.OutputPrefix),
		},
		ResourceConfig: &sagemaker.ResourceConfig{
			InstanceType:   aws.String(spec.Resources.InstanceType),
			InstanceCount:  aws.Int64(spec.Resources.InstanceCount),
			VolumeSizeInGB: aws.Int64(spec.Resources.Volume.Value() / (1 << 30)),
		},
		StoppingCondition: &sagemaker.StoppingCondition{
			MaxRuntimeInSeconds: aws.Int64(int64(spec.Resources.MaxRuntime.Seconds())),
		},
		HyperParameters: hyperparameters,
	}

	output, err := t.api.CreateTrainingJobWithContext(ctx, input)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to submit training job %s", spec.Name)
	}

	log.Infof("submitted training job %s", spec.Name)
	return &JobHandle{
		Name:   spec.Name,
		ARN:    aws.StringValue(output.TrainingJobArn),
		Status: StatusSubmitted,
	}, nil
}

func (t *SageMakerTrainer) Describe(ctx context.Context, handle *JobHandle) (*JobHandle, error) {
	output, err := t.api.DescribeTrainingJobWithContext(ctx, &sagemaker.DescribeTrainingJobInput{
		TrainingJobName: aws.String(handle.Name),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to describe training job %s", handle.Name)
	}

	updated := &JobHandle{
		Name:          handle.Name,
		ARN:           handle.ARN,
		Status:        JobStatus(aws.StringValue(output.TrainingJobStatus)),
		FailureReason: aws.StringValue(output.FailureReason),
	}
	if output.ModelArtifacts != nil {
		updated.ModelArtifact = aws.StringValue(output.ModelArtifacts.S3ModelArtifacts)
	}
	return updated, nil
}

func channel(name, uri, contentType string) *sagemaker.Channel {
	return &sagemaker.Channel{
		ChannelName: aws.String(name),
		ContentType: aws.String(contentType),
		DataSource: &sagemaker.DataSource{
			S3DataSource: &sagemaker.S3DataSource{
				S3DataType:             aws.String(sagemaker.S3DataTypeS3prefix),
				S3Uri:                  aws.String(uri),
				S3DataDistributionType: aws.String(sagemaker.S3DataDistributionFullyReplicated),
			},
		},
	}
}
