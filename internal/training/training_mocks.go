package training

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/aws/aws-sdk-go/service/sagemaker/sagemakeriface"
)

// TrainerMock scripts the status sequence a job moves through. Each Describe
// consumes the next status; the last one repeats.
type TrainerMock struct {
	Statuses      []JobStatus
	ModelArtifact string
	FailureReason string
	SubmitErr     error

	Submits   int
	Describes int
}

var _ Trainer = &TrainerMock{}

func (m *TrainerMock) Submit(_ context.Context, spec *JobSpec) (*JobHandle, error) {
	m.Submits++
	if m.SubmitErr != nil {
		return nil, m.SubmitErr
	}
	return &JobHandle{
		Name:   spec.Name,
		ARN:    "arn:aws:sagemaker:::training-job/" + spec.Name,
		Status: StatusSubmitted,
	}, nil
}

func (m *TrainerMock) Describe(_ context.Context, handle *JobHandle) (*JobHandle, error) {
	if len(m.Statuses) == 0 {
		return nil, fmt.Errorf("no scripted statuses")
	}
	index := m.Describes
	if index >= len(m.Statuses) {
		index = len(m.Statuses) - 1
	}
	m.Describes++

	updated := &JobHandle{
		Name:   handle.Name,
		ARN:    handle.ARN,
		Status: m.Statuses[index],
	}
	if updated.Status == StatusCompleted {
		updated.ModelArtifact = m.ModelArtifact
	}
	if updated.Status == StatusFailed {
		updated.FailureReason = m.FailureReason
	}
	return updated, nil
}

// SageMakerMock fakes the training-job half of the SageMaker API.
type SageMakerMock struct {
	sagemakeriface.SageMakerAPI

	Jobs          map[string]*sagemaker.DescribeTrainingJobOutput
	CreatedInputs []*sagemaker.CreateTrainingJobInput
}

func NewSageMakerMock() *SageMakerMock {
	return &SageMakerMock{
		Jobs: make(map[string]*sagemaker.DescribeTrainingJobOutput),
	}
}

func (m *SageMakerMock) CreateTrainingJobWithContext(_ aws.Context, input *sagemaker.CreateTrainingJobInput, _ ...request.Option) (*sagemaker.CreateTrainingJobOutput, error) {
	m.CreatedInputs = append(m.CreatedInputs, input)
	name := aws.StringValue(input.TrainingJobName)
	m.Jobs[name] = &sagemaker.DescribeTrainingJobOutput{
		TrainingJobName:   input.TrainingJobName,
		TrainingJobStatus: aws.String(sagemaker.TrainingJobStatusInProgress),
	}
	return &sagemaker.CreateTrainingJobOutput{
		TrainingJobArn: aws.String("arn:aws:sagemaker:::training-job/" + name),
	}, nil
}

func (m *SageMakerMock) DescribeTrainingJobWithContext(_ aws.Context, input *sagemaker.DescribeTrainingJobInput, _ ...request.Option) (*sagemaker.DescribeTrainingJobOutput, error) {
	job, ok := m.Jobs[aws.StringValue(input.TrainingJobName)]
	if !ok {
		return nil, fmt.Errorf("no such training job %s", aws.StringValue(input.TrainingJobName))
	}
	return job, nil
}
