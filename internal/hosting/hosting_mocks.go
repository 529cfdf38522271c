package hosting

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/aws/aws-sdk-go/service/sagemaker/sagemakeriface"
	"github.com/aws/aws-sdk-go/service/sagemakerruntime"
	"github.com/aws/aws-sdk-go/service/sagemakerruntime/sagemakerruntimeiface"
)

// DeployerMock answers Invoke with a fixed function of the payload and
// counts lifecycle calls. Teardown honors the idempotency contract.
type DeployerMock struct {
	DeployErr   error
	AwaitErr    error
	InvokeErr   error
	TeardownErr error

	// PredictionFor maps a feature row count to the returned CSV body. When
	// nil, Invoke echoes 0.5 per input line.
	PredictionFor func(lines int) string

	Deploys   int
	Awaits    int
	Invokes   int
	Teardowns int
}

var _ Deployer = &DeployerMock{}

func (m *DeployerMock) Deploy(_ context.Context, modelRef string, _ *ResourceSpec) (*Endpoint, error) {
	m.Deploys++
	if m.DeployErr != nil {
		return nil, m.DeployErr
	}
	return &Endpoint{
		EndpointName: "mock-endpoint",
		ConfigName:   "mock-endpoint-config",
		ModelName:    "mock-endpoint-model",
		ModelRef:     modelRef,
		Status:       StatusProvisioning,
	}, nil
}

func (m *DeployerMock) AwaitInService(_ context.Context, endpoint *Endpoint, _, _ time.Duration) error {
	m.Awaits++
	if m.AwaitErr != nil {
		endpoint.Status = StatusFailed
		return m.AwaitErr
	}
	endpoint.Status = StatusInService
	return nil
}

func (m *DeployerMock) Invoke(_ context.Context, _ *Endpoint, payload []byte, _ string) ([]byte, error) {
	m.Invokes++
	if m.InvokeErr != nil {
		return nil, m.InvokeErr
	}
	lines := strings.Count(string(payload), "\n")
	if m.PredictionFor != nil {
		return []byte(m.PredictionFor(lines)), nil
	}
	predictions := make([]string, lines)
	for i := range predictions {
		predictions[i] = "0.5"
	}
	return []byte(strings.Join(predictions, "\n")), nil
}

func (m *DeployerMock) Teardown(_ context.Context, endpoint *Endpoint) error {
	if endpoint == nil || endpoint.Status == StatusDeleted {
		return nil
	}
	m.Teardowns++
	if m.TeardownErr != nil {
		return m.TeardownErr
	}
	endpoint.Status = StatusDeleted
	return nil
}

// SageMakerHostMock fakes the hosting half of the SageMaker API plus the
// runtime invoke call. Deleting a missing resource returns the same
// ValidationException the real service does.
type SageMakerHostMock struct {
	sagemakeriface.SageMakerAPI

	Models          map[string]bool
	EndpointConfigs map[string]bool
	Endpoints       map[string]string

	Describes int
	// Statuses consumed by DescribeEndpoint, last one repeating.
	StatusSequence []string
	FailureReason  string
}

func NewSageMakerHostMock() *SageMakerHostMock {
	return &SageMakerHostMock{
		Models:          make(map[string]bool),
		EndpointConfigs: make(map[string]bool),
		Endpoints:       make(map[string]string),
		StatusSequence:  []string{sagemaker.EndpointStatusInService},
	}
}

func validationException(format string, args ...interface{}) error {
	return awserr.New("ValidationException", fmt.Sprintf(format, args...), nil)
}

func (m *SageMakerHostMock) CreateModelWithContext(_ aws.Context, input *sagemaker.CreateModelInput, _ ...request.Option) (*sagemaker.CreateModelOutput, error) {
	m.Models[aws.StringValue(input.ModelName)] = true
	return &sagemaker.CreateModelOutput{}, nil
}

func (m *SageMakerHostMock) CreateEndpointConfigWithContext(_ aws.Context, input *sagemaker.CreateEndpointConfigInput, _ ...request.Option) (*sagemaker.CreateEndpointConfigOutput, error) {
	m.EndpointConfigs[aws.StringValue(input.EndpointConfigName)] = true
	return &sagemaker.CreateEndpointConfigOutput{}, nil
}

func (m *SageMakerHostMock) CreateEndpointWithContext(_ aws.Context, input *sagemaker.CreateEndpointInput, _ ...request.Option) (*sagemaker.CreateEndpointOutput, error) {
	m.Endpoints[aws.StringValue(input.EndpointName)] = sagemaker.EndpointStatusCreating
	return &sagemaker.CreateEndpointOutput{}, nil
}

func (m *SageMakerHostMock) DescribeEndpointWithContext(_ aws.Context, input *sagemaker.DescribeEndpointInput, _ ...request.Option) (*sagemaker.DescribeEndpointOutput, error) {
	if _, ok := m.Endpoints[aws.StringValue(input.EndpointName)]; !ok {
		return nil, validationException("could not find endpoint %s", aws.StringValue(input.EndpointName))
	}
	index := m.Describes
	if index >= len(m.StatusSequence) {
		index = len(m.StatusSequence) - 1
	}
	m.Describes++
	return &sagemaker.DescribeEndpointOutput{
		EndpointName:   input.EndpointName,
		EndpointStatus: aws.String(m.StatusSequence[index]),
		FailureReason:  aws.String(m.FailureReason),
	}, nil
}

func (m *SageMakerHostMock) DeleteEndpointWithContext(_ aws.Context, input *sagemaker.DeleteEndpointInput, _ ...request.Option) (*sagemaker.DeleteEndpointOutput, error) {
	name := aws.StringValue(input.EndpointName)
	if _, ok := m.Endpoints[name]; !ok {
		return nil, validationException("could not find endpoint %s", name)
	}
	delete(m.Endpoints, name)
	return &sagemaker.DeleteEndpointOutput{}, nil
}

func (m *SageMakerHostMock) DeleteEndpointConfigWithContext(_ aws.Context, input *sagemaker.DeleteEndpointConfigInput, _ ...request.Option) (*sagemaker.DeleteEndpointConfigOutput, error) {
	name := aws.StringValue(input.EndpointConfigName)
	if !m.EndpointConfigs[name] {
		return nil, validationException("could not find endpoint configuration %s", name)
	}
	delete(m.EndpointConfigs, name)
	return &sagemaker.DeleteEndpointConfigOutput{}, nil
}

func (m *SageMakerHostMock) DeleteModelWithContext(_ aws.Context, input *sagemaker.DeleteModelInput, _ ...request.Option) (*sagemaker.DeleteModelOutput, error) {
	name := aws.StringValue(input.ModelName)
	if !m.Models[name] {
		return nil, validationException("could not find model %s", name)
	}
	delete(m.Models, name)
	return &sagemaker.DeleteModelOutput{}, nil
}

// RuntimeMock answers invocations with the mean of each row's features.
type RuntimeMock struct {
	sagemakerruntimeiface.SageMakerRuntimeAPI

	Invokes int
}

func (m *RuntimeMock) InvokeEndpointWithContext(_ aws.Context, input *sagemakerruntime.InvokeEndpointInput, _ ...request.Option) (*sagemakerruntime.InvokeEndpointOutput, error) {
	m.Invokes++
	lines := strings.Split(strings.TrimSpace(string(input.Body)), "\n")
	predictions := make([]string, 0, len(lines))
	for _, line := range lines {
		cells := strings.Split(line, ",")
		sum := 0.0
		for _, cell := range cells {
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed payload cell %q", cell)
			}
			sum += value
		}
		predictions = append(predictions, strconv.FormatFloat(sum/float64(len(cells)), 'g', -1, 64))
	}
	return &sagemakerruntime.InvokeEndpointOutput{
		Body: []byte(strings.Join(predictions, ",")),
	}, nil
}
