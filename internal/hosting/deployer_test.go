package hosting

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/stretchr/testify/assert"

	ltime "github.infra.cloudera.com/CAI/AmpModelWorkflow/pkg/time"
)

func newTestDeployer() (*SageMakerDeployer, *SageMakerHostMock, *RuntimeMock) {
	host := NewSageMakerHostMock()
	runtime := &RuntimeMock{}
	deployer := NewSageMakerDeployer(&Config{RoleARN: "arn:aws:iam::123456789012:role/SageMakerRole"}, host, runtime)
	deployer.sleeper = ltime.NewTestingSleeper()
	return deployer, host, runtime
}

func testResourceSpec() *ResourceSpec {
	return &ResourceSpec{
		Image:         "123456789012.dkr.ecr.us-west-2.amazonaws.com/xgboost:latest",
		InstanceType:  "ml.m5.large",
		InstanceCount: 1,
	}
}

func TestDeployAndAwaitInService(t *testing.T) {
	deployer, host, _ := newTestDeployer()
	host.StatusSequence = []string{
		sagemaker.EndpointStatusCreating,
		sagemaker.EndpointStatusCreating,
		sagemaker.EndpointStatusInService,
	}

	endpoint, err := deployer.Deploy(context.TODO(), "s3://b/model.tar.gz", testResourceSpec())
	assert.NoError(t, err)
	assert.Equal(t, StatusProvisioning, endpoint.Status)
	assert.Equal(t, 1, len(host.Models))
	assert.Equal(t, 1, len(host.EndpointConfigs))
	assert.Equal(t, 1, len(host.Endpoints))

	err = deployer.AwaitInService(context.TODO(), endpoint, time.Second, time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, StatusInService, endpoint.Status)
	assert.Equal(t, 3, host.Describes)
}

func TestAwaitInServiceProvisioningFailure(t *testing.T) {
	deployer, host, _ := newTestDeployer()
	host.StatusSequence = []string{sagemaker.EndpointStatusFailed}
	host.FailureReason = "insufficient capacity"

	endpoint, err := deployer.Deploy(context.TODO(), "s3://b/model.tar.gz", testResourceSpec())
	assert.NoError(t, err)

	err = deployer.AwaitInService(context.TODO(), endpoint, time.Second, time.Hour)
	assert.ErrorIs(t, err, ErrDeployment)
	assert.Contains(t, err.Error(), "insufficient capacity")
}

func TestAwaitInServiceTimeout(t *testing.T) {
	deployer, host, _ := newTestDeployer()
	host.StatusSequence = []string{sagemaker.EndpointStatusCreating}

	endpoint, err := deployer.Deploy(context.TODO(), "s3://b/model.tar.gz", testResourceSpec())
	assert.NoError(t, err)

	err = deployer.AwaitInService(context.TODO(), endpoint, time.Second, 0)
	assert.ErrorIs(t, err, ErrDeployment)
	assert.Equal(t, 1, host.Describes)
}

func TestTeardownIsIdempotent(t *testing.T) {
	deployer, host, _ := newTestDeployer()

	endpoint, err := deployer.Deploy(context.TODO(), "s3://b/model.tar.gz", testResourceSpec())
	assert.NoError(t, err)

	assert.NoError(t, deployer.Teardown(context.TODO(), endpoint))
	assert.Equal(t, StatusDeleted, endpoint.Status)
	assert.Equal(t, 0, len(host.Endpoints))
	assert.Equal(t, 0, len(host.EndpointConfigs))
	assert.Equal(t, 0, len(host.Models))

	// Second teardown of the same handle succeeds with no remote calls
	assert.NoError(t, deployer.Teardown(context.TODO(), endpoint))
}

func TestTeardownSurvivesMissingResources(t *testing.T) {
	deployer, host, _ := newTestDeployer()

	endpoint, err := deployer.Deploy(context.TODO(), "s3://b/model.tar.gz", testResourceSpec())
	assert.NoError(t, err)

	// Someone deleted the endpoint out from under us; teardown of the rest
	// still succeeds.
	delete(host.Endpoints, endpoint.EndpointName)
	endpoint.Status = StatusInService

	assert.NoError(t, deployer.Teardown(context.TODO(), endpoint))
	assert.Equal(t, StatusDeleted, endpoint.Status)
}

func TestTeardownNilEndpoint(t *testing.T) {
	deployer, _, _ := newTestDeployer()
	assert.NoError(t, deployer.Teardown(context.TODO(), nil))
}
