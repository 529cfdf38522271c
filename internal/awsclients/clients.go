package awsclients

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/aws/aws-sdk-go/service/sagemaker/sagemakeriface"
	"github.com/aws/aws-sdk-go/service/sagemakerruntime"
	"github.com/aws/aws-sdk-go/service/sagemakerruntime/sagemakerruntimeiface"
	"github.com/pkg/errors"

	lconfig "github.infra.cloudera.com/CAI/AmpModelWorkflow/pkg/config"
)

type Config struct {
	Region string `env:"AWS_REGION" envDefault:"us-west-2"`
	// Endpoint overrides the service endpoint, e.g. for localstack.
	Endpoint string `env:"AWS_ENDPOINT_URL"`
}

func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Credentials come from the default provider chain (environment, shared
// config, instance profile); nothing here reads them directly.
func NewSession(cfg *Config) (*session.Session, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AWS session")
	}
	return sess, nil
}

func NewS3(sess *session.Session) s3iface.S3API {
	return s3.New(sess)
}

func NewSageMaker(sess *session.Session) sagemakeriface.SageMakerAPI {
	return sagemaker.New(sess)
}

func NewSageMakerRuntime(sess *session.Session) sagemakerruntimeiface.SageMakerRuntimeAPI {
	return sagemakerruntime.New(sess)
}
