package staging

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Mock is an in-memory object store for tests. Unimplemented S3API methods
// panic through the embedded nil interface.
type S3Mock struct {
	s3iface.S3API

	mu      sync.Mutex
	Objects map[string][]byte
	Puts    int
	Deletes int
	FailPut bool
}

func NewS3Mock() *S3Mock {
	return &S3Mock{
		Objects: make(map[string][]byte),
	}
}

func objectKey(bucket, key *string) string {
	return aws.StringValue(bucket) + "/" + aws.StringValue(key)
}

func (m *S3Mock) PutObjectWithContext(_ aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Puts++
	if m.FailPut {
		return nil, fmt.Errorf("injected put failure")
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	m.Objects[objectKey(input.Bucket, input.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *S3Mock) GetObjectWithContext(_ aws.Context, input *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.Objects[objectKey(input.Bucket, input.Key)]
	if !ok {
		return nil, fmt.Errorf("no such key %s", objectKey(input.Bucket, input.Key))
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(body)),
	}, nil
}

func (m *S3Mock) DeleteObjectWithContext(_ aws.Context, input *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	delete(m.Objects, objectKey(input.Bucket, input.Key))
	return &s3.DeleteObjectOutput{}, nil
}
