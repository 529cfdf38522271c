package staging

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/dataset"
	lconfig "github.infra.cloudera.com/CAI/AmpModelWorkflow/pkg/config"
)

var ErrStagingIO = fmt.Errorf("failed to stage partition")
var ErrNotSerializable = fmt.Errorf("partition contains a value that cannot be serialized")

const contentType = "text/csv"

type Config struct {
	Bucket string `env:"STAGING_BUCKET"`
	Prefix string `env:"STAGING_PREFIX" envDefault:"model-workflow"`
}

func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("staging bucket is required")
	}
	return &cfg, nil
}

// StagedArtifact is an immutable reference to a serialized partition. It is
// created once per partition per run and never mutated.
type StagedArtifact struct {
	Bucket      string
	Key         string
	ContentType string
}

func (a StagedArtifact) URI() string {
	return fmt.Sprintf("s3://%s/%s", a.Bucket, a.Key)
}

// StagedSplit holds the staged copies of a run's partitions.
type StagedSplit struct {
	Train      StagedArtifact
	Validation StagedArtifact
	Test       StagedArtifact
}

func (s *StagedSplit) Artifacts() []StagedArtifact {
	return []StagedArtifact{s.Train, s.Validation, s.Test}
}

type Stager struct {
	config *Config
	s3     s3iface.S3API
}

func NewStager(cfg *Config, api s3iface.S3API) *Stager {
	return &Stager{
		config: cfg,
		s3:     api,
	}
}

// Stage serializes a partition as headerless target-first CSV and writes it
// under the configured prefix. Re-staging the same run/partition overwrites
// the previous object.
func (s *Stager) Stage(ctx context.Context, runName string, p *dataset.Partition) (StagedArtifact, error) {
	artifact := StagedArtifact{
		Bucket:      s.config.Bucket,
		Key:         path.Join(s.config.Prefix, runName, p.Name, p.Name+".csv"),
		ContentType: contentType,
	}

	body, err := encode(p.Data)
	if err != nil {
		return StagedArtifact{}, err
	}

	_, err = s.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(artifact.Bucket),
		Key:         aws.String(artifact.Key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(artifact.ContentType),
	})
	if err != nil {
		return StagedArtifact{}, fmt.Errorf("%w: put %s: %s", ErrStagingIO, artifact.URI(), err)
	}

	log.Infof("staged %d %s rows at %s", p.Data.NumRows(), p.Name, artifact.URI())
	return artifact, nil
}

// StageSplit stages the three partitions concurrently. Staging is the only
// stage with internal parallelism; the workflow stages themselves stay
// strictly sequential.
func (s *Stager) StageSplit(ctx context.Context, runName string, split *dataset.Split) (*StagedSplit, error) {
	staged := &StagedSplit{}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, binding := range []struct {
		partition *dataset.Partition
		target    *StagedArtifact
	}{
		{split.Train, &staged.Train},
		{split.Validation, &staged.Validation},
		{split.Test, &staged.Test},
	} {
		binding := binding
		group.Go(func() error {
			artifact, err := s.Stage(groupCtx, runName, binding.partition)
			if err != nil {
				return err
			}
			*binding.target = artifact
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return staged, nil
}

// ReadBack fetches a staged artifact and parses it into a dataset. Used to
// verify round-trips; the remote trainer consumes the artifact directly.
func (s *Stager) ReadBack(ctx context.Context, artifact StagedArtifact) (*dataset.Dataset, error) {
	out, err := s.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(artifact.Bucket),
		Key:    aws.String(artifact.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %s", ErrStagingIO, artifact.URI(), err)
	}
	defer out.Body.Close()
	return dataset.Parse(out.Body, 0, ",")
}

// Discard deletes a staged artifact. Deleting an artifact that is already
// gone is not an error.
func (s *Stager) Discard(ctx context.Context, artifact StagedArtifact) error {
	_, err := s.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(artifact.Bucket),
		Key:    aws.String(artifact.Key),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %s", ErrStagingIO, artifact.URI(), err)
	}
	log.Debugf("discarded staged artifact %s", artifact.URI())
	return nil
}

func encode(d *dataset.Dataset) ([]byte, error) {
	var buffer bytes.Buffer
	cells := make([]string, 0, d.FeatureWidth()+1)
	for i, row := range d.Features {
		cells = cells[:0]
		cells = append(cells, formatValue(d.Targets[i]))
		for _, value := range row {
			cells = append(cells, formatValue(value))
		}
		for _, cell := range cells {
			if cell == "" {
				return nil, fmt.Errorf("%w: row %d", ErrNotSerializable, i)
			}
		}
		buffer.WriteString(strings.Join(cells, ","))
		buffer.WriteByte('\n')
	}
	return buffer.Bytes(), nil
}

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
