package workflow

import (
	"context"
	"path"

	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/dataset"
	"github.infra.cloudera.com/CAI/AmpModelWorkflow/internal/staging"
)

type StagerMock struct {
	StageErr   error
	DiscardErr error

	Stages    int
	Discards  int
	Discarded []string
}

var _ Stager = &StagerMock{}

func (m *StagerMock) StageSplit(_ context.Context, runName string, split *dataset.Split) (*staging.StagedSplit, error) {
	m.Stages++
	if m.StageErr != nil {
		return nil, m.StageErr
	}
	artifact := func(p *dataset.Partition) staging.StagedArtifact {
		return staging.StagedArtifact{
			Bucket:      "mock-bucket",
			Key:         path.Join("mock", runName, p.Name, p.Name+".csv"),
			ContentType: "text/csv",
		}
	}
	return &staging.StagedSplit{
		Train:      artifact(split.Train),
		Validation: artifact(split.Validation),
		Test:       artifact(split.Test),
	}, nil
}

func (m *StagerMock) Discard(_ context.Context, artifact staging.StagedArtifact) error {
	m.Discards++
	if m.DiscardErr != nil {
		return m.DiscardErr
	}
	m.Discarded = append(m.Discarded, artifact.Key)
	return nil
}
