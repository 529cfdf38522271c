package dataset

import (
	"fmt"
)

var ErrRaggedRow = fmt.Errorf("row has a different width than the rest of the dataset")
var ErrEmptyDataset = fmt.Errorf("dataset contains no rows")

// Dataset is a labeled tabular dataset. Features[i] and Targets[i] describe
// the same observation and stay paired through partitioning and staging.
type Dataset struct {
	Features [][]float64
	Targets  []float64
}

func New(features [][]float64, targets []float64) (*Dataset, error) {
	if len(features) == 0 || len(features) != len(targets) {
		return nil, ErrEmptyDataset
	}
	width := len(features[0])
	for _, row := range features {
		if len(row) != width {
			return nil, ErrRaggedRow
		}
	}
	return &Dataset{Features: features, Targets: targets}, nil
}

func (d *Dataset) NumRows() int {
	return len(d.Targets)
}

func (d *Dataset) FeatureWidth() int {
	if len(d.Features) == 0 {
		return 0
	}
	return len(d.Features[0])
}

// Select returns a new dataset holding the given rows, in order. The feature
// slices are shared with the parent; rows are never mutated after load.
func (d *Dataset) Select(indexes []int) *Dataset {
	features := make([][]float64, 0, len(indexes))
	targets := make([]float64, 0, len(indexes))
	for _, i := range indexes {
		features = append(features, d.Features[i])
		targets = append(targets, d.Targets[i])
	}
	return &Dataset{Features: features, Targets: targets}
}

// Partition is a named disjoint subset of a dataset's rows.
type Partition struct {
	Name string
	Data *Dataset
}

// Split is the result of partitioning a dataset for an experiment run. Test
// rows are held out entirely from train and validation.
type Split struct {
	Train      *Partition
	Validation *Partition
	Test       *Partition
}

func (s *Split) Partitions() []*Partition {
	return []*Partition{s.Train, s.Validation, s.Test}
}
