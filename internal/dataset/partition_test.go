package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func generateDataset(t *rapid.T, minRows int) *Dataset {
	numRows := rapid.IntRange(minRows, 200).Draw(t, "numRows")
	width := rapid.IntRange(1, 8).Draw(t, "width")

	features := make([][]float64, 0, numRows)
	targets := make([]float64, 0, numRows)
	for i := 0; i < numRows; i++ {
		row := make([]float64, width)
		for j := range row {
			row[j] = float64(i*width + j)
		}
		features = append(features, row)
		// Encode the row identity in the target so pairing violations show up.
		targets = append(targets, float64(i))
	}
	ds, err := New(features, targets)
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	return ds
}

func TestPartitionDisjointUnion(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ds := generateDataset(rt, 30)
		seed := rapid.Int64().Draw(rt, "seed")

		split, err := NewSplit(ds, Ratios{Train: 0.6, Validation: 0.2, Test: 0.2}, seed)
		if err != nil {
			rt.Fatalf("failed to partition: %v", err)
		}

		seen := make(map[float64]string)
		total := 0
		for _, p := range split.Partitions() {
			total += p.Data.NumRows()
			for i, target := range p.Data.Targets {
				// Property: no row appears in more than one partition
				if previous, ok := seen[target]; ok {
					rt.Fatalf("row %v in both %s and %s", target, previous, p.Name)
				}
				seen[target] = p.Name

				// Property: the feature vector is still the one the target was
				// paired with at load time
				row := p.Data.Features[i]
				assert.Equal(rt, target*float64(len(row)), row[0])
			}
		}
		// Property: the union of the partitions covers the whole dataset
		assert.Equal(rt, ds.NumRows(), total)
	})
}

func TestPartitionDeterministic(t *testing.T) {
	features := make([][]float64, 500)
	targets := make([]float64, 500)
	for i := range features {
		features[i] = []float64{float64(i), float64(i) * 2}
		targets[i] = float64(i)
	}
	ds, err := New(features, targets)
	assert.NoError(t, err)

	ratios := Ratios{Train: 0.45, Validation: 0.22, Test: 0.33}

	first, err := NewSplit(ds, ratios, 42)
	assert.NoError(t, err)
	assert.Equal(t, 225, first.Train.Data.NumRows())
	assert.Equal(t, 110, first.Validation.Data.NumRows())
	assert.Equal(t, 165, first.Test.Data.NumRows())

	for i := 0; i < 3; i++ {
		repeat, err := NewSplit(ds, ratios, 42)
		assert.NoError(t, err)
		assert.Equal(t, first.Train.Data.Targets, repeat.Train.Data.Targets)
		assert.Equal(t, first.Validation.Data.Targets, repeat.Validation.Data.Targets)
		assert.Equal(t, first.Test.Data.Targets, repeat.Test.Data.Targets)
	}

	other, err := NewSplit(ds, ratios, 43)
	assert.NoError(t, err)
	assert.NotEqual(t, first.Train.Data.Targets, other.Train.Data.Targets)
}

func TestPartitionInsufficientData(t *testing.T) {
	ds, err := New([][]float64{{1}, {2}, {3}}, []float64{1, 2, 3})
	assert.NoError(t, err)

	// Three rows cannot fill a 10% validation partition
	_, err = NewSplit(ds, Ratios{Train: 0.8, Validation: 0.1, Test: 0.1}, 1)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPartitionInvalidRatios(t *testing.T) {
	ds, err := New([][]float64{{1}, {2}}, []float64{1, 2})
	assert.NoError(t, err)

	for _, ratios := range []Ratios{
		{Train: 0.5, Validation: 0.5, Test: 0.5},
		{Train: -0.5, Validation: 0.5, Test: 0.5},
		{Train: 0.5, Validation: 0, Test: 0.5},
	} {
		_, err = NewSplit(ds, ratios, 1)
		assert.ErrorIs(t, err, ErrInvalidRatios)
	}
}
