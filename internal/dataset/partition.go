package dataset

import (
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"
)

var ErrInvalidRatios = fmt.Errorf("split ratios must be positive and sum to at most 1")
var ErrInsufficientData = fmt.Errorf("dataset is too small to fill every partition")

// Ratios holds the fraction of rows assigned to each partition. The three
// fractions must be positive and sum to at most 1; any remainder is dropped.
type Ratios struct {
	Train      float64
	Validation float64
	Test       float64
}

func (r Ratios) validate() error {
	if r.Train <= 0 || r.Validation <= 0 || r.Test <= 0 {
		return ErrInvalidRatios
	}
	// Tolerate float accumulation on ratios that are meant to sum to 1.
	if r.Train+r.Validation+r.Test > 1.0000001 {
		return ErrInvalidRatios
	}
	return nil
}

// NewSplit partitions a dataset into train/validation/test using a seeded
// shuffle of row indexes. The same dataset, ratios and seed always produce
// the same split. Row/target pairing is preserved.
//
// An empty partition is an error rather than a pass-through: the remote
// trainer's tolerance for a zero-row validation channel is unspecified, so
// we reject it here instead of guessing.
func NewSplit(d *Dataset, ratios Ratios, seed int64) (*Split, error) {
	if err := ratios.validate(); err != nil {
		return nil, err
	}

	n := d.NumRows()
	numTrain := int(ratios.Train * float64(n))
	numValidation := int(ratios.Validation * float64(n))
	numTest := int(ratios.Test * float64(n))
	if ratios.Train+ratios.Validation+ratios.Test > 0.9999999 {
		// Ratios cover the whole dataset; assign every remaining row to test
		// so truncation doesn't drop rows.
		numTest = n - numTrain - numValidation
	}

	if numTrain < 1 || numValidation < 1 || numTest < 1 {
		return nil, fmt.Errorf("%w: %d rows split %d/%d/%d", ErrInsufficientData, n, numTrain, numValidation, numTest)
	}

	indexes := rand.New(rand.NewSource(seed)).Perm(n)

	split := &Split{
		Train:      &Partition{Name: "train", Data: d.Select(indexes[:numTrain])},
		Validation: &Partition{Name: "validation", Data: d.Select(indexes[numTrain : numTrain+numValidation])},
		Test:       &Partition{Name: "test", Data: d.Select(indexes[numTrain+numValidation : numTrain+numValidation+numTest])},
	}

	log.Debugf("partitioned %d rows into train=%d validation=%d test=%d (seed %d)",
		n, numTrain, numValidation, numTest, seed)
	return split, nil
}
