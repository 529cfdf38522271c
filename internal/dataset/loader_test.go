package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTargetFirst(t *testing.T) {
	input := "9.5,1,2,3\n4.25,4,5,6\n"

	ds, err := Parse(strings.NewReader(input), 0, ",")
	assert.NoError(t, err)
	assert.Equal(t, 2, ds.NumRows())
	assert.Equal(t, 3, ds.FeatureWidth())
	assert.Equal(t, []float64{9.5, 4.25}, ds.Targets)
	assert.Equal(t, []float64{1, 2, 3}, ds.Features[0])
}

func TestParseTargetLast(t *testing.T) {
	input := "1,2,3,9.5\n4,5,6,4.25"

	ds, err := Parse(strings.NewReader(input), 3, ",")
	assert.NoError(t, err)
	assert.Equal(t, []float64{9.5, 4.25}, ds.Targets)
	assert.Equal(t, []float64{4, 5, 6}, ds.Features[1])
}

func TestParseSkipsBlankLines(t *testing.T) {
	input := "1,2\n\n3,4\n\n"

	ds, err := Parse(strings.NewReader(input), 0, ",")
	assert.NoError(t, err)
	assert.Equal(t, 2, ds.NumRows())
}

func TestParseNonNumeric(t *testing.T) {
	input := "1,2,3\n4,M,6\n"

	_, err := Parse(strings.NewReader(input), 0, ",")
	assert.ErrorIs(t, err, ErrNonNumericValue)
}

func TestParseTargetColumnOutOfRange(t *testing.T) {
	_, err := Parse(strings.NewReader("1,2\n"), 5, ",")
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(strings.NewReader(""), 0, ",")
	assert.ErrorIs(t, err, ErrEmptyDataset)
}
