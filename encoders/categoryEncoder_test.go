package encoders

import (
	"errors"
	"testing"

	"github.com/htm-community/streamhtm/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryEncoding(t *testing.T) {
	p := NewCategoryEncoderParams(2, 3)
	p.Categories = []string{"red"}
	e, err := NewCategoryEncoder(p)
	require.NoError(t, err)
	assert.Equal(t, 8, e.Width())
	assert.Equal(t, 2, e.ActiveBits())

	encoded, err := e.Encode("red")
	require.NoError(t, err)
	assert.Equal(t, utils.Make1DBool([]int{0, 0, 1, 1, 0, 0, 0, 0}), encoded)

	// new categories grow the vocabulary
	encoded, err = e.Encode("green")
	require.NoError(t, err)
	assert.Equal(t, utils.Make1DBool([]int{0, 0, 0, 0, 1, 1, 0, 0}), encoded)

	idx, err := e.BucketIndex("blue")
	require.NoError(t, err)
	assert.Equal(t, 3, idx)
	assert.Equal(t, []string{"red", "green", "blue"}, e.Vocabulary())
	assert.Equal(t, "green", e.BucketValue(2))

	// vocabulary is full, unknown bucket
	encoded, err = e.Encode("purple")
	require.NoError(t, err)
	assert.Equal(t, utils.Make1DBool([]int{1, 1, 0, 0, 0, 0, 0, 0}), encoded)
	assert.Equal(t, "", e.BucketValue(0))
	assert.Len(t, e.Vocabulary(), 3)
}

func TestCategoryEncoderErrors(t *testing.T) {
	_, err := NewCategoryEncoder(NewCategoryEncoderParams(0, 3))
	assert.Error(t, err)

	_, err = NewCategoryEncoder(NewCategoryEncoderParams(3, 0))
	assert.Error(t, err)

	p := NewCategoryEncoderParams(3, 1)
	p.Categories = []string{"a", "b"}
	_, err = NewCategoryEncoder(p)
	assert.Error(t, err)

	p = NewCategoryEncoderParams(3, 4)
	p.Categories = []string{"a", "a"}
	_, err = NewCategoryEncoder(p)
	assert.Error(t, err)

	e, err := NewCategoryEncoder(NewCategoryEncoderParams(3, 4))
	require.NoError(t, err)
	_, err = e.Encode(1.5)
	assert.True(t, errors.Is(err, ErrValueType))
}
