package encoders

import (
	"errors"
	"testing"

	"github.com/htm-community/streamhtm/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func periodicTestEncoder(t *testing.T) *ScalerEncoder {
	p := NewScalerEncoderParams(3, 1, 8)
	p.N = 14
	p.Periodic = true
	e, err := NewScalerEncoder(p)
	require.NoError(t, err)
	return e
}

func TestSimpleEncoding(t *testing.T) {
	e := periodicTestEncoder(t)

	encoded, err := e.Encode(1)
	require.NoError(t, err)
	expected := utils.Make1DBool([]int{1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1})
	assert.Equal(t, 14, len(encoded))
	assert.Equal(t, expected, encoded)

	encoded, err = e.Encode(2)
	require.NoError(t, err)
	expected = utils.Make1DBool([]int{0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	assert.Equal(t, expected, encoded)

	encoded, err = e.Encode("3")
	require.NoError(t, err)
	expected = utils.Make1DBool([]int{0, 0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0})
	assert.Equal(t, expected, encoded)

	idx, err := e.BucketIndex(2.0)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	idx, err = e.BucketIndex(1.0)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestSimpleDecoding(t *testing.T) {
	e := periodicTestEncoder(t)

	// Test with a "hole"
	encoded := utils.Make1DBool([]int{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0})
	assert.Equal(t, []ValueRange{{7.5, 7.5}}, e.Decode(encoded))

	// Test with something wider than w, and with a hole, and wrapped
	encoded = utils.Make1DBool([]int{1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0})
	assert.Equal(t, []ValueRange{{7.5, 8}, {1, 1}}, e.Decode(encoded))

	// Test with something wider than w, no hole
	encoded = utils.Make1DBool([]int{1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	assert.Equal(t, []ValueRange{{1.5, 2.5}}, e.Decode(encoded))

	// 1
	encoded = utils.Make1DBool([]int{1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1})
	assert.Equal(t, []ValueRange{{1, 1}}, e.Decode(encoded))

	// 2
	encoded = utils.Make1DBool([]int{0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	assert.Equal(t, []ValueRange{{2, 2}}, e.Decode(encoded))

	assert.Nil(t, e.Decode(make([]bool, 14)))
}

func TestNonPeriodicEncoding(t *testing.T) {
	p := NewScalerEncoderParams(21, 0, 100)
	p.N = 121
	e, err := NewScalerEncoder(p)
	require.NoError(t, err)
	assert.Equal(t, 121, e.Width())
	assert.Equal(t, 21, e.ActiveBits())
	assert.Equal(t, 101, e.NumBuckets())

	encoded, err := e.Encode(0)
	require.NoError(t, err)
	assert.Equal(t, 21, utils.CountTrue(encoded))
	assert.True(t, encoded[0])
	assert.True(t, encoded[20])
	assert.False(t, encoded[21])

	encoded, err = e.Encode(100)
	require.NoError(t, err)
	assert.Equal(t, 21, utils.CountTrue(encoded))
	assert.True(t, encoded[100])
	assert.True(t, encoded[120])

	idx, err := e.BucketIndex(50)
	require.NoError(t, err)
	assert.Equal(t, 50, idx)
	assert.Equal(t, 50.0, e.BucketValue(idx))

	decoded := e.Decode(encoded)
	require.Len(t, decoded, 1)
	assert.Equal(t, 100.0, decoded[0].Min)
}

func TestScalarOutOfRange(t *testing.T) {
	p := NewScalerEncoderParams(21, 0, 100)
	p.N = 121
	e, err := NewScalerEncoder(p)
	require.NoError(t, err)

	_, err = e.Encode(101)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = e.Encode(-1)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = e.Encode("abc")
	assert.True(t, errors.Is(err, ErrValueType))
	_, err = e.Encode([]int{1})
	assert.True(t, errors.Is(err, ErrValueType))

	p.ClipInput = true
	clipped, err := NewScalerEncoder(p)
	require.NoError(t, err)
	idx, err := clipped.BucketIndex(250)
	require.NoError(t, err)
	assert.Equal(t, 100, idx)

	periodic := periodicTestEncoder(t)
	_, err = periodic.Encode(8)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestScalarRadiusSizing(t *testing.T) {
	p := NewScalerEncoderParams(3, 0, 1)
	p.Radius = 1
	e, err := NewScalerEncoder(p)
	require.NoError(t, err)
	assert.Equal(t, 6, e.Width())

	encoded, err := e.Encode(0)
	require.NoError(t, err)
	assert.Equal(t, utils.Make1DBool([]int{1, 1, 1, 0, 0, 0}), encoded)
	encoded, err = e.Encode(1)
	require.NoError(t, err)
	assert.Equal(t, utils.Make1DBool([]int{0, 0, 0, 1, 1, 1}), encoded)
}

func TestScalarParamsValidate(t *testing.T) {
	_, err := NewScalerEncoder(NewScalerEncoderParams(4, 0, 1))
	assert.Error(t, err)

	_, err = NewScalerEncoder(NewScalerEncoderParams(3, 1, 1))
	assert.Error(t, err)

	// no sizing
	_, err = NewScalerEncoder(NewScalerEncoderParams(3, 0, 1))
	assert.Error(t, err)

	p := NewScalerEncoderParams(3, 0, 1)
	p.N = 3
	_, err = NewScalerEncoder(p)
	assert.Error(t, err)

	p.Radius = 1
	p.N = 10
	_, err = NewScalerEncoder(p)
	assert.Error(t, err)
}
