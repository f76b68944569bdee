package htm

import (
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainedModel(t *testing.T) *Model {
	m := newTestModel(t, nil)
	for cycle := 0; cycle < 8; cycle++ {
		for element := 0; element < 3; element++ {
			_, err := m.Compute(sequenceInput(t, element), true)
			require.NoError(t, err)
			require.NoError(t, m.Observe(element, float64(element), true))
		}
	}
	return m
}

func TestStateRoundTrip(t *testing.T) {
	original := trainedModel(t)

	blob, err := original.State()
	require.NoError(t, err)

	loaded, err := LoadModel(blob)
	require.NoError(t, err)
	assert.Equal(t, original.ID, loaded.ID)
	assert.Equal(t, original.ModelParams, loaded.ModelParams)

	restored := newTestModel(t, func(p *ModelParams) { p.Seed = 99 })
	require.NoError(t, restored.SetState(blob))
	assert.Equal(t, original.ID, restored.ID)

	rnd := rand.New(rand.NewSource(21))
	for i := 0; i < 30; i++ {
		input := sequenceInput(t, i%3)
		if i%5 == 4 {
			input = randomInput(t, rnd)
		}

		want, err := original.Compute(input, true)
		require.NoError(t, err)
		for _, m := range []*Model{loaded, restored} {
			got, err := m.Compute(input, true)
			require.NoError(t, err)
			assert.Equal(t, want, got, "step %d", i)

			require.NoError(t, m.Observe(i%3, float64(i%3), true))
		}
		require.NoError(t, original.Observe(i%3, float64(i%3), true))

		wantDist, err := original.Predict(nil)
		require.NoError(t, err)
		gotDist, err := loaded.Predict(nil)
		require.NoError(t, err)
		assert.Equal(t, wantDist, gotDist, "step %d", i)
	}

	assert.Equal(t, original.Stats(), loaded.Stats())
}

func TestStateFreshModel(t *testing.T) {
	m := newTestModel(t, nil)
	blob, err := m.State()
	require.NoError(t, err)

	loaded, err := LoadModel(blob)
	require.NoError(t, err)
	assert.Equal(t, ErrNotComputed, loaded.Observe(0, 0, true))
}

func TestStateCorrupt(t *testing.T) {
	blob, err := trainedModel(t).State()
	require.NoError(t, err)

	_, err = LoadModel(blob[:5])
	assert.True(t, errors.Is(err, ErrStateCorrupt))

	_, err = LoadModel(blob[:len(blob)/2])
	assert.True(t, errors.Is(err, ErrStateCorrupt))

	badMagic := append([]byte(nil), blob...)
	badMagic[0] ^= 0xff
	_, err = LoadModel(badMagic)
	assert.True(t, errors.Is(err, ErrStateCorrupt))

	badVersion := append([]byte(nil), blob...)
	binary.LittleEndian.PutUint16(badVersion[4:], 7)
	_, err = LoadModel(badVersion)
	assert.True(t, errors.Is(err, ErrStateVersion))
}

func TestStateSizeLimit(t *testing.T) {
	blob, err := trainedModel(t).State()
	require.NoError(t, err)

	m := newTestModel(t, func(p *ModelParams) { p.MaxStateSize = 1 * datasize.KB })
	err = m.SetState(blob)
	assert.True(t, errors.Is(err, ErrStateCorrupt))
	assert.Equal(t, 0, m.Stats().RecordNum)
}
