package htm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePredictorMethod(t *testing.T) {
	m, err := ParsePredictorMethod("Zeroth")
	require.NoError(t, err)
	assert.Equal(t, PredictZeroth, m)
	assert.Equal(t, "zeroth", m.String())

	_, err = ParsePredictorMethod("oracle")
	assert.Error(t, err)
}

func TestNewTrivialPredictorValidates(t *testing.T) {
	var cfgErr *ConfigError

	_, err := NewTrivialPredictor(0, []PredictorMethod{PredictLast}, 0, 42)
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "NumberOfColumns", cfgErr.Field)

	_, err = NewTrivialPredictor(10, nil, 0, 42)
	require.True(t, errors.As(err, &cfgErr))

	_, err = NewTrivialPredictor(10, []PredictorMethod{PredictorMethod(9)}, 0, 42)
	require.True(t, errors.As(err, &cfgErr))

	tp, err := NewTrivialPredictor(10, []PredictorMethod{PredictLast, PredictLast}, 0, 42)
	require.NoError(t, err)
	assert.Equal(t, []PredictorMethod{PredictLast}, tp.Methods)
}

func TestTrivialPredictorLast(t *testing.T) {
	tp, err := NewTrivialPredictor(20, []PredictorMethod{PredictLast}, 1, 42)
	require.NoError(t, err)

	input := []int{4, 2, 9}
	for i := 0; i < 5; i++ {
		tp.Compute(input, true)
	}
	assert.Equal(t, []int{2, 4, 9}, tp.Predicted(PredictLast))

	stats := tp.Stats(PredictLast)
	assert.Equal(t, 0.0, stats.CurMissing)
	assert.Equal(t, 0.0, stats.CurExtra)
	assert.InDelta(t, 1.0, stats.CurPredictionScore, 1e-9)
	assert.Equal(t, 4, stats.NPredictions)
}

func TestTrivialPredictorZeroth(t *testing.T) {
	tp, err := NewTrivialPredictor(20, []PredictorMethod{PredictZeroth, PredictLots}, 0, 42)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		tp.Compute([]int{1, 2, 3}, true)
	}
	tp.Compute([]int{7}, true)

	assert.Equal(t, []int{1, 2, 3}, tp.Predicted(PredictZeroth))
	assert.Len(t, tp.Predicted(PredictLots), 6)
	assert.Subset(t, tp.Predicted(PredictLots), []int{1, 2, 3, 7})
}

func TestTrivialPredictorAllAndRandom(t *testing.T) {
	methods := []PredictorMethod{PredictAll, PredictRandom}
	a, err := NewTrivialPredictor(40, methods, 0, 7)
	require.NoError(t, err)
	b, err := NewTrivialPredictor(40, methods, 0, 7)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		a.Compute([]int{i, i + 10}, true)
		b.Compute([]int{i, i + 10}, true)
		assert.Equal(t, a.Predicted(PredictRandom), b.Predicted(PredictRandom))
	}

	assert.Len(t, a.Predicted(PredictAll), 40)
	assert.Len(t, a.Predicted(PredictRandom), 2)
	assert.Nil(t, a.Predicted(PredictZeroth))
}

func TestTrivialPredictorReset(t *testing.T) {
	tp, err := NewTrivialPredictor(10, []PredictorMethod{PredictLast}, 0, 42)
	require.NoError(t, err)

	tp.Compute([]int{1}, true)
	tp.Compute([]int{1}, true)
	require.Equal(t, 2, tp.Stats(PredictLast).NInfersSinceReset)

	tp.Reset()
	assert.Nil(t, tp.Predicted(PredictLast))
	assert.Equal(t, 0, tp.Stats(PredictLast).NInfersSinceReset)
	assert.Equal(t, 2, tp.Stats(PredictLast).NPredictions)

	tp.ResetStats()
	assert.Equal(t, 0, tp.Stats(PredictLast).NPredictions)
}

func TestTrivialPredictorOutOfRangePanics(t *testing.T) {
	tp, err := NewTrivialPredictor(10, []PredictorMethod{PredictLast}, 0, 42)
	require.NoError(t, err)
	assert.Panics(t, func() { tp.Compute([]int{10}, true) })
}
