package htm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(t *testing.T, mutate func(p *ClassifierParams)) *Classifier {
	p := NewClassifierParams()
	p.NumInputs = 100
	if mutate != nil {
		mutate(&p)
	}
	c, err := NewClassifier(p)
	require.NoError(t, err)
	return c
}

//bucket b is represented by a block of ten inputs
func bucketPattern(b int) []int {
	return sequenceColumns(b, 10)
}

func TestClassifierInitialDistribution(t *testing.T) {
	c := newTestClassifier(t, nil)
	result, err := c.Infer([]int{1, 5, 9}, []int{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0}, result[1].Probabilities)
	assert.Equal(t, []float64{0}, result[1].ActualValues)
}

func TestClassifierUnknownStep(t *testing.T) {
	c := newTestClassifier(t, nil)
	_, err := c.Infer([]int{1}, []int{1, 3})
	assert.True(t, errors.Is(err, ErrUnknownStep))
}

func TestClassifierParamsValidate(t *testing.T) {
	for field, mutate := range map[string]func(p *ClassifierParams){
		"Steps":         func(p *ClassifierParams) { p.Steps = []int{1, 1} },
		"Alpha":         func(p *ClassifierParams) { p.Alpha = 0 },
		"ActValueAlpha": func(p *ClassifierParams) { p.ActValueAlpha = 2 },
		"NumInputs":     func(p *ClassifierParams) { p.NumInputs = 0 },
	} {
		p := NewClassifierParams()
		mutate(&p)
		_, err := NewClassifier(p)
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr), field)
		assert.Equal(t, field, cfgErr.Field)
	}
}

func TestClassifierLearnRejectsBadInput(t *testing.T) {
	c := newTestClassifier(t, nil)
	assert.Error(t, c.Learn(0, []int{1}, -1, 3))
	assert.Panics(t, func() { c.Learn(0, []int{100}, 0, 3) })
}

func TestClassifierBucketGrowth(t *testing.T) {
	c := newTestClassifier(t, nil)
	require.NoError(t, c.Learn(0, bucketPattern(0), 4, 40))
	assert.Equal(t, 5, c.NumBuckets())

	result, err := c.Infer(bucketPattern(0), []int{1})
	require.NoError(t, err)
	assert.Len(t, result[1].Probabilities, 5)
	assert.InDelta(t, 1.0, sumFloats(result[1].Probabilities), 1e-9)
	assert.Equal(t, []float64{0, 0, 0, 0, 40}, result[1].ActualValues)
}

func TestClassifierBucketCapacityDoubles(t *testing.T) {
	c := newTestClassifier(t, func(p *ClassifierParams) { p.Steps = []int{0, 1} })
	for b := 0; b < 10; b++ {
		require.NoError(t, c.Learn(b, bucketPattern(b), b, float64(b)))
	}
	assert.Equal(t, 10, c.NumBuckets())
	for _, w := range c.weights {
		assert.Equal(t, 16, w.Cols())
		assert.Equal(t, 100, w.Rows())
	}

	result, err := c.Infer(bucketPattern(9), []int{0, 1})
	require.NoError(t, err)
	for _, step := range []int{0, 1} {
		assert.Len(t, result[step].Probabilities, 10)
		assert.InDelta(t, 1.0, sumFloats(result[step].Probabilities), 1e-9)
	}
	best, _ := result[0].MostLikely()
	assert.Equal(t, 9, best)
}

func TestClassifierActualValueAverage(t *testing.T) {
	c := newTestClassifier(t, nil)
	require.NoError(t, c.Learn(0, bucketPattern(0), 1, 10))
	require.NoError(t, c.Learn(1, bucketPattern(0), 1, 20))
	assert.InDelta(t, 0.7*10+0.3*20, c.actualValues[1], 1e-9)
}

func TestClassifierConvergence(t *testing.T) {
	c := newTestClassifier(t, func(p *ClassifierParams) {
		p.Steps = []int{1, 2}
	})

	for record := 0; record < 200; record++ {
		b := record % 4
		require.NoError(t, c.Learn(record, bucketPattern(b), b, float64(b*10)))
	}

	for b := 0; b < 4; b++ {
		result, err := c.Infer(bucketPattern(b), []int{1, 2})
		require.NoError(t, err)

		next := (b + 1) % 4
		assert.True(t, result[1].Probabilities[next] > 0.5, "bucket %d step 1: %v", b, result[1].Probabilities)
		bucket, value := result[1].MostLikely()
		assert.Equal(t, next, bucket)
		assert.InDelta(t, float64(next*10), value, 1e-9)
		assert.Equal(t, next, result[1].Ranked()[0])

		afterNext := (b + 2) % 4
		assert.True(t, result[2].Probabilities[afterNext] > 0.5, "bucket %d step 2: %v", b, result[2].Probabilities)
	}
}

func TestClassifierResetForgetsHistory(t *testing.T) {
	c := newTestClassifier(t, nil)
	require.NoError(t, c.Learn(0, bucketPattern(0), 0, 0))
	c.Reset()
	require.NoError(t, c.Learn(1, bucketPattern(1), 1, 1))

	//nothing was learned for pattern 0 at step 1
	result, err := c.Infer(bucketPattern(0), []int{1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, result[1].Probabilities[1], 1e-9)
}

func sumFloats(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
