package htm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPrediction(t *testing.T) {
	conf := make([]float64, 10)
	conf[1], conf[2], conf[3] = 0.5, 0.5, 0.5

	extras, missing, confidences, missingBits := checkPrediction([][]int{{0, 1, 2}},
		[]int{3, 2, 1}, conf, true)

	assert.Equal(t, 1, extras)
	assert.Equal(t, 1, missing)
	assert.Equal(t, []int{0}, missingBits)
	require.Len(t, confidences, 1)
	assert.InDelta(t, 2.0/3.0, confidences[0].PositivePredictionScore, 1e-9)
	assert.InDelta(t, 1.0/3.0, confidences[0].NegativePredictionScore, 1e-9)
	assert.InDelta(t, 1.0/3.0, confidences[0].PredictionScore, 1e-9)
}

func TestCheckPredictionNothingPredicted(t *testing.T) {
	extras, missing, confidences, missingBits := checkPrediction([][]int{{4, 5}},
		nil, make([]float64, 10), false)
	assert.Equal(t, 0, extras)
	assert.Equal(t, 2, missing)
	assert.Nil(t, missingBits)
	assert.Equal(t, 0.0, confidences[0].PredictionScore)
}

func TestPredictionStatsBurnIn(t *testing.T) {
	stats := &PredictionStats{BurnIn: 1}
	conf := make([]float64, 4)
	conf[2] = 1

	stats.update([]int{2}, []int{2}, conf)
	assert.Equal(t, 1.0, stats.CurPredictionScore)
	assert.Equal(t, 0, stats.NPredictions)

	stats.update([]int{2}, []int{2}, conf)
	assert.Equal(t, 1, stats.NPredictions)
	assert.Equal(t, 1.0, stats.AvgPredictionScore())

	stats.update([]int{1}, []int{2}, conf)
	assert.Equal(t, 2, stats.NPredictions)
	assert.Equal(t, 1.0, stats.TotalMissing)
	assert.Equal(t, 1.0, stats.TotalExtra)
	assert.InDelta(t, 0.0, stats.AvgPredictionScore(), 1e-9)

	stats.Reset()
	stats.update([]int{2}, []int{2}, conf)
	assert.Equal(t, 2, stats.NPredictions)
	assert.Contains(t, stats.ToString(), "nPredictions 2")
}

func TestColumnConfidence(t *testing.T) {
	tm := newTestTm(t, smallTmParams)
	seg := tm.Connections.CreateSegment(4)
	for _, cell := range []int{0, 1, 2, 3} {
		tm.Connections.CreateSynapse(seg, cell, 0.5)
	}
	tm.Compute([]int{0}, false)

	conf := tm.ColumnConfidence()
	assert.Len(t, conf, 32)
	assert.Equal(t, 0.25, conf[1])
	assert.Equal(t, 0.0, conf[0])
}
