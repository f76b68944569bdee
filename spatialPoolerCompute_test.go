package htm

import (
	"testing"

	"github.com/htm-community/streamhtm/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomInputs(numRecords, width int, density float64, seed int64) []SDR {
	rng := NewRandom(seed)
	inputs := make([]SDR, numRecords)
	for i := range inputs {
		dense := make([]bool, width)
		for j := range dense {
			dense[j] = rng.Float64() < density
		}
		inputs[i] = NewSDRFromDense(dense)
	}
	return inputs
}

func basicComputeLoop(t *testing.T, spParams SpParams) {
	/*
		 Feed in some vectors and retrieve outputs. Ensure the right number of
		columns win and that nothing crashes.
	*/

	sp, err := NewSpatialPooler(spParams)
	require.NoError(t, err)

	inputMatrix := randomInputs(100, sp.NumInputs(), 0.2, 3)

	// Without training global inhibition still picks the requested number
	for _, input := range inputMatrix {
		y, err := sp.Compute(input, false)
		require.NoError(t, err)
		assert.Equal(t, sp.NumActiveColumnsPerInhArea, len(y))
	}

	// With learning on we should get the requested number of winners
	for _, input := range inputMatrix {
		y, err := sp.Compute(input, true)
		require.NoError(t, err)
		assert.Equal(t, sp.NumActiveColumnsPerInhArea, len(y))
	}

	// With learning off and some prior training we should get the requested
	// number of winners
	for _, input := range inputMatrix {
		y, err := sp.Compute(input, false)
		require.NoError(t, err)
		assert.Equal(t, sp.NumActiveColumnsPerInhArea, len(y))
	}
}

func TestBasicCompute1(t *testing.T) {
	spParams := NewSpParams()
	spParams.InputDimensions = []int{30}
	spParams.ColumnDimensions = []int{50}
	spParams.GlobalInhibition = true

	basicComputeLoop(t, spParams)
}

func TestBasicCompute2(t *testing.T) {
	spParams := NewSpParams()
	spParams.InputDimensions = []int{100}
	spParams.ColumnDimensions = []int{100}
	spParams.GlobalInhibition = true
	spParams.SynPermActiveInc = 0
	spParams.SynPermInactiveDec = 0

	basicComputeLoop(t, spParams)
}

func TestComputeAllZeroInput(t *testing.T) {
	spParams := NewSpParams()
	spParams.InputDimensions = []int{64}
	spParams.ColumnDimensions = []int{128}
	spParams.GlobalInhibition = true
	spParams.NumActiveColumnsPerInhArea = 5

	sp, err := NewSpatialPooler(spParams)
	require.NoError(t, err)

	empty, err := NewSDR(64, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		y, err := sp.Compute(empty, true)
		require.NoError(t, err)
		assert.Len(t, y, 5)
	}
}

func TestComputeInputShape(t *testing.T) {
	spParams := NewSpParams()
	spParams.InputDimensions = []int{30}
	spParams.ColumnDimensions = []int{50}
	spParams.GlobalInhibition = true

	sp, err := NewSpatialPooler(spParams)
	require.NoError(t, err)

	wrong, err := NewSDR(31, []int{1, 2})
	require.NoError(t, err)
	_, err = sp.Compute(wrong, true)
	assert.IsType(t, &InputShapeError{}, err)
	assert.Equal(t, 0, sp.IterationNum())
}

func TestComputeDeterministic(t *testing.T) {
	spParams := NewSpParams()
	spParams.InputDimensions = []int{80}
	spParams.ColumnDimensions = []int{120}
	spParams.GlobalInhibition = true
	spParams.NumActiveColumnsPerInhArea = 6
	spParams.Seed = 11

	a, err := NewSpatialPooler(spParams)
	require.NoError(t, err)
	b, err := NewSpatialPooler(spParams)
	require.NoError(t, err)

	for _, input := range randomInputs(60, 80, 0.15, 5) {
		ya, err := a.Compute(input, true)
		require.NoError(t, err)
		yb, err := b.Compute(input, true)
		require.NoError(t, err)
		assert.Equal(t, ya, yb)
	}
	assert.Equal(t, a.BoostFactors(), b.BoostFactors())
}

func TestComputePermanenceBounds(t *testing.T) {
	spParams := NewSpParams()
	spParams.InputDimensions = []int{40}
	spParams.ColumnDimensions = []int{60}
	spParams.GlobalInhibition = true
	spParams.NumActiveColumnsPerInhArea = 4
	spParams.SynPermActiveInc = 0.2
	spParams.SynPermInactiveDec = 0.3
	spParams.SynPermConnected = 0.2

	sp, err := NewSpatialPooler(spParams)
	require.NoError(t, err)

	for _, input := range randomInputs(200, 40, 0.3, 9) {
		_, err := sp.Compute(input, true)
		require.NoError(t, err)
	}

	for c := 0; c < sp.NumColumns(); c++ {
		for _, p := range sp.Permanence(c) {
			assert.True(t, p >= 0 && p <= 1, "permanence %v out of range", p)
		}
	}
}

func TestComputeLocalInhibitionSparsity(t *testing.T) {
	spParams := NewSpParams()
	spParams.InputDimensions = []int{100}
	spParams.ColumnDimensions = []int{200}
	spParams.PotentialRadius = 10
	spParams.GlobalInhibition = false
	spParams.LocalAreaDensity = 0.05

	sp, err := NewSpatialPooler(spParams)
	require.NoError(t, err)
	assert.True(t, sp.InhibitionRadius() >= 1)

	target := int(0.05 * 200)
	for _, input := range randomInputs(50, 100, 0.1, 4) {
		y, err := sp.Compute(input, true)
		require.NoError(t, err)
		assert.True(t, len(y) > 0)
		assert.True(t, len(y) <= 4*target, "%d active columns", len(y))
	}
}

func TestComputeGrowsWeakWinners(t *testing.T) {
	spParams := NewSpParams()
	spParams.InputDimensions = []int{20}
	spParams.ColumnDimensions = []int{4}
	spParams.PotentialRadius = 20
	spParams.PotentialPct = 0.2
	spParams.GlobalInhibition = true
	spParams.NumActiveColumnsPerInhArea = 2
	spParams.MinConnectedPerColumn = 6
	spParams.MaxSynapsesPerColumn = 8

	sp, err := NewSpatialPooler(spParams)
	require.NoError(t, err)

	before := make([][]int, sp.NumColumns())
	for c := range before {
		before[c] = sp.Potential(c)
		assert.Len(t, before[c], 4)
	}

	input, err := NewSDR(20, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(t, err)
	active, err := sp.Compute(input, true)
	require.NoError(t, err)
	require.Len(t, active, 2)

	for _, c := range active {
		pool := sp.Potential(c)
		assert.True(t, len(pool) > 4)
		assert.True(t, len(pool) <= 8)
		for _, j := range pool {
			grown := !utils.SortedContainsInt(j, before[c])
			if grown {
				assert.True(t, j < 10, "grew synapse to inactive input %d", j)
			}
		}
	}
}
