package htm

import (
	"fmt"
	"math"
	"sort"

	"github.com/cznic/mathutil"
	"github.com/gonum/floats"
	"github.com/htm-community/streamhtm/utils"
	"github.com/skelterjohn/go.matrix"
	"github.com/voodooEntity/archivist"
)

type SpParams struct {
	InputDimensions  []int
	ColumnDimensions []int
	//Radius in input space a column may connect to. Larger than the input
	//lets every column see the whole input.
	PotentialRadius int
	//Fraction of the inputs within the potential radius a column may connect to
	PotentialPct     float64
	GlobalInhibition bool
	//Density of active columns within an inhibition area. When greater
	//than zero it overrides NumActiveColumnsPerInhArea.
	LocalAreaDensity           float64
	NumActiveColumnsPerInhArea int
	//Overlaps below this are ignored
	StimulusThreshold       int
	SynPermInactiveDec      float64
	SynPermActiveInc        float64
	SynPermConnected        float64
	MinPctOverlapDutyCycles float64
	MinPctActiveDutyCycles  float64
	DutyCyclePeriod         int
	MaxBoost                float64
	Seed                    int
	SpVerbosity             int
	WrapAround              bool
	//A winning column with fewer connected synapses than this grows new
	//synapses to the active input bits. Zero disables growth.
	MinConnectedPerColumn int
	//Upper bound on a column's potential pool, zero means unbounded
	MaxSynapsesPerColumn int
}

//Initializes sp params with default values
func NewSpParams() SpParams {
	return SpParams{
		InputDimensions:            []int{32, 32},
		ColumnDimensions:           []int{64, 64},
		PotentialRadius:            16,
		PotentialPct:               0.5,
		GlobalInhibition:           false,
		LocalAreaDensity:           -1.0,
		NumActiveColumnsPerInhArea: 10,
		StimulusThreshold:          0,
		SynPermInactiveDec:         0.008,
		SynPermActiveInc:           0.05,
		SynPermConnected:           0.10,
		MinPctOverlapDutyCycles:    0.001,
		MinPctActiveDutyCycles:     0.001,
		DutyCyclePeriod:            1000,
		MaxBoost:                   10.0,
		Seed:                       -1,
		SpVerbosity:                0,
		WrapAround:                 true,
	}
}

//Validate returns a *ConfigError describing the first invalid field
func (p SpParams) Validate() error {
	if len(p.InputDimensions) == 0 {
		return configErr("InputDimensions", "must not be empty")
	}
	for _, d := range p.InputDimensions {
		if d <= 0 {
			return configErr("InputDimensions", "dimensions must be positive, got %v", p.InputDimensions)
		}
	}
	if len(p.ColumnDimensions) == 0 {
		return configErr("ColumnDimensions", "must not be empty")
	}
	for _, d := range p.ColumnDimensions {
		if d <= 0 {
			return configErr("ColumnDimensions", "dimensions must be positive, got %v", p.ColumnDimensions)
		}
	}
	if p.PotentialRadius < 0 {
		return configErr("PotentialRadius", "must not be negative, got %d", p.PotentialRadius)
	}
	if p.PotentialPct <= 0 || p.PotentialPct > 1 {
		return configErr("PotentialPct", "must be in (0,1], got %v", p.PotentialPct)
	}
	if p.LocalAreaDensity > 0 {
		if p.LocalAreaDensity > 1 {
			return configErr("LocalAreaDensity", "must be in (0,1], got %v", p.LocalAreaDensity)
		}
	} else if p.NumActiveColumnsPerInhArea <= 0 {
		return configErr("NumActiveColumnsPerInhArea", "must be positive when LocalAreaDensity is unset, got %d",
			p.NumActiveColumnsPerInhArea)
	}
	if p.StimulusThreshold < 0 {
		return configErr("StimulusThreshold", "must not be negative, got %d", p.StimulusThreshold)
	}
	if p.SynPermConnected <= 0 || p.SynPermConnected >= 1 {
		return configErr("SynPermConnected", "must be in (0,1), got %v", p.SynPermConnected)
	}
	if p.SynPermActiveInc < 0 || p.SynPermInactiveDec < 0 {
		return configErr("SynPermActiveInc", "permanence changes must not be negative")
	}
	if p.SynPermActiveInc/2.0 >= p.SynPermConnected {
		return configErr("SynPermActiveInc", "trim threshold %v must be below SynPermConnected", p.SynPermActiveInc/2.0)
	}
	if p.DutyCyclePeriod <= 0 {
		return configErr("DutyCyclePeriod", "must be positive, got %d", p.DutyCyclePeriod)
	}
	if p.MaxBoost < 1 {
		return configErr("MaxBoost", "must be at least 1, got %v", p.MaxBoost)
	}
	if p.MinConnectedPerColumn < 0 || p.MaxSynapsesPerColumn < 0 {
		return configErr("MinConnectedPerColumn", "synapse limits must not be negative")
	}
	return nil
}

type SpatialPooler struct {
	SpParams

	numInputs  int
	numColumns int

	// Extra parameter settings
	synPermMin              float64
	synPermMax              float64
	synPermTrimThreshold    float64
	synPermBelowStimulusInc float64
	updatePeriod            int
	initConnectedPct        float64

	// Internal state
	iterationNum      int
	iterationLearnNum int
	inhibitionRadius  int

	potentialPools    *DenseBinaryMatrix
	permanences       *matrix.DenseMatrix
	connectedSynapses *DenseBinaryMatrix
	connectedCounts   []int

	overlapDutyCycles    []float64
	activeDutyCycles     []float64
	minOverlapDutyCycles []float64
	minActiveDutyCycles  []float64
	boostFactors         []float64

	//neighbourhoods for the current inhibition radius
	neighbors       [][]int
	neighborsRadius int

	rng *Random
}

//Creates a new spatial pooler, mapping every column's potential pool and
//initial permanences
func NewSpatialPooler(params SpParams) (*SpatialPooler, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sp := &SpatialPooler{SpParams: params}
	sp.InputDimensions = append([]int(nil), params.InputDimensions...)
	sp.ColumnDimensions = append([]int(nil), params.ColumnDimensions...)
	sp.numInputs = utils.ProdInt(sp.InputDimensions)
	sp.numColumns = utils.ProdInt(sp.ColumnDimensions)
	sp.PotentialRadius = mathutil.Min(params.PotentialRadius, sp.numInputs)

	sp.synPermMin = 0.0
	sp.synPermMax = 1.0
	sp.synPermTrimThreshold = params.SynPermActiveInc / 2.0
	sp.synPermBelowStimulusInc = params.SynPermConnected / 10.0
	sp.updatePeriod = 50
	sp.initConnectedPct = 0.5

	sp.rng = NewRandom(int64(params.Seed))

	sp.potentialPools = NewDenseBinaryMatrix(sp.numColumns, sp.numInputs)
	sp.permanences = matrix.Zeros(sp.numColumns, sp.numInputs)
	sp.connectedSynapses = NewDenseBinaryMatrix(sp.numColumns, sp.numInputs)
	sp.connectedCounts = make([]int, sp.numColumns)

	for i := 0; i < sp.numColumns; i++ {
		potential := sp.mapPotential(i)
		if len(potential) < sp.StimulusThreshold {
			return nil, configErr("StimulusThreshold",
				"%d exceeds the potential pool size %d of column %d", sp.StimulusThreshold, len(potential), i)
		}
		sp.potentialPools.ReplaceRowByIndices(i, potential)
		perm := sp.initPermanence(potential, sp.initConnectedPct)
		sp.updatePermanencesForColumn(perm, i, true)
	}

	sp.overlapDutyCycles = make([]float64, sp.numColumns)
	sp.activeDutyCycles = make([]float64, sp.numColumns)
	sp.minOverlapDutyCycles = make([]float64, sp.numColumns)
	sp.minActiveDutyCycles = make([]float64, sp.numColumns)
	sp.boostFactors = make([]float64, sp.numColumns)
	utils.FillSliceFloat64(sp.boostFactors, 1.0)

	sp.updateInhibitionRadius()

	if sp.SpVerbosity > 0 {
		sp.printParameters()
	}

	return sp, nil
}

func (sp *SpatialPooler) NumInputs() int {
	return sp.numInputs
}

func (sp *SpatialPooler) NumColumns() int {
	return sp.numColumns
}

func (sp *SpatialPooler) InhibitionRadius() int {
	return sp.inhibitionRadius
}

func (sp *SpatialPooler) IterationNum() int {
	return sp.iterationNum
}

func (sp *SpatialPooler) BoostFactors() []float64 {
	return append([]float64(nil), sp.boostFactors...)
}

func (sp *SpatialPooler) ActiveDutyCycles() []float64 {
	return append([]float64(nil), sp.activeDutyCycles...)
}

func (sp *SpatialPooler) OverlapDutyCycles() []float64 {
	return append([]float64(nil), sp.overlapDutyCycles...)
}

func (sp *SpatialPooler) ConnectedCounts() []int {
	return append([]int(nil), sp.connectedCounts...)
}

//Returns the sorted input indices in a column's potential pool
func (sp *SpatialPooler) Potential(column int) []int {
	return sp.potentialPools.GetRowIndices(column)
}

//Returns the sorted input indices a column is connected to
func (sp *SpatialPooler) ConnectedSynapses(column int) []int {
	return sp.connectedSynapses.GetRowIndices(column)
}

//Returns a dense copy of a column's permanences
func (sp *SpatialPooler) Permanence(column int) []float64 {
	perm := make([]float64, sp.numInputs)
	for j := 0; j < sp.numInputs; j++ {
		perm[j] = sp.permanences.Get(column, j)
	}
	return perm
}

//Directly assigns a column's permanences, entries outside the potential
//pool are ignored
func (sp *SpatialPooler) SetPermanence(column int, perm []float64) {
	if len(perm) != sp.numInputs {
		panic("Permanence row does not match input size.")
	}
	sp.updatePermanencesForColumn(append([]float64(nil), perm...), column, false)
}

/*
Main func, maps the input to a sorted set of active columns. When learn
is true the permanences, duty cycles and boost factors are updated.
*/
func (sp *SpatialPooler) Compute(input SDR, learn bool) ([]int, error) {
	if err := input.checkShape(sp.numInputs, 0); err != nil {
		return nil, err
	}

	sp.updateBookeepingVars(learn)
	overlaps := sp.calculateOverlap(input.Sparse)

	boostedOverlaps := make([]float64, sp.numColumns)
	for i, o := range overlaps {
		boostedOverlaps[i] = float64(o)
	}
	// Apply boosting when learning is on
	if learn {
		floats.Mul(boostedOverlaps, sp.boostFactors)
	}

	// Apply inhibition to determine the winning columns
	activeColumns := sp.inhibitColumns(boostedOverlaps)

	if learn {
		sp.adaptSynapses(input, activeColumns)
		sp.growWeakWinners(input, activeColumns)
		sp.updateDutyCycles(overlaps, activeColumns)
		sp.bumpUpWeakColumns()
		sp.updateBoostFactors()
		if sp.isUpdateRound() {
			sp.updateInhibitionRadius()
			sp.updateMinDutyCycles()
		}
	}

	if sp.SpVerbosity > 1 {
		archivist.DebugF("sp iteration %d active columns %v", sp.iterationNum, activeColumns)
	}

	return activeColumns, nil
}

/*
Removes the columns that have never been active from a set of active
columns. Such columns cannot represent a learned pattern, only useful for
inference on a trained pooler.
*/
func (sp *SpatialPooler) StripUnlearnedColumns(activeColumns []int) []int {
	result := make([]int, 0, len(activeColumns))
	for _, c := range activeColumns {
		if sp.activeDutyCycles[c] > 0 {
			result = append(result, c)
		}
	}
	return result
}

func (sp *SpatialPooler) updateBookeepingVars(learn bool) {
	sp.iterationNum++
	if learn {
		sp.iterationLearnNum++
	}
}

/*
Determines each column's overlap with the input: the number of connected
synapses on active input bits. Overlaps below StimulusThreshold are zeroed.
*/
func (sp *SpatialPooler) calculateOverlap(activeInputs []int) []int {
	overlaps := sp.connectedSynapses.RowAndSumSparse(activeInputs)
	for i, o := range overlaps {
		if o < sp.StimulusThreshold {
			overlaps[i] = 0
		}
	}
	return overlaps
}

//Total order used for inhibition: higher score first, then higher boost,
//then lower column index
func (sp *SpatialPooler) columnBeats(a, b int, overlaps []float64) bool {
	if overlaps[a] != overlaps[b] {
		return overlaps[a] > overlaps[b]
	}
	if sp.boostFactors[a] != sp.boostFactors[b] {
		return sp.boostFactors[a] > sp.boostFactors[b]
	}
	return a < b
}

//Number of winners picked by global inhibition
func (sp *SpatialPooler) numActiveGlobal() int {
	if sp.LocalAreaDensity > 0 {
		n := int(sp.LocalAreaDensity*float64(sp.numColumns) + 0.5)
		return mathutil.Max(n, 1)
	}
	return mathutil.Min(sp.NumActiveColumnsPerInhArea, sp.numColumns)
}

func (sp *SpatialPooler) inhibitColumns(overlaps []float64) []int {
	if sp.GlobalInhibition || sp.inhibitionRadius > utils.MaxSliceInt(sp.ColumnDimensions) {
		return sp.inhibitColumnsGlobal(overlaps, sp.numActiveGlobal())
	}

	var density float64
	if sp.LocalAreaDensity > 0 {
		density = sp.LocalAreaDensity
	} else {
		inhibitionArea := int(math.Pow(float64(2*sp.inhibitionRadius+1), float64(len(sp.ColumnDimensions))))
		inhibitionArea = mathutil.Min(sp.numColumns, inhibitionArea)
		density = float64(sp.NumActiveColumnsPerInhArea) / float64(inhibitionArea)
		density = math.Min(density, 0.5)
	}
	return sp.inhibitColumnsLocal(overlaps, density)
}

//Picks exactly numActive columns ranked over the whole region
func (sp *SpatialPooler) inhibitColumnsGlobal(overlaps []float64, numActive int) []int {
	order := make([]int, sp.numColumns)
	utils.FillSliceWithIdxInt(order)
	sort.Slice(order, func(i, j int) bool {
		return sp.columnBeats(order[i], order[j], overlaps)
	})

	winners := append([]int(nil), order[:numActive]...)
	sort.Ints(winners)
	return winners
}

/*
Local inhibition. A column wins when fewer than its neighbourhood's quota
of neighbours beat it.
*/
func (sp *SpatialPooler) inhibitColumnsLocal(overlaps []float64, density float64) []int {
	var winners []int
	for i := 0; i < sp.numColumns; i++ {
		maskNeighbors := sp.columnNeighbors(i)
		numActive := int(0.5 + density*float64(len(maskNeighbors)+1))
		numBigger := 0
		for _, n := range maskNeighbors {
			if sp.columnBeats(n, i, overlaps) {
				numBigger++
			}
		}
		if numBigger < numActive {
			winners = append(winners, i)
		}
	}
	return winners
}

//Column neighbourhood at the current inhibition radius, cached until the
//radius changes
func (sp *SpatialPooler) columnNeighbors(column int) []int {
	if sp.neighbors == nil || sp.neighborsRadius != sp.inhibitionRadius {
		sp.neighbors = make([][]int, sp.numColumns)
		sp.neighborsRadius = sp.inhibitionRadius
	}
	if sp.neighbors[column] == nil {
		sp.neighbors[column] = neighborhood(column, sp.ColumnDimensions, sp.inhibitionRadius, false)
	}
	return sp.neighbors[column]
}

func (sp *SpatialPooler) permanenceRow(column int) []float64 {
	perm := make([]float64, sp.numInputs)
	for _, j := range sp.potentialPools.GetRowIndices(column) {
		perm[j] = sp.permanences.Get(column, j)
	}
	return perm
}

/*
The primary learning method. Potential synapses of the active columns on
active input bits are incremented, the rest are decremented.
*/
func (sp *SpatialPooler) adaptSynapses(input SDR, activeColumns []int) {
	inputBits := input.BitSet()
	for _, c := range activeColumns {
		perm := sp.permanenceRow(c)
		for _, j := range sp.potentialPools.GetRowIndices(c) {
			if inputBits.At(j) {
				perm[j] += sp.SynPermActiveInc
			} else {
				perm[j] -= sp.SynPermInactiveDec
			}
		}
		sp.updatePermanencesForColumn(perm, c, true)
	}
}

/*
Winning columns left with fewer than MinConnectedPerColumn connected
synapses grow connected synapses to active input bits outside their
potential pool, up to MaxSynapsesPerColumn.
*/
func (sp *SpatialPooler) growWeakWinners(input SDR, activeColumns []int) {
	if sp.MinConnectedPerColumn <= 0 {
		return
	}

	for _, c := range activeColumns {
		missing := sp.MinConnectedPerColumn - sp.connectedCounts[c]
		if missing <= 0 {
			continue
		}
		if sp.MaxSynapsesPerColumn > 0 {
			missing = mathutil.Min(missing, sp.MaxSynapsesPerColumn-sp.potentialPools.RowCount(c))
		}
		if missing <= 0 {
			continue
		}

		var candidates []int
		for _, j := range input.Sparse {
			if !sp.potentialPools.Get(c, j) {
				candidates = append(candidates, j)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		perm := sp.permanenceRow(c)
		for _, j := range sp.rng.Sample(candidates, missing) {
			sp.potentialPools.Set(c, j, true)
			perm[j] = sp.SynPermConnected
		}
		sp.updatePermanencesForColumn(perm, c, false)
	}
}

/*
Updates the duty cycles for each column. The overlap duty cycle is a
moving average of how often a column had non-zero overlap, the active duty
cycle how often it won.
*/
func (sp *SpatialPooler) updateDutyCycles(overlaps []int, activeColumns []int) {
	overlapArray := make([]float64, sp.numColumns)
	activeArray := make([]float64, sp.numColumns)

	for i, o := range overlaps {
		if o > 0 {
			overlapArray[i] = 1
		}
	}
	for _, c := range activeColumns {
		activeArray[c] = 1
	}

	period := sp.DutyCyclePeriod
	if period > sp.iterationNum {
		period = sp.iterationNum
	}

	updateDutyCyclesHelper(sp.overlapDutyCycles, overlapArray, period)
	updateDutyCyclesHelper(sp.activeDutyCycles, activeArray, period)
}

/*
Updates duty cycles in place with a new value:

	dutyCycle := ((period - 1)*dutyCycle + newValue) / period
*/
func updateDutyCyclesHelper(dutyCycles []float64, newInput []float64, period int) {
	if period < 1 {
		panic("Duty cycle period must be at least 1.")
	}
	floats.Scale(float64(period-1), dutyCycles)
	floats.Add(dutyCycles, newInput)
	floats.Scale(1.0/float64(period), dutyCycles)
}

/*
Increases the permanences of columns whose overlap duty cycle dropped
below their minimum, without raising them to the stimulus threshold.
*/
func (sp *SpatialPooler) bumpUpWeakColumns() {
	for i := 0; i < sp.numColumns; i++ {
		if sp.overlapDutyCycles[i] >= sp.minOverlapDutyCycles[i] {
			continue
		}
		perm := sp.permanenceRow(i)
		for _, j := range sp.potentialPools.GetRowIndices(i) {
			perm[j] += sp.synPermBelowStimulusInc
		}
		sp.updatePermanencesForColumn(perm, i, false)
	}
}

/*
Update the boost factors for all columns. Boost falls linearly from
MaxBoost at an active duty cycle of zero to 1 at the minimum active duty
cycle, columns above their minimum are not boosted.
*/
func (sp *SpatialPooler) updateBoostFactors() {
	for i := 0; i < sp.numColumns; i++ {
		if sp.minActiveDutyCycles[i] > 0 {
			sp.boostFactors[i] = (1-sp.MaxBoost)/sp.minActiveDutyCycles[i]*sp.activeDutyCycles[i] + sp.MaxBoost
		}
		if sp.activeDutyCycles[i] > sp.minActiveDutyCycles[i] {
			sp.boostFactors[i] = 1.0
		}
	}
}

func (sp *SpatialPooler) isUpdateRound() bool {
	return sp.iterationNum%sp.updatePeriod == 0
}

// Updates the minimum duty cycles defining normal activity for a column. A
// column with activity duty cycle below this minimum threshold is boosted.
func (sp *SpatialPooler) updateMinDutyCycles() {
	if sp.GlobalInhibition || sp.inhibitionRadius > sp.numInputs {
		sp.updateMinDutyCyclesGlobal()
	} else {
		sp.updateMinDutyCyclesLocal()
	}
}

// Sets the minimum duty cycles of all columns to a percent of the maximum
// in the region.
func (sp *SpatialPooler) updateMinDutyCyclesGlobal() {
	utils.FillSliceFloat64(sp.minOverlapDutyCycles, sp.MinPctOverlapDutyCycles*floats.Max(sp.overlapDutyCycles))
	utils.FillSliceFloat64(sp.minActiveDutyCycles, sp.MinPctActiveDutyCycles*floats.Max(sp.activeDutyCycles))
}

// Sets each column's minimum duty cycles to a percent of the maximum in its
// neighbourhood.
func (sp *SpatialPooler) updateMinDutyCyclesLocal() {
	for i := 0; i < sp.numColumns; i++ {
		maxOverlap := sp.overlapDutyCycles[i]
		maxActive := sp.activeDutyCycles[i]
		for _, n := range sp.columnNeighbors(i) {
			maxOverlap = math.Max(maxOverlap, sp.overlapDutyCycles[n])
			maxActive = math.Max(maxActive, sp.activeDutyCycles[n])
		}
		sp.minOverlapDutyCycles[i] = maxOverlap * sp.MinPctOverlapDutyCycles
		sp.minActiveDutyCycles[i] = maxActive * sp.MinPctActiveDutyCycles
	}
}

/*
Ensures a column has at least StimulusThreshold connected synapses by
raising all permanences in the mask until enough are connected.
*/
func (sp *SpatialPooler) raisePermanenceToThreshold(perm []float64, mask []int) {
	if len(mask) < sp.StimulusThreshold {
		panic("Potential pool is smaller than the stimulus threshold.")
	}

	clip(perm, sp.synPermMin, sp.synPermMax)
	for {
		numConnected := 0
		for _, p := range perm {
			if p > sp.SynPermConnected {
				numConnected++
			}
		}
		if numConnected >= sp.StimulusThreshold {
			return
		}
		for _, j := range mask {
			perm[j] += sp.synPermBelowStimulusInc
		}
	}
}

/*
Writes a column's dense permanences back, clipping to [0,1], trimming
values below the trim threshold and refreshing the connected synapses and
counts. Every permanence change goes through here.
*/
func (sp *SpatialPooler) updatePermanencesForColumn(perm []float64, index int, raisePerm bool) {
	maskPotential := sp.potentialPools.GetRowIndices(index)
	if raisePerm {
		sp.raisePermanenceToThreshold(perm, maskPotential)
	}

	var newConnected []int
	for _, j := range maskPotential {
		p := perm[j]
		if math.IsNaN(p) {
			panic(fmt.Sprintf("NaN permanence on column %d input %d", index, j))
		}
		if p < sp.synPermTrimThreshold {
			p = 0
		}
		p = math.Max(sp.synPermMin, math.Min(sp.synPermMax, p))
		if p >= sp.SynPermConnected {
			newConnected = append(newConnected, j)
		}
		sp.permanences.Set(index, j, p)
	}

	sp.connectedSynapses.ReplaceRowByIndices(index, newConnected)
	sp.connectedCounts[index] = len(newConnected)
}

//Returns a randomly generated permanence value for a connected synapse,
//close to the connection threshold
func (sp *SpatialPooler) initPermConnected() float64 {
	p := sp.SynPermConnected + (sp.synPermMax-sp.SynPermConnected)*sp.rng.Float64()
	return float64(int(p*100000)) / 100000.0
}

//Returns a randomly generated permanence value for an unconnected synapse
func (sp *SpatialPooler) initPermNonConnected() float64 {
	p := sp.SynPermConnected * sp.rng.Float64()
	return float64(int(p*100000)) / 100000.0
}

/*
Initializes the permanences of a column. Each potential input is
connected with probability connectedPct, values below the trim threshold
are zeroed.
*/
func (sp *SpatialPooler) initPermanence(potential []int, connectedPct float64) []float64 {
	perm := make([]float64, sp.numInputs)
	for _, i := range potential {
		if sp.rng.Float64() <= connectedPct {
			perm[i] = sp.initPermConnected()
		} else {
			perm[i] = sp.initPermNonConnected()
		}
		if perm[i] < sp.synPermTrimThreshold {
			perm[i] = 0
		}
	}
	return perm
}

func clip(values []float64, min, max float64) {
	for i, v := range values {
		if v < min {
			values[i] = min
		} else if v > max {
			values[i] = max
		}
	}
}

func (sp *SpatialPooler) printParameters() {
	archivist.Info("------------ SpatialPooler Parameters ------------------")
	archivist.Info(fmt.Sprintf("numInputs                  = %v", sp.numInputs))
	archivist.Info(fmt.Sprintf("numColumns                 = %v", sp.numColumns))
	archivist.Info(fmt.Sprintf("columnDimensions           = %v", sp.ColumnDimensions))
	archivist.Info(fmt.Sprintf("numActiveColumnsPerInhArea = %v", sp.NumActiveColumnsPerInhArea))
	archivist.Info(fmt.Sprintf("potentialPct               = %v", sp.PotentialPct))
	archivist.Info(fmt.Sprintf("globalInhibition           = %v", sp.GlobalInhibition))
	archivist.Info(fmt.Sprintf("localAreaDensity           = %v", sp.LocalAreaDensity))
	archivist.Info(fmt.Sprintf("stimulusThreshold          = %v", sp.StimulusThreshold))
	archivist.Info(fmt.Sprintf("synPermActiveInc           = %v", sp.SynPermActiveInc))
	archivist.Info(fmt.Sprintf("synPermInactiveDec         = %v", sp.SynPermInactiveDec))
	archivist.Info(fmt.Sprintf("synPermConnected           = %v", sp.SynPermConnected))
	archivist.Info(fmt.Sprintf("minPctOverlapDutyCycle     = %v", sp.MinPctOverlapDutyCycles))
	archivist.Info(fmt.Sprintf("minPctActiveDutyCycle      = %v", sp.MinPctActiveDutyCycles))
	archivist.Info(fmt.Sprintf("dutyCyclePeriod            = %v", sp.DutyCyclePeriod))
	archivist.Info(fmt.Sprintf("maxBoost                   = %v", sp.MaxBoost))
	archivist.Info(fmt.Sprintf("spVerbosity                = %v", sp.SpVerbosity))
}
