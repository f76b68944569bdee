package htm

import (
	"fmt"
	"sort"

	"github.com/cznic/mathutil"
	"github.com/voodooEntity/archivist"
)

//Synapses whose permanence falls below this are destroyed
const epsilon = 0.00001

/*
Params for intializing temporal memory
*/
type TemporalMemoryParams struct {
	//Column dimensions
	ColumnDimensions []int
	CellsPerColumn   int
	//If the number of active connected synapses on a segment is at least
	//this threshold, the segment is said to be active.
	ActivationThreshold int
	InitialPermanence   float64
	//If the permanence value for a synapse is greater than this value, it is said
	//to be connected.
	ConnectedPermanence float64
	//If the number of synapses active on a segment is at least this threshold,
	//it is selected as the best matching cell in a bursing column.
	MinThreshold int
	//The maximum number of synapses added to a segment during learning.
	MaxNewSynapseCount  int
	PermanenceIncrement float64
	PermanenceDecrement float64
	//Amount by which segments that predicted an inactive column are punished.
	//Zero disables punishment.
	PredictedSegmentDecrement float64
	MaxSegmentsPerCell        int
	MaxSynapsesPerSegment     int
	//rand seed
	Seed      int
	Verbosity int
}

//Create default temporal memory params
func NewTemporalMemoryParams() TemporalMemoryParams {
	return TemporalMemoryParams{
		ColumnDimensions:          []int{2048},
		CellsPerColumn:            32,
		ActivationThreshold:       13,
		InitialPermanence:         0.21,
		ConnectedPermanence:       0.5,
		MinThreshold:              10,
		MaxNewSynapseCount:        20,
		PermanenceIncrement:       0.10,
		PermanenceDecrement:       0.10,
		PredictedSegmentDecrement: 0.004,
		MaxSegmentsPerCell:        255,
		MaxSynapsesPerSegment:     255,
		Seed:                      42,
	}
}

//Validate returns a *ConfigError describing the first invalid field
func (p TemporalMemoryParams) Validate() error {
	if len(p.ColumnDimensions) == 0 {
		return configErr("ColumnDimensions", "must not be empty")
	}
	for _, d := range p.ColumnDimensions {
		if d <= 0 {
			return configErr("ColumnDimensions", "dimensions must be positive, got %v", p.ColumnDimensions)
		}
	}
	if p.CellsPerColumn <= 0 {
		return configErr("CellsPerColumn", "must be positive, got %d", p.CellsPerColumn)
	}
	if p.ActivationThreshold <= 0 {
		return configErr("ActivationThreshold", "must be positive, got %d", p.ActivationThreshold)
	}
	if p.MinThreshold <= 0 {
		return configErr("MinThreshold", "must be positive, got %d", p.MinThreshold)
	}
	if p.MinThreshold > p.ActivationThreshold {
		return configErr("MinThreshold", "%d exceeds ActivationThreshold %d", p.MinThreshold, p.ActivationThreshold)
	}
	if p.ConnectedPermanence <= 0 || p.ConnectedPermanence > 1 {
		return configErr("ConnectedPermanence", "must be in (0,1], got %v", p.ConnectedPermanence)
	}
	if p.InitialPermanence < 0 || p.InitialPermanence > 1 {
		return configErr("InitialPermanence", "must be in [0,1], got %v", p.InitialPermanence)
	}
	if p.PermanenceIncrement < 0 || p.PermanenceIncrement > 1 {
		return configErr("PermanenceIncrement", "must be in [0,1], got %v", p.PermanenceIncrement)
	}
	if p.PermanenceDecrement < 0 || p.PermanenceDecrement > 1 {
		return configErr("PermanenceDecrement", "must be in [0,1], got %v", p.PermanenceDecrement)
	}
	if p.PredictedSegmentDecrement < 0 || p.PredictedSegmentDecrement > 1 {
		return configErr("PredictedSegmentDecrement", "must be in [0,1], got %v", p.PredictedSegmentDecrement)
	}
	if p.MaxNewSynapseCount <= 0 {
		return configErr("MaxNewSynapseCount", "must be positive, got %d", p.MaxNewSynapseCount)
	}
	if p.MaxSegmentsPerCell <= 0 {
		return configErr("MaxSegmentsPerCell", "must be positive, got %d", p.MaxSegmentsPerCell)
	}
	if p.MaxSynapsesPerSegment <= 0 {
		return configErr("MaxSynapsesPerSegment", "must be positive, got %d", p.MaxSynapsesPerSegment)
	}
	if p.MaxNewSynapseCount > p.MaxSynapsesPerSegment {
		return configErr("MaxNewSynapseCount", "%d exceeds MaxSynapsesPerSegment %d",
			p.MaxNewSynapseCount, p.MaxSynapsesPerSegment)
	}
	return nil
}

//Result of one temporal memory step. All index lists are sorted.
type TemporalMemoryOutput struct {
	ActiveCells     []int
	WinnerCells     []int
	PredictiveCells []int
	//Active columns that held a predictive cell
	PredictedActiveColumns []int
	//Active columns without a predictive cell
	BurstingColumns []int
	//Fraction of active columns that were not predicted
	Anomaly float64
}

/*
Temporal memory
*/
type TemporalMemory struct {
	TemporalMemoryParams
	Connections *TemporalMemoryConnections

	rng *Random

	activeCells        []int
	winnerCells        []int
	activeSegments     []int
	matchingSegments   []int
	numActivePotential []int
	//rows are columns, cols are cells within the column
	predictiveCells *SparseBinaryMatrix

	updates   []SegmentUpdate
	iteration int
}

//Create new temporal memory
func NewTemporalMemory(params TemporalMemoryParams) (*TemporalMemory, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params.ColumnDimensions = append([]int(nil), params.ColumnDimensions...)

	tm := new(TemporalMemory)
	tm.TemporalMemoryParams = params
	tm.Connections = NewTemporalMemoryConnections(params.MaxSegmentsPerCell,
		params.MaxSynapsesPerSegment, params.CellsPerColumn, params.ColumnDimensions)
	tm.rng = NewRandom(int64(params.Seed))
	tm.predictiveCells = NewSparseBinaryMatrix(tm.Connections.NumberOfColumns(), params.CellsPerColumn)

	if tm.Verbosity > 0 {
		tm.printParameters()
	}
	return tm, nil
}

func (tm *TemporalMemory) NumberOfColumns() int {
	return tm.Connections.NumberOfColumns()
}

func (tm *TemporalMemory) NumberOfCells() int {
	return tm.Connections.NumberOfCells()
}

func (tm *TemporalMemory) Iteration() int {
	return tm.iteration
}

func (tm *TemporalMemory) ActiveCells() []int {
	return append([]int(nil), tm.activeCells...)
}

func (tm *TemporalMemory) WinnerCells() []int {
	return append([]int(nil), tm.winnerCells...)
}

//Cells with an active segment, predicted to be active next step
func (tm *TemporalMemory) PredictiveCells() []int {
	var result []int
	for _, col := range tm.predictiveCells.NonZeroRows() {
		for _, i := range tm.predictiveCells.GetRowIndices(col) {
			result = append(result, col*tm.CellsPerColumn+i)
		}
	}
	return result
}

//Columns holding at least one predictive cell
func (tm *TemporalMemory) PredictedColumns() []int {
	return tm.predictiveCells.NonZeroRows()
}

//Sorted distinct columns of sorted cells
func (tm *TemporalMemory) columnsOf(cells []int) []int {
	var result []int
	for _, cell := range cells {
		col := cell / tm.CellsPerColumn
		if len(result) == 0 || result[len(result)-1] != col {
			result = append(result, col)
		}
	}
	return result
}

func (tm *TemporalMemory) ActiveSegments() []int {
	return append([]int(nil), tm.activeSegments...)
}

func (tm *TemporalMemory) MatchingSegments() []int {
	return append([]int(nil), tm.matchingSegments...)
}

/*
 Feeds input record through TM, performing inference and learning.
Active columns are sorted and deduplicated, an out of range column is a
programming error and panics.
*/
func (tm *TemporalMemory) Compute(activeColumns []int, learn bool) TemporalMemoryOutput {
	columns := tm.normalizeColumns(activeColumns)

	tm.iteration++
	tm.Connections.iteration = tm.iteration

	prevActive := BitSetFromIndices(tm.NumberOfCells(), tm.activeCells)
	prevWinners := tm.winnerCells

	out := tm.activateCells(columns, prevWinners, learn)
	if learn {
		tm.applySegmentUpdates(prevActive, prevWinners)
	}

	tm.activeCells = out.ActiveCells
	tm.winnerCells = out.WinnerCells
	tm.activateDendrites(learn)
	out.PredictiveCells = tm.PredictiveCells()

	if tm.Verbosity > 1 {
		tm.printComputeEnd(out, learn)
	}
	return out
}

func (tm *TemporalMemory) normalizeColumns(activeColumns []int) []int {
	columns := append([]int(nil), activeColumns...)
	sort.Ints(columns)
	result := columns[:0]
	for i, c := range columns {
		if c < 0 || c >= tm.NumberOfColumns() {
			panic(fmt.Sprintf("active column %d outside [0,%d)", c, tm.NumberOfColumns()))
		}
		if i > 0 && c == columns[i-1] {
			continue
		}
		result = append(result, c)
	}
	return result
}

/*
Computes active and winner cells for the active columns using the segments
activated on the previous step, queueing learning updates when learn is set.
*/
func (tm *TemporalMemory) activateCells(columns []int, prevWinners []int, learn bool) TemporalMemoryOutput {
	var out TemporalMemoryOutput
	conn := tm.Connections

	activeByColumn := tm.segmentsByColumn(tm.activeSegments)
	matchingByColumn := tm.segmentsByColumn(tm.matchingSegments)
	isActive := make(map[int]bool, len(columns))

	for _, col := range columns {
		isActive[col] = true
		if segs, ok := activeByColumn[col]; ok {
			out.PredictedActiveColumns = append(out.PredictedActiveColumns, col)
			lastCell := -1
			for _, seg := range segs {
				cell := conn.segments[seg].Cell
				if cell != lastCell {
					out.ActiveCells = append(out.ActiveCells, cell)
					out.WinnerCells = append(out.WinnerCells, cell)
					lastCell = cell
				}
				if learn {
					tm.queueReinforce(seg)
				}
			}
			continue
		}

		out.BurstingColumns = append(out.BurstingColumns, col)
		out.ActiveCells = append(out.ActiveCells, conn.CellsForColumn(col)...)

		best := tm.bestMatchingSegment(matchingByColumn[col])
		if best >= 0 {
			out.WinnerCells = append(out.WinnerCells, conn.segments[best].Cell)
			if learn {
				tm.queueReinforce(best)
			}
		} else {
			cell := tm.leastUsedCell(col)
			out.WinnerCells = append(out.WinnerCells, cell)
			if learn {
				tm.queueCreate(cell, len(prevWinners))
			}
		}
	}

	if learn && tm.PredictedSegmentDecrement > 0 {
		for _, seg := range tm.matchingSegments {
			if !isActive[conn.segments[seg].Cell/tm.CellsPerColumn] {
				tm.queuePunish(seg)
			}
		}
	}

	if len(columns) > 0 {
		out.Anomaly = float64(len(out.BurstingColumns)) / float64(len(columns))
	}
	return out
}

//Groups sorted segments by the column of their cell, keeping order
func (tm *TemporalMemory) segmentsByColumn(segments []int) map[int][]int {
	result := make(map[int][]int)
	for _, seg := range segments {
		col := tm.Connections.segments[seg].Cell / tm.CellsPerColumn
		result[col] = append(result[col], seg)
	}
	return result
}

/*
Returns the segment with the most active potential synapses among matching
segments, the first in cell and creation order on ties, or -1.
*/
func (tm *TemporalMemory) bestMatchingSegment(matching []int) int {
	best := -1
	bestScore := -1
	for _, seg := range matching {
		if tm.numActivePotential[seg] > bestScore {
			best = seg
			bestScore = tm.numActivePotential[seg]
		}
	}
	return best
}

/*
Returns the cell of a column with the fewest segments. Ties go to the cell
whose segments were used least recently, then to the lowest index.
*/
func (tm *TemporalMemory) leastUsedCell(column int) int {
	conn := tm.Connections
	result := -1
	minSegments := 0
	minLastUsed := 0

	for _, cell := range conn.CellsForColumn(column) {
		segs := conn.segmentsForCell[cell]
		lastUsed := -1
		for _, s := range segs {
			lastUsed = mathutil.Max(lastUsed, conn.segments[s].LastUsedIteration)
		}
		if result < 0 || len(segs) < minSegments ||
			(len(segs) == minSegments && lastUsed < minLastUsed) {
			result = cell
			minSegments = len(segs)
			minLastUsed = lastUsed
		}
	}
	return result
}

/*
Updates synapse permanences on a segment: synapses to previously active
cells gain inc, the others lose dec. Results are clamped to [0,1] and
synapses that reach zero are destroyed, as is a segment left empty.
*/
func (tm *TemporalMemory) adaptSegment(segment int, prevActive *BitSet, inc, dec float64) {
	conn := tm.Connections
	synapses := append([]int(nil), conn.segments[segment].Synapses...)

	for _, s := range synapses {
		syn := conn.synapses[s]
		perm := syn.Permanence
		if prevActive.At(syn.Presynaptic) {
			perm += inc
		} else {
			perm -= dec
		}
		if perm > 1.0 {
			perm = 1.0
		}
		if perm < epsilon {
			conn.removeSynapse(s)
			continue
		}
		conn.UpdateSynapsePermanence(s, perm)
	}

	if len(conn.segments[segment].Synapses) == 0 {
		conn.DestroySegment(segment)
	}
}

/*
Grows up to n synapses from a segment to candidate cells it is not yet
connected to. When the segment would overflow its cap the weakest synapses
to other cells make room first.
*/
func (tm *TemporalMemory) growSynapses(segment int, candidates []int, n int) {
	conn := tm.Connections

	existing := NewBitSet(conn.NumberOfCells())
	for _, s := range conn.segments[segment].Synapses {
		existing.Set(conn.synapses[s].Presynaptic, true)
	}
	var eligible []int
	for _, c := range candidates {
		if !existing.At(c) {
			eligible = append(eligible, c)
		}
	}
	n = mathutil.Min(n, len(eligible))
	if n <= 0 {
		return
	}

	excluded := BitSetFromIndices(conn.NumberOfCells(), candidates)
	overflow := len(conn.segments[segment].Synapses) + n - tm.MaxSynapsesPerSegment
	for ; overflow > 0; overflow-- {
		weakest := conn.minPermanenceSynapse(segment, excluded)
		if weakest < 0 {
			break
		}
		conn.removeSynapse(weakest)
	}
	n = mathutil.Min(n, tm.MaxSynapsesPerSegment-len(conn.segments[segment].Synapses))

	for _, cell := range tm.rng.Sample(eligible, n) {
		conn.CreateSynapse(segment, cell, tm.InitialPermanence)
	}
}

/*
Computes active and matching segments for the current active cells and
marks the cells owning active segments as predictive. With learn the
active segments are stamped with the current iteration.
*/
func (tm *TemporalMemory) activateDendrites(learn bool) {
	conn := tm.Connections
	numActiveConnected, numActivePotential := conn.computeActivity(tm.activeCells, tm.ConnectedPermanence)

	tm.activeSegments = tm.activeSegments[:0]
	tm.matchingSegments = tm.matchingSegments[:0]
	for seg := range numActivePotential {
		if numActiveConnected[seg] >= tm.ActivationThreshold {
			tm.activeSegments = append(tm.activeSegments, seg)
		}
		if numActivePotential[seg] >= tm.MinThreshold {
			tm.matchingSegments = append(tm.matchingSegments, seg)
		}
	}
	conn.sortSegments(tm.activeSegments)
	conn.sortSegments(tm.matchingSegments)
	tm.numActivePotential = numActivePotential

	tm.predictiveCells.Clear()
	for _, seg := range tm.activeSegments {
		cell := conn.segments[seg].Cell
		tm.predictiveCells.Set(cell/tm.CellsPerColumn, cell%tm.CellsPerColumn, true)
		if learn {
			conn.segments[seg].LastUsedIteration = tm.iteration
		}
	}
}

/*
Clears the sequence state so the next input is treated as the start of a new
sequence. Learned connections are untouched.
*/
func (tm *TemporalMemory) Reset() {
	tm.activeCells = nil
	tm.winnerCells = nil
	tm.activeSegments = nil
	tm.matchingSegments = nil
	tm.numActivePotential = nil
	tm.predictiveCells.Clear()
	tm.updates = nil
}

func (tm *TemporalMemory) printParameters() {
	archivist.Info("------------ TemporalMemory Parameters ------------------")
	archivist.Info(fmt.Sprintf("columnDimensions          = %v", tm.ColumnDimensions))
	archivist.Info(fmt.Sprintf("cellsPerColumn            = %v", tm.CellsPerColumn))
	archivist.Info(fmt.Sprintf("activationThreshold       = %v", tm.ActivationThreshold))
	archivist.Info(fmt.Sprintf("minThreshold              = %v", tm.MinThreshold))
	archivist.Info(fmt.Sprintf("initialPermanence         = %v", tm.InitialPermanence))
	archivist.Info(fmt.Sprintf("connectedPermanence       = %v", tm.ConnectedPermanence))
	archivist.Info(fmt.Sprintf("permanenceIncrement       = %v", tm.PermanenceIncrement))
	archivist.Info(fmt.Sprintf("permanenceDecrement       = %v", tm.PermanenceDecrement))
	archivist.Info(fmt.Sprintf("predictedSegmentDecrement = %v", tm.PredictedSegmentDecrement))
	archivist.Info(fmt.Sprintf("maxNewSynapseCount        = %v", tm.MaxNewSynapseCount))
	archivist.Info(fmt.Sprintf("maxSegmentsPerCell        = %v", tm.MaxSegmentsPerCell))
	archivist.Info(fmt.Sprintf("maxSynapsesPerSegment     = %v", tm.MaxSynapsesPerSegment))
}
