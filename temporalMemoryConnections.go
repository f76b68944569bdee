package htm

import (
	"fmt"
	"math"
	"sort"

	"github.com/htm-community/streamhtm/utils"
)

/*
 Structure holds data representing the connectivity of a layer of cells,
that the TM operates on. Segments and synapses live in flat arenas and
reference each other by index, destroyed slots are recycled through free
lists.
*/
type TemporalMemoryConnections struct {
	ColumnDimensions      []int
	CellsPerColumn        int
	MaxSegmentsPerCell    int
	MaxSynapsesPerSegment int

	segments []Segment
	synapses []Synapse

	freeSegments []int
	freeSynapses []int

	segmentsForCell            [][]int
	synapsesForPresynapticCell [][]int
	numColumns                 int
	numSegments                int
	numSynapses                int
	nextOrdinal                uint64
	iteration                  int
}

//Create a new temporal memory connections object
func NewTemporalMemoryConnections(maxSegmentsPerCell, maxSynapsesPerSegment, cellsPerColumn int,
	colDimensions []int) *TemporalMemoryConnections {
	if len(colDimensions) < 1 {
		panic("Column dimensions must be greater than 0")
	}
	if cellsPerColumn < 1 {
		panic("Number of cells per column must be greater than 0")
	}
	if maxSegmentsPerCell < 1 || maxSynapsesPerSegment < 1 {
		panic("Segment and synapse caps must be greater than 0")
	}

	c := new(TemporalMemoryConnections)
	c.ColumnDimensions = append([]int(nil), colDimensions...)
	c.CellsPerColumn = cellsPerColumn
	c.MaxSegmentsPerCell = maxSegmentsPerCell
	c.MaxSynapsesPerSegment = maxSynapsesPerSegment
	c.numColumns = utils.ProdInt(colDimensions)

	numCells := c.numColumns * cellsPerColumn
	c.segmentsForCell = make([][]int, numCells)
	c.synapsesForPresynapticCell = make([][]int, numCells)
	return c
}

func (c *TemporalMemoryConnections) NumberOfColumns() int {
	return c.numColumns
}

func (c *TemporalMemoryConnections) NumberOfCells() int {
	return c.numColumns * c.CellsPerColumn
}

//Number of live segments
func (c *TemporalMemoryConnections) NumSegments() int {
	return c.numSegments
}

//Number of live synapses
func (c *TemporalMemoryConnections) NumSynapses() int {
	return c.numSynapses
}

//Returns the index of the column that a cell belongs to
func (c *TemporalMemoryConnections) ColumnForCell(cell int) int {
	c.validateCell(cell)
	return cell / c.CellsPerColumn
}

//Returns the indices of cells that belong to a column
func (c *TemporalMemoryConnections) CellsForColumn(column int) []int {
	c.validateColumn(column)
	start := c.CellsPerColumn * column
	result := make([]int, c.CellsPerColumn)
	for i := range result {
		result[i] = start + i
	}
	return result
}

//Returns the live segments on a cell in creation order
func (c *TemporalMemoryConnections) SegmentsForCell(cell int) []int {
	c.validateCell(cell)
	return c.segmentsForCell[cell]
}

//Returns the synapses on a segment
func (c *TemporalMemoryConnections) SynapsesForSegment(segment int) []int {
	c.validateSegment(segment)
	return c.segments[segment].Synapses
}

//Returns the synapses whose presynaptic cell is cell
func (c *TemporalMemoryConnections) SynapsesForPresynapticCell(cell int) []int {
	c.validateCell(cell)
	return c.synapsesForPresynapticCell[cell]
}

//Returns the data for a synapse
func (c *TemporalMemoryConnections) DataForSynapse(synapse int) Synapse {
	c.validateSynapse(synapse)
	return c.synapses[synapse]
}

//Returns the data for a segment
func (c *TemporalMemoryConnections) DataForSegment(segment int) Segment {
	c.validateSegment(segment)
	return c.segments[segment]
}

//True if segment refers to a live segment created with ordinal
func (c *TemporalMemoryConnections) segmentIsLive(segment int, ordinal uint64) bool {
	return segment >= 0 && segment < len(c.segments) &&
		!c.segments[segment].destroyed() && c.segments[segment].Ordinal == ordinal
}

/*
Adds a new segment on a cell. A cell already at MaxSegmentsPerCell first
loses its least recently used segment.
*/
func (c *TemporalMemoryConnections) CreateSegment(cell int) int {
	c.validateCell(cell)

	for len(c.segmentsForCell[cell]) >= c.MaxSegmentsPerCell {
		c.DestroySegment(c.leastRecentlyUsedSegment(cell))
	}

	seg := Segment{
		Cell:              cell,
		LastUsedIteration: c.iteration,
		Ordinal:           c.nextOrdinal,
	}
	c.nextOrdinal++

	var idx int
	if n := len(c.freeSegments); n > 0 {
		idx = c.freeSegments[n-1]
		c.freeSegments = c.freeSegments[:n-1]
		c.segments[idx] = seg
	} else {
		idx = len(c.segments)
		c.segments = append(c.segments, seg)
	}

	c.segmentsForCell[cell] = append(c.segmentsForCell[cell], idx)
	c.numSegments++
	return idx
}

func (c *TemporalMemoryConnections) leastRecentlyUsedSegment(cell int) int {
	result := -1
	for _, s := range c.segmentsForCell[cell] {
		if result < 0 || c.segments[s].LastUsedIteration < c.segments[result].LastUsedIteration {
			result = s
		}
	}
	return result
}

//Destroys a segment and all of its synapses
func (c *TemporalMemoryConnections) DestroySegment(segment int) {
	c.validateSegment(segment)
	seg := &c.segments[segment]

	for _, syn := range seg.Synapses {
		c.unlinkPresynaptic(syn)
		c.synapses[syn] = Synapse{Segment: -1, Presynaptic: -1}
		c.freeSynapses = append(c.freeSynapses, syn)
		c.numSynapses--
	}

	c.segmentsForCell[seg.Cell] = removeInt(c.segmentsForCell[seg.Cell], segment)
	c.segments[segment] = Segment{Cell: -1}
	c.freeSegments = append(c.freeSegments, segment)
	c.numSegments--
}

/*
Creates a new synapse on a segment. A segment already at
MaxSynapsesPerSegment first loses its lowest permanence synapse.
*/
func (c *TemporalMemoryConnections) CreateSynapse(segment int, presynaptic int, permanence float64) int {
	c.validateSegment(segment)
	c.validateCell(presynaptic)
	checkPermanence(permanence)

	if len(c.segments[segment].Synapses) >= c.MaxSynapsesPerSegment {
		c.removeSynapse(c.minPermanenceSynapse(segment, nil))
	}

	syn := Synapse{Segment: segment, Presynaptic: presynaptic, Permanence: permanence}
	var idx int
	if n := len(c.freeSynapses); n > 0 {
		idx = c.freeSynapses[n-1]
		c.freeSynapses = c.freeSynapses[:n-1]
		c.synapses[idx] = syn
	} else {
		idx = len(c.synapses)
		c.synapses = append(c.synapses, syn)
	}

	c.segments[segment].Synapses = append(c.segments[segment].Synapses, idx)
	c.synapsesForPresynapticCell[presynaptic] = append(c.synapsesForPresynapticCell[presynaptic], idx)
	c.numSynapses++

	if len(c.segments[segment].Synapses) > c.MaxSynapsesPerSegment {
		panic(fmt.Sprintf("segment %d exceeds %d synapses", segment, c.MaxSynapsesPerSegment))
	}
	return idx
}

/*
Returns the synapse with the lowest permanence on a segment, ties going to
the oldest. Synapses to cells in exclude are skipped. Returns -1 when
nothing qualifies.
*/
func (c *TemporalMemoryConnections) minPermanenceSynapse(segment int, exclude *BitSet) int {
	result := -1
	minPerm := math.Inf(1)
	for _, s := range c.segments[segment].Synapses {
		syn := &c.synapses[s]
		if exclude != nil && exclude.At(syn.Presynaptic) {
			continue
		}
		if syn.Permanence < minPerm {
			minPerm = syn.Permanence
			result = s
		}
	}
	return result
}

//Destroys a synapse, destroying its segment too when it was the last one
func (c *TemporalMemoryConnections) DestroySynapse(synapse int) {
	c.validateSynapse(synapse)
	segment := c.synapses[synapse].Segment
	c.removeSynapse(synapse)
	if len(c.segments[segment].Synapses) == 0 {
		c.DestroySegment(segment)
	}
}

func (c *TemporalMemoryConnections) removeSynapse(synapse int) {
	c.validateSynapse(synapse)
	segment := c.synapses[synapse].Segment
	c.unlinkPresynaptic(synapse)
	c.segments[segment].Synapses = removeInt(c.segments[segment].Synapses, synapse)
	c.synapses[synapse] = Synapse{Segment: -1, Presynaptic: -1}
	c.freeSynapses = append(c.freeSynapses, synapse)
	c.numSynapses--
}

func (c *TemporalMemoryConnections) unlinkPresynaptic(synapse int) {
	pre := c.synapses[synapse].Presynaptic
	c.synapsesForPresynapticCell[pre] = removeInt(c.synapsesForPresynapticCell[pre], synapse)
}

//Updates the permanence for a synapse
func (c *TemporalMemoryConnections) UpdateSynapsePermanence(synapse int, permanence float64) {
	c.validateSynapse(synapse)
	checkPermanence(permanence)
	c.synapses[synapse].Permanence = permanence
}

/*
Counts, for every segment slot, the synapses to active presynaptic cells
that are connected and the ones that merely exist.
*/
func (c *TemporalMemoryConnections) computeActivity(activeCells []int,
	connectedPermanence float64) (numActiveConnected []int, numActivePotential []int) {
	numActiveConnected = make([]int, len(c.segments))
	numActivePotential = make([]int, len(c.segments))

	for _, cell := range activeCells {
		for _, s := range c.synapsesForPresynapticCell[cell] {
			syn := &c.synapses[s]
			numActivePotential[syn.Segment]++
			if syn.Permanence >= connectedPermanence-epsilon {
				numActiveConnected[syn.Segment]++
			}
		}
	}
	return numActiveConnected, numActivePotential
}

//Sorts segment indices by owning cell then creation order
func (c *TemporalMemoryConnections) sortSegments(segments []int) {
	sort.Sort(segmentsByCell{segments, c})
}

/*
Walks the whole arena and panics on the first broken invariant: out of
range permanences, caps exceeded or links that do not agree.
*/
func (c *TemporalMemoryConnections) checkInvariants() {
	liveSegments := 0
	for cell, segs := range c.segmentsForCell {
		if len(segs) > c.MaxSegmentsPerCell {
			panic(fmt.Sprintf("cell %d has %d segments, cap is %d", cell, len(segs), c.MaxSegmentsPerCell))
		}
		for _, s := range segs {
			seg := c.segments[s]
			if seg.Cell != cell {
				panic(fmt.Sprintf("segment %d listed on cell %d but owned by %d", s, cell, seg.Cell))
			}
			if len(seg.Synapses) > c.MaxSynapsesPerSegment {
				panic(fmt.Sprintf("segment %d has %d synapses, cap is %d", s, len(seg.Synapses), c.MaxSynapsesPerSegment))
			}
			for _, syn := range seg.Synapses {
				data := c.synapses[syn]
				if data.Segment != s {
					panic(fmt.Sprintf("synapse %d listed on segment %d but owned by %d", syn, s, data.Segment))
				}
				checkPermanence(data.Permanence)
			}
			liveSegments++
		}
	}
	if liveSegments != c.numSegments {
		panic(fmt.Sprintf("segment count %d does not match %d live segments", c.numSegments, liveSegments))
	}

	liveSynapses := 0
	for cell, syns := range c.synapsesForPresynapticCell {
		for _, syn := range syns {
			if c.synapses[syn].Presynaptic != cell {
				panic(fmt.Sprintf("synapse %d listed on presynaptic cell %d", syn, cell))
			}
			liveSynapses++
		}
	}
	if liveSynapses != c.numSynapses {
		panic(fmt.Sprintf("synapse count %d does not match %d live synapses", c.numSynapses, liveSynapses))
	}
}

func checkPermanence(permanence float64) {
	if math.IsNaN(permanence) || permanence < 0 || permanence > 1 {
		panic(fmt.Sprintf("permanence %v outside [0,1]", permanence))
	}
}

//Removes the first occurrence of v, keeping order
func removeInt(values []int, v int) []int {
	for i, val := range values {
		if val == v {
			return append(values[:i], values[i+1:]...)
		}
	}
	panic(fmt.Sprintf("dangling index %d", v))
}

func (c *TemporalMemoryConnections) validateColumn(column int) {
	if column < 0 || column >= c.numColumns {
		panic("Invalid column")
	}
}

func (c *TemporalMemoryConnections) validateCell(cell int) {
	if cell < 0 || cell >= c.NumberOfCells() {
		panic("Invalid cell")
	}
}

func (c *TemporalMemoryConnections) validateSegment(segment int) {
	if segment < 0 || segment >= len(c.segments) || c.segments[segment].destroyed() {
		panic(fmt.Sprintf("Invalid segment %d", segment))
	}
}

func (c *TemporalMemoryConnections) validateSynapse(synapse int) {
	if synapse < 0 || synapse >= len(c.synapses) || c.synapses[synapse].destroyed() {
		panic(fmt.Sprintf("Invalid synapse %d", synapse))
	}
}
