//
// Code related to temporal memory printing
//

package htm

import (
	"fmt"
	"strings"

	"github.com/voodooEntity/archivist"
)

type SegmentStats struct {
	NumSegments       int
	NumSynapses       int
	NumActiveSegments int
	NumActiveSynapses int
	//histograms keyed by segment size, segments per cell, permanence*10
	//and age bucket
	DistSegSizes       map[int]int
	DistNumSegsPerCell map[int]int
	DistPermValues     map[int]int
	DistAges           map[int]int
}

/*
Returns information about the distribution of segments, synapses and
permanence values in the current TM. If requested, also returns information
regarding the number of currently active segments and synapses.
*/
func (tm *TemporalMemory) CalcSegmentStats(collectActiveData bool) SegmentStats {
	result := SegmentStats{
		DistSegSizes:       make(map[int]int),
		DistNumSegsPerCell: make(map[int]int),
		DistPermValues:     make(map[int]int),
		DistAges:           make(map[int]int),
	}
	conn := tm.Connections

	numAgeBuckets := 20
	ageBucketSize := (tm.iteration + numAgeBuckets) / numAgeBuckets

	var active *BitSet
	var activeSegment map[int]bool
	if collectActiveData {
		active = BitSetFromIndices(conn.NumberOfCells(), tm.activeCells)
		activeSegment = make(map[int]bool, len(tm.activeSegments))
		for _, s := range tm.activeSegments {
			activeSegment[s] = true
		}
	}

	for _, segs := range conn.segmentsForCell {
		result.NumSegments += len(segs)
		result.DistNumSegsPerCell[len(segs)]++

		for _, s := range segs {
			seg := conn.segments[s]
			result.NumSynapses += len(seg.Synapses)
			result.DistSegSizes[len(seg.Synapses)]++

			for _, syn := range seg.Synapses {
				data := conn.synapses[syn]
				result.DistPermValues[int(data.Permanence*10)]++
				if collectActiveData && active.At(data.Presynaptic) {
					result.NumActiveSynapses++
				}
			}

			age := tm.iteration - seg.LastUsedIteration
			result.DistAges[age/ageBucketSize]++

			if collectActiveData && activeSegment[s] {
				result.NumActiveSegments++
			}
		}
	}

	return result
}

/*
 Formats a sorted list of cells as [column, cellIdx] pairs.
*/
func (tm *TemporalMemory) formatCells(cells []int) string {
	if len(cells) == 0 {
		return "None"
	}
	var sb strings.Builder
	for _, cell := range cells {
		fmt.Fprintf(&sb, "[%v,%v]", cell/tm.CellsPerColumn, cell%tm.CellsPerColumn)
	}
	return sb.String()
}

/*
	Prints a cells information
*/
func (tm *TemporalMemory) printCell(cell int, onlyActiveSegments bool) {
	conn := tm.Connections
	segs := conn.SegmentsForCell(cell)
	if len(segs) == 0 {
		return
	}

	activeSegment := make(map[int]bool, len(tm.activeSegments))
	for _, s := range tm.activeSegments {
		activeSegment[s] = true
	}

	archivist.Debug(fmt.Sprintf("Column: %v Cell: %v - %v segment(s)",
		cell/tm.CellsPerColumn, cell%tm.CellsPerColumn, len(segs)))
	for _, s := range segs {
		isActive := activeSegment[s]
		if onlyActiveSegments && !isActive {
			continue
		}
		str := " "
		if isActive {
			str = "*"
		}
		seg := conn.segments[s]
		var sb strings.Builder
		fmt.Fprintf(&sb, "%vSeg: %v lastUsed=%v", str, s, seg.LastUsedIteration)
		for _, syn := range seg.Synapses {
			data := conn.synapses[syn]
			fmt.Fprintf(&sb, " [%v,%.2f]", data.Presynaptic, data.Permanence)
		}
		archivist.Debug(sb.String())
	}
}

/*
 Print all cell information
*/
func (tm *TemporalMemory) printCells(predictedOnly bool) {
	if predictedOnly {
		archivist.Debug("--- PREDICTED CELLS ---")
	} else {
		archivist.Debug("--- ALL CELLS ---")
	}

	archivist.Debug(fmt.Sprintf("Activation threshold: %v", tm.ActivationThreshold))
	archivist.Debug(fmt.Sprintf("min threshold: %v", tm.MinThreshold))
	archivist.Debug(fmt.Sprintf("connected perm: %v", tm.ConnectedPermanence))

	if predictedOnly {
		for _, cell := range tm.PredictiveCells() {
			tm.printCell(cell, true)
		}
		return
	}
	for cell := 0; cell < tm.NumberOfCells(); cell++ {
		tm.printCell(cell, false)
	}
}

/*
 Called at the end of compute to print out various diagnostic
information based on the current verbosity level.
*/
func (tm *TemporalMemory) printComputeEnd(out TemporalMemoryOutput, learn bool) {
	if tm.Verbosity < 3 {
		if tm.Verbosity >= 2 {
			archivist.DebugF("tm iteration %d learn %v active cells %d bursting %v",
				tm.iteration, learn, len(out.ActiveCells), out.BurstingColumns)
		}
		return
	}

	archivist.Debug("----- computeEnd summary: ")
	archivist.Debug(fmt.Sprintf("learn: %v", learn))
	archivist.Debug(fmt.Sprintf("numBurstingCols: %v", len(out.BurstingColumns)))
	archivist.Debug(fmt.Sprintf("anomaly: %v", out.Anomaly))

	stats := tm.CalcSegmentStats(true)
	archivist.Debug(fmt.Sprintf("numSegments %v numSynapses %v activeSegments %v",
		stats.NumSegments, stats.NumSynapses, stats.NumActiveSegments))

	archivist.Debug(fmt.Sprintf("----- activeCells (%v on) ------", len(out.ActiveCells)))
	archivist.Debug(tm.formatCells(out.ActiveCells))
	archivist.Debug(fmt.Sprintf("----- winnerCells (%v on) ------", len(out.WinnerCells)))
	archivist.Debug(tm.formatCells(out.WinnerCells))
	archivist.Debug(fmt.Sprintf("----- predictiveCells (%v on)-----", len(out.PredictiveCells)))
	archivist.Debug(tm.formatCells(out.PredictiveCells))

	if tm.Verbosity == 4 {
		archivist.Debug("Cells, predicted segments only:")
		tm.printCells(true)
	} else if tm.Verbosity >= 5 {
		archivist.Debug("Cells, all segments:")
		tm.printCells(false)
	}
}
