package htm

import (
	"github.com/cznic/mathutil"
)

type SegmentUpdateKind int

const (
	//Reinforce an existing segment and grow it toward previous winners
	UpdateReinforce SegmentUpdateKind = iota
	//Grow a new segment on a cell
	UpdateCreate
	//Weaken a segment that predicted a column that did not activate
	UpdatePunish
)

func (k SegmentUpdateKind) String() string {
	switch k {
	case UpdateReinforce:
		return "reinforce"
	case UpdateCreate:
		return "create"
	case UpdatePunish:
		return "punish"
	}
	return "unknown"
}

/*
 A learning change recorded while cells are activated and applied once the
whole step has been decided. Segment and Ordinal identify the target segment,
a stale pair means the segment was destroyed in the meantime and the update
is dropped. Create updates only carry the Cell.
*/
type SegmentUpdate struct {
	Kind            SegmentUpdateKind
	Segment         int
	Ordinal         uint64
	Cell            int
	NewSynapseCount int
}

func (tm *TemporalMemory) queueReinforce(segment int) {
	data := tm.Connections.segments[segment]
	tm.updates = append(tm.updates, SegmentUpdate{
		Kind:            UpdateReinforce,
		Segment:         segment,
		Ordinal:         data.Ordinal,
		Cell:            data.Cell,
		NewSynapseCount: tm.MaxNewSynapseCount - tm.numActivePotential[segment],
	})
}

func (tm *TemporalMemory) queueCreate(cell int, numPrevWinners int) {
	if numPrevWinners == 0 {
		return
	}
	tm.updates = append(tm.updates, SegmentUpdate{
		Kind:            UpdateCreate,
		Segment:         -1,
		Cell:            cell,
		NewSynapseCount: mathutil.Min(tm.MaxNewSynapseCount, numPrevWinners),
	})
}

func (tm *TemporalMemory) queuePunish(segment int) {
	data := tm.Connections.segments[segment]
	tm.updates = append(tm.updates, SegmentUpdate{
		Kind:    UpdatePunish,
		Segment: segment,
		Ordinal: data.Ordinal,
		Cell:    data.Cell,
	})
}

/*
Applies the queued updates in order against the previous step's active and
winner cells, then clears the queue.
*/
func (tm *TemporalMemory) applySegmentUpdates(prevActive *BitSet, prevWinners []int) {
	conn := tm.Connections
	for _, u := range tm.updates {
		switch u.Kind {
		case UpdateReinforce:
			if !conn.segmentIsLive(u.Segment, u.Ordinal) {
				continue
			}
			tm.adaptSegment(u.Segment, prevActive, tm.PermanenceIncrement, tm.PermanenceDecrement)
			if u.NewSynapseCount > 0 && conn.segmentIsLive(u.Segment, u.Ordinal) {
				tm.growSynapses(u.Segment, prevWinners, u.NewSynapseCount)
			}
		case UpdateCreate:
			seg := conn.CreateSegment(u.Cell)
			tm.growSynapses(seg, prevWinners, u.NewSynapseCount)
			if len(conn.segments[seg].Synapses) == 0 {
				conn.DestroySegment(seg)
			}
		case UpdatePunish:
			if !conn.segmentIsLive(u.Segment, u.Ordinal) {
				continue
			}
			tm.adaptSegment(u.Segment, prevActive, -tm.PredictedSegmentDecrement, 0.0)
		}
	}
	tm.updates = tm.updates[:0]
}
