package htm

//Synapse links a segment to a presynaptic cell
type Synapse struct {
	Segment     int
	Presynaptic int
	Permanence  float64
}

func (s Synapse) destroyed() bool {
	return s.Segment < 0
}

/*
Segment is a dendrite segment owned by one cell, holding indices into the
connections' synapse arena. LastUsedIteration drives least recently used
eviction and Ordinal gives segments a stable creation order.
*/
type Segment struct {
	Cell              int
	Synapses          []int
	LastUsedIteration int
	Ordinal           uint64
}

func (s Segment) destroyed() bool {
	return s.Cell < 0
}

//Orders segments by owning cell then creation order
type segmentsByCell struct {
	ids  []int
	conn *TemporalMemoryConnections
}

func (s segmentsByCell) Len() int {
	return len(s.ids)
}

func (s segmentsByCell) Swap(i, j int) {
	s.ids[i], s.ids[j] = s.ids[j], s.ids[i]
}

func (s segmentsByCell) Less(i, j int) bool {
	a := &s.conn.segments[s.ids[i]]
	b := &s.conn.segments[s.ids[j]]
	if a.Cell != b.Cell {
		return a.Cell < b.Cell
	}
	return a.Ordinal < b.Ordinal
}
