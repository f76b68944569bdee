package htm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumColumns(t *testing.T) {
	c := NewTemporalMemoryConnections(255, 255, 32, []int{64, 64})
	assert.Equal(t, 64*64, c.NumberOfColumns())
	assert.Equal(t, 64*64*32, c.NumberOfCells())
}

func TestCellsForColumn(t *testing.T) {
	c := NewTemporalMemoryConnections(255, 255, 4, []int{8})
	assert.Equal(t, []int{12, 13, 14, 15}, c.CellsForColumn(3))
	assert.Equal(t, 3, c.ColumnForCell(14))
	assert.Panics(t, func() { c.CellsForColumn(8) })
	assert.Panics(t, func() { c.ColumnForCell(32) })
}

func TestCreateSegmentAndSynapses(t *testing.T) {
	c := NewTemporalMemoryConnections(255, 255, 4, []int{8})

	seg := c.CreateSegment(5)
	assert.Equal(t, 0, seg)
	s0 := c.CreateSynapse(seg, 1, 0.3)
	s1 := c.CreateSynapse(seg, 2, 0.6)

	assert.Equal(t, []int{seg}, c.SegmentsForCell(5))
	assert.Equal(t, []int{s0, s1}, c.SynapsesForSegment(seg))
	assert.Equal(t, []int{s1}, c.SynapsesForPresynapticCell(2))
	assert.Equal(t, Synapse{Segment: seg, Presynaptic: 1, Permanence: 0.3}, c.DataForSynapse(s0))
	assert.Equal(t, 5, c.DataForSegment(seg).Cell)
	assert.Equal(t, 1, c.NumSegments())
	assert.Equal(t, 2, c.NumSynapses())
	c.checkInvariants()
}

func TestDestroySynapseDestroysEmptySegment(t *testing.T) {
	c := NewTemporalMemoryConnections(255, 255, 4, []int{8})
	seg := c.CreateSegment(0)
	s0 := c.CreateSynapse(seg, 10, 0.5)
	s1 := c.CreateSynapse(seg, 11, 0.5)

	c.DestroySynapse(s0)
	assert.Equal(t, 1, c.NumSegments())
	assert.Empty(t, c.SynapsesForPresynapticCell(10))

	c.DestroySynapse(s1)
	assert.Equal(t, 0, c.NumSegments())
	assert.Equal(t, 0, c.NumSynapses())
	assert.Empty(t, c.SegmentsForCell(0))
	assert.Panics(t, func() { c.DataForSegment(seg) })
	c.checkInvariants()
}

func TestFreedSlotsAreReused(t *testing.T) {
	c := NewTemporalMemoryConnections(255, 255, 4, []int{8})
	seg := c.CreateSegment(0)
	c.CreateSynapse(seg, 10, 0.5)
	first := c.DataForSegment(seg).Ordinal
	c.DestroySegment(seg)

	again := c.CreateSegment(3)
	assert.Equal(t, seg, again)
	assert.NotEqual(t, first, c.DataForSegment(again).Ordinal)
	assert.False(t, c.segmentIsLive(seg, first))
	assert.True(t, c.segmentIsLive(again, c.DataForSegment(again).Ordinal))
}

func TestCreateSegmentEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewTemporalMemoryConnections(2, 255, 4, []int{8})

	c.iteration = 1
	older := c.CreateSegment(0)
	c.CreateSynapse(older, 10, 0.5)
	c.iteration = 2
	newer := c.CreateSegment(0)
	c.CreateSynapse(newer, 11, 0.5)

	//older becomes the most recently used
	c.segments[older].LastUsedIteration = 5

	c.iteration = 6
	third := c.CreateSegment(0)
	assert.Len(t, c.SegmentsForCell(0), 2)
	assert.Equal(t, third, newer)
	assert.Equal(t, 10, c.DataForSynapse(c.SynapsesForSegment(older)[0]).Presynaptic)
	assert.Empty(t, c.SynapsesForPresynapticCell(11))
	c.checkInvariants()
}

func TestCreateSynapseEvictsWeakest(t *testing.T) {
	c := NewTemporalMemoryConnections(255, 3, 4, []int{8})
	seg := c.CreateSegment(0)
	c.CreateSynapse(seg, 10, 0.5)
	c.CreateSynapse(seg, 11, 0.1)
	c.CreateSynapse(seg, 12, 0.7)
	c.CreateSynapse(seg, 13, 0.3)

	require.Len(t, c.SynapsesForSegment(seg), 3)
	var presyn []int
	for _, s := range c.SynapsesForSegment(seg) {
		presyn = append(presyn, c.DataForSynapse(s).Presynaptic)
	}
	assert.ElementsMatch(t, []int{10, 12, 13}, presyn)
	c.checkInvariants()
}

func TestPermanenceOutOfRangePanics(t *testing.T) {
	c := NewTemporalMemoryConnections(255, 255, 4, []int{8})
	seg := c.CreateSegment(0)
	syn := c.CreateSynapse(seg, 10, 0.5)

	assert.Panics(t, func() { c.CreateSynapse(seg, 11, 1.5) })
	assert.Panics(t, func() { c.UpdateSynapsePermanence(syn, -0.1) })
	assert.Panics(t, func() { c.DataForSynapse(99) })
	assert.Panics(t, func() { c.CreateSegment(32) })
}

func TestComputeActivity(t *testing.T) {
	c := NewTemporalMemoryConnections(255, 255, 32, []int{2048})

	s0 := c.CreateSegment(0)
	c.CreateSynapse(s0, 23, 0.6)
	c.CreateSynapse(s0, 37, 0.4)
	c.CreateSynapse(s0, 477, 0.9)
	s1 := c.CreateSegment(1)
	c.CreateSynapse(s1, 733, 0.7)
	s2 := c.CreateSegment(8)
	c.CreateSynapse(s2, 486, 0.9)

	connected, potential := c.computeActivity([]int{23, 37, 733, 4973}, 0.5)
	assert.Equal(t, []int{1, 1, 0}, connected)
	assert.Equal(t, []int{2, 1, 0}, potential)

	connected, potential = c.computeActivity(nil, 0.5)
	assert.Equal(t, []int{0, 0, 0}, connected)
	assert.Equal(t, []int{0, 0, 0}, potential)
}

func TestSortSegments(t *testing.T) {
	c := NewTemporalMemoryConnections(255, 255, 4, []int{8})
	a := c.CreateSegment(9)
	b := c.CreateSegment(2)
	d := c.CreateSegment(9)

	segs := []int{d, a, b}
	c.sortSegments(segs)
	assert.Equal(t, []int{b, a, d}, segs)
}
