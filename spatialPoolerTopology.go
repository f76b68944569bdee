package htm

import (
	"sort"

	"github.com/cznic/mathutil"
	"github.com/htm-community/streamhtm/utils"
)

/*
Returns the flat indices of the neighbours of a column that lie within
radius in every dimension, excluding the column itself. With wrapAround
the borders of each dimension are adjacent.
*/
func neighborhood(index int, dimensions []int, radius int, wrapAround bool) []int {
	coords := utils.Unravel(index, dimensions)
	ranges := make([][]int, len(dimensions))

	for i, dim := range dimensions {
		seen := make(map[int]bool, 2*radius+1)
		var r []int
		for c := coords[i] - radius; c <= coords[i]+radius; c++ {
			v := c
			if wrapAround {
				v = utils.Mod(c, dim)
			} else if c < 0 || c >= dim {
				continue
			}
			if !seen[v] {
				seen[v] = true
				r = append(r, v)
			}
		}
		sort.Ints(r)
		ranges[i] = r
	}

	var result []int
	for _, coord := range utils.CartProductInt(ranges) {
		n := utils.Ravel(coord, dimensions)
		if n != index {
			result = append(result, n)
		}
	}
	sort.Ints(result)
	return result
}

/*
Maps a column to the input bit at the centre of its potential pool,
spreading the columns evenly over the input space.
*/
func (sp *SpatialPooler) mapColumn(index int) int {
	columnCoords := utils.Unravel(index, sp.ColumnDimensions)
	inputCoords := make([]int, len(sp.InputDimensions))
	for i := range sp.InputDimensions {
		inDim := float64(sp.InputDimensions[i])
		colDim := 1.0
		cc := 0.0
		if i < len(sp.ColumnDimensions) {
			colDim = float64(sp.ColumnDimensions[i])
			cc = float64(columnCoords[i])
		}
		coord := int(inDim*(cc/colDim) + 0.5*inDim/colDim)
		inputCoords[i] = mathutil.Min(coord, sp.InputDimensions[i]-1)
	}
	return utils.Ravel(inputCoords, sp.InputDimensions)
}

/*
Returns the sorted input indices forming the potential pool of a column:
a random PotentialPct sample of the hypercube of PotentialRadius around the
column's centre input.
*/
func (sp *SpatialPooler) mapPotential(index int) []int {
	center := sp.mapColumn(index)
	indices := neighborhood(center, sp.InputDimensions, sp.PotentialRadius, sp.WrapAround)
	indices = append(indices, center)
	sort.Ints(indices)

	numPotential := int(float64(len(indices))*sp.PotentialPct + 0.5)
	numPotential = mathutil.Max(numPotential, 1)
	if sp.MaxSynapsesPerColumn > 0 {
		numPotential = mathutil.Min(numPotential, sp.MaxSynapsesPerColumn)
	}
	return sp.rng.Sample(indices, numPotential)
}

//Average number of columns per input, missing dimensions count as ones
func (sp *SpatialPooler) avgColumnsPerInput() float64 {
	numDim := mathutil.Max(len(sp.ColumnDimensions), len(sp.InputDimensions))
	total := 0.0
	for i := 0; i < numDim; i++ {
		colDim, inDim := 1.0, 1.0
		if i < len(sp.ColumnDimensions) {
			colDim = float64(sp.ColumnDimensions[i])
		}
		if i < len(sp.InputDimensions) {
			inDim = float64(sp.InputDimensions[i])
		}
		total += colDim / inDim
	}
	return total / float64(numDim)
}

//Span of a column's connected synapses averaged over the input dimensions
func (sp *SpatialPooler) avgConnectedSpanForColumn(index int) float64 {
	connected := sp.connectedSynapses.GetRowIndices(index)
	if len(connected) == 0 {
		return 0
	}

	dims := sp.InputDimensions
	maxCoord := make([]int, len(dims))
	minCoord := make([]int, len(dims))
	for i := range dims {
		maxCoord[i] = -1
		minCoord[i] = utils.MaxSliceInt(dims)
	}

	for _, idx := range connected {
		coords := utils.Unravel(idx, dims)
		for i, c := range coords {
			maxCoord[i] = mathutil.Max(maxCoord[i], c)
			minCoord[i] = mathutil.Min(minCoord[i], c)
		}
	}

	total := 0
	for i := range dims {
		total += maxCoord[i] - minCoord[i] + 1
	}
	return float64(total) / float64(len(dims))
}

/*
Update the inhibition radius. The radius is the average connected span of
a column projected into column space. Meaningless with global inhibition,
where every column is in every neighbourhood.
*/
func (sp *SpatialPooler) updateInhibitionRadius() {
	if sp.GlobalInhibition {
		sp.inhibitionRadius = utils.MaxSliceInt(sp.ColumnDimensions)
		return
	}

	total := 0.0
	for i := 0; i < sp.numColumns; i++ {
		total += sp.avgConnectedSpanForColumn(i)
	}
	avgConnectedSpan := total / float64(sp.numColumns)
	diameter := avgConnectedSpan * sp.avgColumnsPerInput()
	radius := (diameter - 1) / 2.0
	if radius < 1 {
		radius = 1
	}
	sp.inhibitionRadius = int(radius + 0.5)
}
