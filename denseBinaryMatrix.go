package htm

import (
	"github.com/htm-community/streamhtm/utils"
)

//Dense binary matrix stores every entry of a row major bool matrix. The
//spatial pooler keeps its potential pools and connected synapses in one,
//rows are columns and cols are input bits.
type DenseBinaryMatrix struct {
	Width   int
	Height  int
	entries []bool
}

//Create new dense binary matrix of specified size
func NewDenseBinaryMatrix(height, width int) *DenseBinaryMatrix {
	m := &DenseBinaryMatrix{}
	m.Height = height
	m.Width = width
	m.entries = make([]bool, width*height)
	return m
}

//Get value at row,col position
func (sm *DenseBinaryMatrix) Get(row int, col int) bool {
	sm.validateRowCol(row, col)
	return sm.entries[row*sm.Width+col]
}

//Set value at row,col position
func (sm *DenseBinaryMatrix) Set(row int, col int, value bool) {
	sm.validateRowCol(row, col)
	sm.entries[row*sm.Width+col] = value
}

//Replaces row with true values at specified indices
func (sm *DenseBinaryMatrix) ReplaceRowByIndices(row int, indices []int) {
	sm.validateRow(row)
	start := row * sm.Width
	utils.FillSliceBool(sm.entries[start:start+sm.Width], false)
	for _, i := range indices {
		sm.entries[start+i] = true
	}
}

//Returns a rows "on" indices
func (sm *DenseBinaryMatrix) GetRowIndices(row int) []int {
	sm.validateRow(row)
	var result []int
	start := row * sm.Width
	for i := 0; i < sm.Width; i++ {
		if sm.entries[start+i] {
			result = append(result, i)
		}
	}
	return result
}

//Returns number of on entries in row
func (sm *DenseBinaryMatrix) RowCount(row int) int {
	sm.validateRow(row)
	return utils.CountTrue(sm.entries[row*sm.Width : (row+1)*sm.Width])
}

//Number of on entries of every row among the input's on bits
func (sm *DenseBinaryMatrix) RowAndSumSparse(onBits []int) []int {
	result := make([]int, sm.Height)
	for r := 0; r < sm.Height; r++ {
		start := r * sm.Width
		for _, c := range onBits {
			if sm.entries[start+c] {
				result[r]++
			}
		}
	}
	return result
}

func (sm *DenseBinaryMatrix) validateRow(row int) {
	if row < 0 || row >= sm.Height {
		panic("Specified row is out of bounds.")
	}
}

func (sm *DenseBinaryMatrix) validateRowCol(row int, col int) {
	sm.validateRow(row)
	if col < 0 || col >= sm.Width {
		panic("Specified col is out of bounds.")
	}
}
