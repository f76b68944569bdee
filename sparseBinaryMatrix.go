package htm

import (
	"sort"
)

//Items are index of non-zero columns
type SparseRow []int

//Sparse binary matrix stores indexes of non-zero entries in matrix
//to conserve space. Rows is map of non-zero rows indexed by row index,
//each row keeps its column indices sorted.
type SparseBinaryMatrix struct {
	Width  int
	Height int
	rows   map[int]SparseRow
}

func NewSparseBinaryMatrix(height int, width int) *SparseBinaryMatrix {
	m := &SparseBinaryMatrix{}
	m.Height = height
	m.Width = width
	m.rows = make(map[int]SparseRow)
	return m
}

//Set value at row,col position
func (sm *SparseBinaryMatrix) Set(row int, col int, value bool) {
	sm.validateRowCol(row, col)
	r := sm.rows[row]
	i := sort.SearchInts(r, col)
	found := i < len(r) && r[i] == col

	if value {
		if found {
			return
		}
		r = append(r, 0)
		copy(r[i+1:], r[i:])
		r[i] = col
		sm.rows[row] = r
		return
	}

	if !found {
		return
	}
	r = append(r[:i], r[i+1:]...)
	if len(r) == 0 {
		//delete row entry
		delete(sm.rows, row)
	} else {
		sm.rows[row] = r
	}
}

//Returns a rows "on" indices
func (sm *SparseBinaryMatrix) GetRowIndices(row int) []int {
	sm.validateRow(row)
	r := sm.rows[row]
	if len(r) == 0 {
		return nil
	}
	result := make([]int, len(r))
	copy(result, r)
	return result
}

//Returns sorted indices of rows with at least one on entry
func (sm *SparseBinaryMatrix) NonZeroRows() []int {
	result := make([]int, 0, len(sm.rows))
	for r := range sm.rows {
		result = append(result, r)
	}
	sort.Ints(result)
	return result
}

//Clears all entries
func (sm *SparseBinaryMatrix) Clear() {
	sm.rows = make(map[int]SparseRow)
}

func (sm *SparseBinaryMatrix) validateRow(row int) {
	if row < 0 || row >= sm.Height {
		panic("Specified row is out of bounds.")
	}
}

func (sm *SparseBinaryMatrix) validateRowCol(row int, col int) {
	sm.validateRow(row)
	if col < 0 || col >= sm.Width {
		panic("Specified col is out of bounds.")
	}
}
