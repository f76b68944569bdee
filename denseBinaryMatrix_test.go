package htm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

//Tests getting/setting values
func TestDenseGetSet(t *testing.T) {

	sm := NewDenseBinaryMatrix(10, 10)
	sm.Set(2, 4, true)
	sm.Set(6, 5, true)
	sm.Set(7, 5, false)

	if !sm.Get(2, 4) {
		t.Errorf("Was false expected true @ [2,4]")
	}

	if !sm.Get(6, 5) {
		t.Errorf("Was false expected true @ [6,5]")
	}

	if sm.Get(7, 5) {
		t.Errorf("Was true expected false @ [7,5]")
	}

}

func TestDenseReplaceRowByIndices(t *testing.T) {
	sm := NewDenseBinaryMatrix(10, 10)

	indices := make([]int, 3)
	indices[0] = 3
	indices[1] = 9
	indices[2] = 6
	sm.ReplaceRowByIndices(4, indices)

	if !sm.Get(4, 3) {
		t.Errorf("Was false expected true @ [4,3]")
	}

	if !sm.Get(4, 9) {
		t.Errorf("Was false expected true @ [4,9]")
	}

	if !sm.Get(4, 6) {
		t.Errorf("Was false expected true @ [4,6]")
	}

	if sm.Get(4, 5) {
		t.Errorf("Was true expected false @ [4,5]")
	}

	if sm.Get(4, 0) {
		t.Errorf("Was true expected false @ [4,0]")
	}

	indices = make([]int, 3)
	indices[0] = 4

	sm.ReplaceRowByIndices(4, indices)
	if sm.Get(4, 3) {
		t.Errorf("Was true expected false @ [4,3]")
	}

	if sm.Get(4, 9) {
		t.Errorf("Was true expected false @ [4,9]")
	}

	if !sm.Get(4, 4) {
		t.Errorf("Was false expected true @ [4,4]")
	}

}

func TestDenseGetRowIndices(t *testing.T) {
	sm := NewDenseBinaryMatrix(10, 10)

	indices := make([]int, 3)
	indices[0] = 3
	indices[1] = 6
	indices[2] = 9
	sm.ReplaceRowByIndices(4, indices)

	indResult := sm.GetRowIndices(4)

	if len(indResult) != len(indices) {
		t.Errorf("Len was %v expected %v", len(indResult), len(indices))
	}

	t.Log("len", len(indResult))
	t.Log("indResult", indResult)

	for i := 0; i < 3; i++ {
		if indResult[i] != indices[i] {
			t.Errorf("Was %v expected %v", indResult, indices)
		}
	}

}

func TestDenseRowAndSumSparse(t *testing.T) {
	sm := NewDenseBinaryMatrix(3, 5)
	sm.ReplaceRowByIndices(0, []int{0, 2, 3})
	sm.ReplaceRowByIndices(1, []int{3})
	sm.ReplaceRowByIndices(2, []int{0, 1, 2, 3, 4})

	assert.Equal(t, []int{2, 1, 2}, sm.RowAndSumSparse([]int{0, 3}))
	assert.Equal(t, []int{3, 1, 5}, sm.RowAndSumSparse([]int{0, 1, 2, 3, 4}))
	assert.Equal(t, 3, sm.RowCount(0))
	assert.Equal(t, 0, NewDenseBinaryMatrix(3, 5).RowCount(1))
}

func TestDenseOutOfBoundsPanics(t *testing.T) {
	sm := NewDenseBinaryMatrix(3, 3)

	assert.Panics(t, func() { sm.Get(3, 0) })
	assert.Panics(t, func() { sm.Set(0, -1, true) })
	assert.Panics(t, func() { sm.GetRowIndices(-1) })
}
