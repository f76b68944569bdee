package htm

// BitSet is a fixed length bit vector packed into 64 bit words. It backs
// membership tests on input bits and cells where a []bool would be too
// large to clear every step.
type BitSet struct {
	data   []uint64
	length int
}

func NewBitSet(length int) *BitSet {
	return &BitSet{
		data:   make([]uint64, (length+63)/64),
		length: length,
	}
}

//Creates a bitset of the given length with the indices on
func BitSetFromIndices(length int, indices []int) *BitSet {
	s := NewBitSet(length)
	s.SetIndices(indices, true)
	return s
}

func word(i int) int {
	return i / 64
}

func (s *BitSet) At(idx int) bool {
	return s.data[word(idx)]&(1<<uint(idx%64)) != 0
}

func (s *BitSet) Set(idx int, val bool) {
	if val {
		s.data[word(idx)] |= 1 << uint(idx%64)
	} else {
		s.data[word(idx)] &^= 1 << uint(idx%64)
	}
}

func (s *BitSet) SetIndices(indices []int, val bool) {
	for _, idx := range indices {
		s.Set(idx, val)
	}
}
