package htm

import (
	"fmt"
	"sort"
)

// SDR is a sparse distributed representation: a fixed width bit vector
// stored as the sorted indices of its on bits.
type SDR struct {
	Width  int
	Sparse []int
}

// NewSDR builds an SDR from on-bit indices. Indices are sorted and
// deduplicated; an index outside [0, width) is an error.
func NewSDR(width int, indices []int) (SDR, error) {
	sparse := make([]int, len(indices))
	copy(sparse, indices)
	sort.Ints(sparse)

	out := sparse[:0]
	for i, idx := range sparse {
		if idx < 0 || idx >= width {
			return SDR{}, fmt.Errorf("htm: sdr index %d out of range [0,%d)", idx, width)
		}
		if i > 0 && idx == sparse[i-1] {
			continue
		}
		out = append(out, idx)
	}
	return SDR{Width: width, Sparse: out}, nil
}

//Creates SDR from a dense bool vector
func NewSDRFromDense(dense []bool) SDR {
	sdr := SDR{Width: len(dense)}
	for idx, val := range dense {
		if val {
			sdr.Sparse = append(sdr.Sparse, idx)
		}
	}
	return sdr
}

func (s SDR) Dense() []bool {
	result := make([]bool, s.Width)
	for _, idx := range s.Sparse {
		result[idx] = true
	}
	return result
}

func (s SDR) BitSet() *BitSet {
	return BitSetFromIndices(s.Width, s.Sparse)
}

func (s SDR) ActiveCount() int {
	return len(s.Sparse)
}

func (s SDR) Sparsity() float64 {
	if s.Width == 0 {
		return 0
	}
	return float64(len(s.Sparse)) / float64(s.Width)
}

//Returns the number of on bits shared with other, both must be sorted
func (s SDR) Overlap(other SDR) int {
	i, j, count := 0, 0, 0
	for i < len(s.Sparse) && j < len(other.Sparse) {
		switch {
		case s.Sparse[i] == other.Sparse[j]:
			count++
			i++
			j++
		case s.Sparse[i] < other.Sparse[j]:
			i++
		default:
			j++
		}
	}
	return count
}

func (s SDR) Equal(other SDR) bool {
	if s.Width != other.Width || len(s.Sparse) != len(other.Sparse) {
		return false
	}
	for i, v := range s.Sparse {
		if other.Sparse[i] != v {
			return false
		}
	}
	return true
}

// checkShape validates the SDR against a declared width and, when
// activeBits > 0, an exact active bit count.
func (s SDR) checkShape(width, activeBits int) error {
	if s.Width != width || (activeBits > 0 && len(s.Sparse) != activeBits) {
		return &InputShapeError{
			Width:          s.Width,
			ExpectedWidth:  width,
			Active:         len(s.Sparse),
			ExpectedActive: activeBits,
		}
	}
	for i, idx := range s.Sparse {
		reason := ""
		switch {
		case idx < 0 || idx >= s.Width:
			reason = fmt.Sprintf("outside width %d", s.Width)
		case i > 0 && idx == s.Sparse[i-1]:
			reason = "is duplicated"
		case i > 0 && idx < s.Sparse[i-1]:
			reason = "is out of order"
		}
		if reason != "" {
			return &InputShapeError{
				Width:          s.Width,
				ExpectedWidth:  width,
				Active:         len(s.Sparse),
				ExpectedActive: activeBits,
				BadIndex:       idx,
				Reason:         reason,
			}
		}
	}
	return nil
}
