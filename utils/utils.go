package utils

import (
	"math"
	"sort"
)

//Euclidean modulous
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

//Populates integer slice with index values
func FillSliceWithIdxInt(values []int) {
	for i := range values {
		values[i] = i
	}
}

//Populates float64 slice with specified value
func FillSliceFloat64(values []float64, value float64) {
	for i := range values {
		values[i] = value
	}
}

//Populates bool slice with specified value
func FillSliceBool(values []bool, value bool) {
	for i := range values {
		values[i] = value
	}
}

//Populates bool slice range with specified value
func FillSliceRangeBool(values []bool, value bool, start, length int) {
	for i := 0; i < length; i++ {
		values[start+i] = value
	}
}

//Returns the subset of values specified by indices
func SubsetSliceFloat64(values []float64, indices []int) []float64 {
	result := make([]float64, len(indices))
	for i, val := range indices {
		result[i] = values[val]
	}
	return result
}

//Returns cartesian product of specified
//2d array
func CartProductInt(values [][]int) [][]int {
	if len(values) == 0 {
		return nil
	}
	for _, v := range values {
		if len(v) == 0 {
			return nil
		}
	}

	pos := make([]int, len(values))
	var result [][]int

	for pos[0] < len(values[0]) {
		temp := make([]int, len(values))
		for j := 0; j < len(values); j++ {
			temp[j] = values[j][pos[j]]
		}
		result = append(result, temp)
		pos[len(values)-1]++
		for k := len(values) - 1; k >= 1; k-- {
			if pos[k] >= len(values[k]) {
				pos[k] = 0
				pos[k-1]++
			} else {
				break
			}
		}
	}
	return result
}

//Searches int slice for specified integer
func ContainsInt(q int, vals []int) bool {
	for _, val := range vals {
		if val == q {
			return true
		}
	}
	return false
}

//Searches sorted int slice for specified integer
func SortedContainsInt(q int, sorted []int) bool {
	i := sort.SearchInts(sorted, q)
	return i < len(sorted) && sorted[i] == q
}

//Returns max value from specified int slice
func MaxSliceInt(values []int) int {
	max := 0
	for i := 0; i < len(values); i++ {
		if values[i] > max {
			max = values[i]
		}
	}
	return max
}

//Returns product of set of integers, 0 for an empty set
func ProdInt(vals []int) int {
	if len(vals) == 0 {
		return 0
	}
	prod := 1
	for x := 0; x < len(vals); x++ {
		prod *= vals[x]
	}
	return prod
}

//Converts a flat index into coordinates for row-major dimensions
func Unravel(index int, dims []int) []int {
	coords := make([]int, len(dims))
	for i := len(dims) - 1; i >= 0; i-- {
		coords[i] = index % dims[i]
		index /= dims[i]
	}
	return coords
}

//Converts coordinates into a flat row-major index
func Ravel(coords []int, dims []int) int {
	index := 0
	for i := range dims {
		index = index*dims[i] + coords[i]
	}
	return index
}

func RoundPrec(x float64, prec int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}

	sign := 1.0
	if x < 0 {
		sign = -1
		x *= -1
	}

	var rounder float64
	pow := math.Pow(10, float64(prec))
	intermed := x * pow
	_, frac := math.Modf(intermed)

	if frac >= 0.5 {
		rounder = math.Ceil(intermed)
	} else {
		rounder = math.Floor(intermed)
	}

	return rounder / pow * sign
}

//Helper for unit tests where int literals are easier
// to read
func Make1DBool(values []int) []bool {
	result := make([]bool, len(values))
	for i, val := range values {
		result[i] = val == 1
	}
	return result
}

//Returns number of on bits
func CountTrue(values []bool) int {
	count := 0
	for _, val := range values {
		if val {
			count++
		}
	}
	return count
}

//Returns "on" indices
func OnIndices(s []bool) []int {
	var result []int
	for idx, val := range s {
		if val {
			result = append(result, idx)
		}
	}
	return result
}

//Returns sorted unique union of s and t
func Union(s []int, t []int) []int {
	result := make([]int, 0, len(s)+len(t))
	result = append(result, s...)
	for _, val := range t {
		if !ContainsInt(val, result) {
			result = append(result, val)
		}
	}
	sort.Ints(result)
	return result
}
