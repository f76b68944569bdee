package htm

import (
	"math/rand"
	"sort"
)

// splitMix is a math/rand Source whose whole state is one word, so a model
// can checkpoint its generator and resume the exact same stream.
type splitMix struct {
	state uint64
}

func (s *splitMix) Seed(seed int64) {
	s.state = uint64(seed)
}

func (s *splitMix) Uint64() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func (s *splitMix) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

// Random wraps rand.Rand over a checkpointable source.
type Random struct {
	*rand.Rand
	src *splitMix
}

// NewRandom seeds a generator. A negative seed selects a fixed default so
// runs stay reproducible.
func NewRandom(seed int64) *Random {
	if seed < 0 {
		seed = 42
	}
	src := &splitMix{}
	src.Seed(seed)
	return &Random{Rand: rand.New(src), src: src}
}

// State returns the generator position.
func (r *Random) State() uint64 {
	return r.src.state
}

// SetState restores a position obtained from State.
func (r *Random) SetState(state uint64) {
	r.src.state = state
}

//Picks n distinct items from values, keeping their relative order
func (r *Random) Sample(values []int, n int) []int {
	if n >= len(values) {
		result := make([]int, len(values))
		copy(result, values)
		return result
	}
	pool := make([]int, len(values))
	copy(pool, values)
	// partial Fisher-Yates over the first n slots
	for i := 0; i < n; i++ {
		j := i + r.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	picked := pool[:n]
	sort.Ints(picked)
	return picked
}
