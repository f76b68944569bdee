package htm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomDeterministic(t *testing.T) {
	a := NewRandom(7)
	b := NewRandom(7)

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestRandomStateResume(t *testing.T) {
	a := NewRandom(99)
	a.Float64()
	a.Intn(17)

	b := NewRandom(1)
	b.SetState(a.State())

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestRandomSample(t *testing.T) {
	r := NewRandom(3)
	values := []int{2, 4, 8, 16, 32, 64}

	picked := r.Sample(values, 3)
	assert.Len(t, picked, 3)
	for i := 1; i < len(picked); i++ {
		assert.True(t, picked[i-1] < picked[i])
	}
	for _, p := range picked {
		assert.Contains(t, values, p)
	}

	assert.Equal(t, values, r.Sample(values, 10))
	assert.Equal(t, []int{2, 4, 8, 16, 32, 64}, values)
}
