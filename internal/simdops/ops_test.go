package simdops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor_DispatchesByType(t *testing.T) {
	assert.Same(t, Float32Ops(), For[float32]())
	assert.Same(t, Float64Ops(), For[float64]())
}

func TestOps_Float32(t *testing.T) {
	ops := For[float32]()
	a := []float32{1, 2, 3, 4, 5}
	b := []float32{5, 4, 3, 2, 1}

	assert.InDelta(t, 35.0, float64(ops.DotProductUnsafe(a, b)), 1e-6)
	assert.InDelta(t, 15.0, float64(ops.Sum(a)), 1e-6)

	dst := make([]float32, len(a))
	ops.Scale(dst, a, 0.5)
	assert.Equal(t, []float32{0.5, 1, 1.5, 2, 2.5}, dst)

	inter := make([]float32, 2*len(a))
	ops.Interleave2(inter, a, b)
	assert.Equal(t, []float32{1, 5, 2, 4, 3, 3, 4, 2, 5, 1}, inter)
}

func TestOps_Float64(t *testing.T) {
	ops := For[float64]()
	a := []float64{0.25, 0.25, 0.25, 0.25}
	assert.InDelta(t, 1.0, ops.Sum(a), 1e-15)
	assert.InDelta(t, 0.25, ops.DotProductUnsafe(a, a), 1e-15)
}
