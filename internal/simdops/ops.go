// Package simdops exposes the SIMD kernels of github.com/tphakala/simd
// through one generic table, so kernels written against F work for both
// float32 and float64 without duplication.
package simdops

import (
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops holds the SIMD-accelerated operations for type F.
type Ops[F Float] struct {
	// DotProductUnsafe computes Σ a[i]·b[i] without bounds checking.
	// Both slices must have the same length.
	DotProductUnsafe func(a, b []F) F

	// Interleave2 writes dst[2i]=a[i], dst[2i+1]=b[i].
	Interleave2 func(dst, a, b []F)

	// Sum returns the sum of all elements.
	Sum func(a []F) F

	// Scale computes dst[i] = a[i]·s.
	Scale func(dst, a []F, s F)
}

var (
	ops32 = Ops[float32]{
		DotProductUnsafe: f32.DotProductUnsafe,
		Interleave2:      f32.Interleave2,
		Sum:              f32.Sum,
		Scale:            f32.Scale,
	}
	ops64 = Ops[float64]{
		DotProductUnsafe: f64.DotProductUnsafe,
		Interleave2:      f64.Interleave2,
		Sum:              f64.Sum,
		Scale:            f64.Scale,
	}
)

// For returns the Ops instance for type F.
// The type switch runs once per caller, never in a hot loop.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Float32Ops returns the float32 operations.
func Float32Ops() *Ops[float32] {
	return &ops32
}

// Float64Ops returns the float64 operations.
func Float64Ops() *Ops[float64] {
	return &ops64
}
