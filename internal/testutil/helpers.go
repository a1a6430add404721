// Package testutil provides signal generators and assertions shared by the
// DDC and waterfall tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Float is the element constraint for the generic assertions.
type Float interface {
	~float32 | ~float64
}

// Tone returns n samples of amplitude·cos(2π·freq·t + phase) quantized to
// int16, with freq in cycles per sample.
func Tone(n int, freq, amplitude, phase float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		v := amplitude * math.Cos(2*math.Pi*freq*float64(i)+phase)
		out[i] = int16(math.Round(math.Max(math.MinInt16, math.Min(math.MaxInt16, v))))
	}
	return out
}

// Alternating returns the ±1 square wave with period 16 used by the
// waterfall capture harness: (i%16) > 8 ? -1 : 1.
func Alternating(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		if i%16 > 8 {
			out[i] = -1
		} else {
			out[i] = 1
		}
	}
	return out
}

// Noise returns n pseudo-random samples from a fixed-seed LCG so tests stay
// deterministic without touching global rand state.
func Noise(n int, amplitude int16, seed uint32) []int16 {
	out := make([]int16, n)
	state := seed
	for i := range out {
		state = state*1664525 + 1013904223
		out[i] = int16(int32(state>>16)%int32(2*int32(amplitude)+1) - int32(amplitude))
	}
	return out
}

// Energy returns Σ|z|² over the samples.
func Energy(samples []complex64) float64 {
	var e float64
	for _, z := range samples {
		re, im := float64(real(z)), float64(imag(z))
		e += re*re + im*im
	}
	return e
}

// ArgMax returns the index of the largest element, or -1 for an empty slice.
func ArgMax[F Float](s []F) int {
	if len(s) == 0 {
		return -1
	}
	best := 0
	for i, v := range s {
		if v > s[best] {
			best = i
		}
	}
	return best
}

// AssertSymmetric verifies that s[i] == s[n-1-i].
func AssertSymmetric[F Float](t *testing.T, s []F, tolerance float64) bool {
	t.Helper()
	n := len(s)
	for i := 0; i < n/2; i++ {
		j := n - 1 - i
		if !assert.InDelta(t, float64(s[i]), float64(s[j]), tolerance,
			"slice not symmetric: s[%d]=%v != s[%d]=%v", i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that every element is finite.
func AssertNoNaNOrInf[F Float](t *testing.T, s []F) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertDCGain verifies that the coefficients sum to the expected gain.
func AssertDCGain[F Float](t *testing.T, coeffs []F, expectedGain, tolerance float64) bool {
	t.Helper()
	var sum float64
	for _, c := range coeffs {
		sum += float64(c)
	}
	return assert.InDelta(t, expectedGain, sum, tolerance, "DC gain = %f, want %f", sum, expectedGain)
}

// AssertRelativeError verifies |actual-expected|/|expected| <= tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertComplexInDelta compares two complex64 slices element-wise.
func AssertComplexInDelta(t *testing.T, expected, actual []complex64, tolerance float64) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected)) {
		return false
	}
	for i := range expected {
		if !assert.InDelta(t, float64(real(expected[i])), float64(real(actual[i])), tolerance, "real[%d]", i) ||
			!assert.InDelta(t, float64(imag(expected[i])), float64(imag(actual[i])), tolerance, "imag[%d]", i) {
			return false
		}
	}
	return true
}
