// Package mathutil provides the special functions used by FIR filter design.
package mathutil

import "math"

// BesselI0 computes the modified Bessel function of the first kind, order zero.
//
// The power series I₀(x) = Σ ((x/2)^k / k!)² is summed until the next term no
// longer changes the result. It converges for every finite x and stays
// accurate to full float64 precision over the β range used by Kaiser windows.
func BesselI0(x float64) float64 {
	base := x * x / besselSeriesQuarter
	term := 1.0
	sum := 1.0
	for k := 1; k < besselMaxTerms; k++ {
		fk := float64(k)
		term *= base / (fk * fk)
		prev := sum
		sum += term
		if sum == prev || math.IsInf(sum, 0) {
			break
		}
	}
	return sum
}

// KaiserBeta returns the Kaiser window β giving the requested stopband
// attenuation in dB (Kaiser & Schafer).
//
//   - att > 50 dB:        β = 0.1102·(att − 8.7)
//   - 21 dB ≤ att ≤ 50:   β = 0.5842·(att − 21)^0.4 + 0.07886·(att − 21)
//   - att < 21 dB:        β = 0 (rectangular window)
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	default:
		return 0
	}
}

// EstimateFilterLength estimates the taps needed for the given stopband
// attenuation (dB) and normalized transition width (cycles/sample):
//
//	N ≈ (att − 8) / (2.285 · 2π · Δf) + 1
//
// The result is rounded up to an odd length and clamped to
// [minFilterLength, maxFilterLength].
func EstimateFilterLength(attenuation, transitionBW float64) int {
	if transitionBW <= 0 {
		transitionBW = defaultTransitionBW
	}

	n := (attenuation-kaiserLengthOffset)/(kaiserLengthMultiplier*2*math.Pi*transitionBW) + 1
	taps := int(math.Ceil(n))
	if taps%2 == 0 {
		taps++
	}

	return min(max(taps, minFilterLength), maxFilterLength)
}
