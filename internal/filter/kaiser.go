// Package filter provides FIR design for the down-converter: Kaiser windows,
// windowed-sinc low-pass prototypes, the sub-band filter bank and frequency
// response evaluation.
package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-sdr-dsp/internal/mathutil"
	"github.com/tphakala/go-sdr-dsp/internal/simdops"
)

const (
	minFilterTaps = 2
	maxFilterTaps = 8191

	sincZeroThreshold = 1e-10
	nyquist           = 0.5
)

// KaiserWindow returns a symmetric Kaiser window of the given length:
//
//	w[n] = I₀(β·sqrt(1 − ((n − α)/α)²)) / I₀(β),  α = (length−1)/2
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}

	alpha := float64(length-1) / 2
	i0Beta := mathutil.BesselI0(beta)
	for n := range length {
		x := (float64(n) - alpha) / alpha
		window[n] = mathutil.BesselI0(beta*math.Sqrt(max(0, 1-x*x))) / i0Beta
	}

	return window
}

// LowPassParams describes a windowed-sinc low-pass design.
type LowPassParams struct {
	// NumTaps is the filter length.
	NumTaps int

	// CutoffFreq is the normalized cutoff in cycles/sample, in (0, 0.5).
	CutoffFreq float64

	// Attenuation is the stopband attenuation in dB that selects Kaiser β.
	Attenuation float64

	// Gain is the DC gain the taps are normalized to. Zero leaves the
	// windowed sinc unnormalized.
	Gain float64
}

// Validate checks the design parameters.
func (p *LowPassParams) Validate() error {
	if p.NumTaps < minFilterTaps || p.NumTaps > maxFilterTaps {
		return fmt.Errorf("filter length %d out of range [%d, %d]", p.NumTaps, minFilterTaps, maxFilterTaps)
	}
	if p.CutoffFreq <= 0 || p.CutoffFreq >= nyquist {
		return fmt.Errorf("invalid cutoff frequency: %f (must be in (0, 0.5))", p.CutoffFreq)
	}
	if p.Attenuation < 0 {
		return fmt.Errorf("invalid attenuation: %f dB", p.Attenuation)
	}
	if p.Gain < 0 {
		return fmt.Errorf("invalid gain: %f", p.Gain)
	}
	return nil
}

// DesignLowPass designs a Kaiser-windowed sinc low-pass filter.
//
// h[n] = 2fc·sinc(2fc·(n − c))·w[n] with c = (NumTaps−1)/2, so the impulse
// response is symmetric and the filter has linear phase.
func DesignLowPass(params LowPassParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	window := KaiserWindow(params.NumTaps, mathutil.KaiserBeta(params.Attenuation))
	taps := make([]float64, params.NumTaps)
	center := float64(params.NumTaps-1) / 2

	for n := range taps {
		x := float64(n) - center
		var h float64
		if math.Abs(x) < sincZeroThreshold {
			h = 2 * params.CutoffFreq
		} else {
			h = math.Sin(2*math.Pi*params.CutoffFreq*x) / (math.Pi * x)
		}
		taps[n] = h * window[n]
	}

	if params.Gain > 0 {
		ops := simdops.Float64Ops()
		if sum := ops.Sum(taps); math.Abs(sum) > sincZeroThreshold {
			ops.Scale(taps, taps, params.Gain/sum)
		}
	}

	return taps, nil
}

// FrequencyResponse holds |H| and arg H sampled from DC to Nyquist.
type FrequencyResponse struct {
	Frequencies []float64 // cycles/sample, [0, 0.5)
	Magnitude   []float64
	Phase       []float64
}

// ComputeFrequencyResponse evaluates the DTFT of the taps at numPoints
// evenly spaced frequencies in [0, 0.5). numPoints <= 0 selects 512.
func ComputeFrequencyResponse(taps []float64, numPoints int) FrequencyResponse {
	if numPoints <= 0 {
		numPoints = defaultResponsePoints
	}

	resp := FrequencyResponse{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
		Phase:       make([]float64, numPoints),
	}

	for k := range numPoints {
		freq := float64(k) * nyquist / float64(numPoints)
		re, im := ResponseAt(taps, freq)
		resp.Frequencies[k] = freq
		resp.Magnitude[k] = math.Hypot(re, im)
		resp.Phase[k] = math.Atan2(im, re)
	}

	return resp
}

// ResponseAt returns H(e^{j2πf}) for a single frequency f in cycles/sample.
func ResponseAt(taps []float64, freq float64) (re, im float64) {
	omega := 2 * math.Pi * freq
	for n, h := range taps {
		angle := omega * float64(n)
		re += h * math.Cos(angle)
		im -= h * math.Sin(angle)
	}
	return re, im
}

// MagnitudeDB converts a linear magnitude to dB, floored at -200 dB.
func MagnitudeDB(magnitude float64) float64 {
	const minMagnitude = 1e-10
	return 20 * math.Log10(max(magnitude, minMagnitude))
}

const defaultResponsePoints = 512
