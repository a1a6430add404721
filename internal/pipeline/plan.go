// Package pipeline describes how streaming input is laid out for the compute
// kernels: per-resource buffer shapes, output counts and the memory footprint
// a resource reserves on its device, plus the ring buffer that stages raw
// payloads between calls.
package pipeline

import (
	"fmt"
)

// DDCPlan is the static layout of a down-converter resource.
type DDCPlan struct {
	Channels     int // N, LO table period
	Taps         int // M
	Decimation   int // NDEC
	Filters      int // 1 for a shared filter, K otherwise
	MaxInputSize int // largest input accepted per call
}

// Validate checks that every dimension is positive.
func (p DDCPlan) Validate() error {
	if p.Channels < 1 || p.Taps < 1 || p.Decimation < 1 || p.Filters < 1 || p.MaxInputSize < 1 {
		return fmt.Errorf("invalid DDC plan: %+v", p)
	}
	return nil
}

// HistoryLen is the number of raw samples carried between calls.
func (p DDCPlan) HistoryLen() int {
	return p.Taps - 1
}

// WorkLen is the length of the history+input working buffer.
func (p DDCPlan) WorkLen() int {
	return p.HistoryLen() + p.MaxInputSize
}

// MaxOutputSize is the most complex samples a single call can produce.
func (p DDCPlan) MaxOutputSize() int {
	return (p.MaxInputSize + p.Decimation - 1) / p.Decimation
}

// OutputCount returns how many outputs n new input samples yield when the
// decimation counter currently stands at phase (0 means the next sample
// produces an output).
func (p DDCPlan) OutputCount(n, phase int) int {
	first := (p.Decimation - phase) % p.Decimation
	if n <= first {
		return 0
	}
	return (n-first-1)/p.Decimation + 1
}

// NextPhase returns the decimation counter after n more input samples.
func (p DDCPlan) NextPhase(n, phase int) int {
	return (phase + n) % p.Decimation
}

// MemoryFootprint is the number of bytes the resource holds: LO table,
// filter bank, raw and mixed working buffers and the output buffer.
func (p DDCPlan) MemoryFootprint() int64 {
	work := int64(p.WorkLen())
	return int64(p.Channels)*bytesComplex64 +
		int64(p.Taps*p.Filters)*bytesFloat32 +
		work*bytesFloat32 + // raw history + input
		2*work*bytesFloat32 + // mixed I and Q
		int64(p.MaxOutputSize())*bytesComplex64
}

// WaterfallPlan is the static layout of a spectrometer resource.
type WaterfallPlan struct {
	Channels         int // nch, output bins per spectrum
	PointsPerPayload int
	Batch            int // spectra per FFT batch
	Integration      int // spectra per output window
	Workers          int // FFT plans allocated for parallel batches
}

// Validate checks that every dimension is positive.
func (p WaterfallPlan) Validate() error {
	if p.Channels < 1 || p.PointsPerPayload < 1 || p.Batch < 1 || p.Integration < 1 || p.Workers < 1 {
		return fmt.Errorf("invalid waterfall plan: %+v", p)
	}
	return nil
}

// FFTLen is the real FFT length: two real samples per output bin.
func (p WaterfallPlan) FFTLen() int {
	return 2 * p.Channels
}

// SamplesPerBatch is the raw sample count consumed by one FFT batch.
func (p WaterfallPlan) SamplesPerBatch() int {
	return p.FFTLen() * p.Batch
}

// Batches returns how many full batches staged+n raw samples form.
func (p WaterfallPlan) Batches(staged, n int) int {
	return (staged + n) / p.SamplesPerBatch()
}

// WindowsCompleted returns how many integration windows finish when
// spectra new raw spectra are folded into a window already holding pending.
func (p WaterfallPlan) WindowsCompleted(pending, spectra int) int {
	return (pending + spectra) / p.Integration
}

// OutputSize is the float count a call writes given the staged sample
// count, the pending spectra and n new input samples.
func (p WaterfallPlan) OutputSize(staged, pending, n int) int {
	spectra := p.Batches(staged, n) * p.Batch
	return p.WindowsCompleted(pending, spectra) * p.Channels
}

// StagingCapacity is the initial ring buffer size: one batch plus one
// payload of slack so a payload never forces a grow in steady state.
func (p WaterfallPlan) StagingCapacity() int {
	return p.SamplesPerBatch() + p.PointsPerPayload
}

// MemoryFootprint is the number of bytes the resource holds: staging
// buffer, batch input and power buffers, the accumulator and per-worker FFT
// plans with their scratch.
func (p WaterfallPlan) MemoryFootprint() int64 {
	fftLen := int64(p.FFTLen())
	bins := int64(p.Channels)
	batch := int64(p.Batch)

	perWorker := realFFTWorkFactor*fftLen*bytesFloat64 + // plan
		fftLen*bytesFloat64 + // windowed input
		(fftLen/2+1)*bytesComplex128 + // coefficients
		3*bins*bytesFloat64 // re, im, power scratch

	return int64(p.StagingCapacity())*bytesInt16 +
		batch*fftLen*bytesInt16 + // batch read buffer
		batch*bins*bytesFloat64 + // batch power spectra
		bins*bytesFloat64 + // accumulator
		fftLen*bytesFloat64 + // window coefficients
		int64(p.Workers)*perWorker
}
