package engine

import (
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Window selects the taper applied to each spectrum's input block.
type Window int

const (
	// WindowRectangular leaves samples untouched.
	WindowRectangular Window = iota
	// WindowHann applies a periodic Hann taper.
	WindowHann
)

// String returns the window name.
func (w Window) String() string {
	switch w {
	case WindowRectangular:
		return "rectangular"
	case WindowHann:
		return "hann"
	default:
		return fmt.Sprintf("Window(%d)", int(w))
	}
}

// Spectrum computes raw power spectra of real int16 blocks. Each spectrum
// takes 2·bins samples through a real FFT and keeps bins 0..bins−1 (the
// Nyquist bin is dropped). Power is |X[k]|² with no normalisation.
type Spectrum struct {
	bins    int
	fftLen  int
	taper   []float64 // nil for rectangular
	workers []*spectrumWorker
}

// spectrumWorker owns an FFT plan and scratch; fourier.FFT is not safe for
// concurrent use.
type spectrumWorker struct {
	fft    *fourier.FFT
	in     []float64
	coeffs []complex128
	re, im []float64
}

// NewSpectrum allocates one FFT plan per worker.
func NewSpectrum(bins, workers int, window Window) (*Spectrum, error) {
	if bins < 1 {
		return nil, fmt.Errorf("bin count must be positive: %d", bins)
	}
	if workers < 1 {
		return nil, fmt.Errorf("worker count must be positive: %d", workers)
	}

	fftLen := 2 * bins
	s := &Spectrum{
		bins:    bins,
		fftLen:  fftLen,
		workers: make([]*spectrumWorker, workers),
	}

	switch window {
	case WindowRectangular:
	case WindowHann:
		s.taper = hannWindow(fftLen)
	default:
		return nil, fmt.Errorf("unknown window: %v", window)
	}

	for i := range s.workers {
		s.workers[i] = &spectrumWorker{
			fft:    fourier.NewFFT(fftLen),
			in:     make([]float64, fftLen),
			coeffs: make([]complex128, fftLen/2+1),
			re:     make([]float64, bins),
			im:     make([]float64, bins),
		}
	}

	return s, nil
}

// FFTLen returns the number of input samples per spectrum.
func (s *Spectrum) FFTLen() int {
	return s.fftLen
}

// Power writes the power spectrum of every 2·bins block of samples to dst,
// bins values per block. len(samples) must be a multiple of 2·bins and dst
// must hold the matching number of bins. Blocks are spread over at most
// workers FFT plans.
func (s *Spectrum) Power(dst []float64, samples []int16, workers int) error {
	if len(samples)%s.fftLen != 0 {
		return fmt.Errorf("sample count %d is not a multiple of %d", len(samples), s.fftLen)
	}
	spectra := len(samples) / s.fftLen
	if len(dst) < spectra*s.bins {
		return fmt.Errorf("power buffer too small: need %d, have %d", spectra*s.bins, len(dst))
	}

	workers = s.Workers(spectra, workers)

	chunk := (spectra + workers - 1) / workers
	forEachRange(workers, workers, func(lo, hi int) {
		for wi := lo; wi < hi; wi++ {
			w := s.workers[wi]
			for i := wi * chunk; i < min((wi+1)*chunk, spectra); i++ {
				s.compute(w, dst[i*s.bins:(i+1)*s.bins], samples[i*s.fftLen:(i+1)*s.fftLen])
			}
		}
	})

	return nil
}

// Workers returns how many FFT plans a call over spectra blocks uses when up
// to limit are available.
func (s *Spectrum) Workers(spectra, limit int) int {
	if spectra < parallelMinSpectra {
		return 1
	}
	return max(1, min(limit, len(s.workers), spectra))
}

func (s *Spectrum) compute(w *spectrumWorker, dst []float64, block []int16) {
	for i, v := range block {
		w.in[i] = float64(v)
	}
	if s.taper != nil {
		vecmath.MulBlockInPlace(w.in, s.taper)
	}

	w.coeffs = w.fft.Coefficients(w.coeffs, w.in)
	for k := range s.bins {
		w.re[k] = real(w.coeffs[k])
		w.im[k] = imag(w.coeffs[k])
	}
	vecmath.Power(dst, w.re, w.im)
}

// hannWindow returns the periodic Hann window of length n, one period of
// 0.5 − 0.5·cos(2πi/n). An on-bin tone leaks only into its two neighbours.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = hannCoeff - hannCoeff*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}
