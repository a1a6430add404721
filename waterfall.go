package sdrdsp

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tphakala/go-sdr-dsp/internal/engine"
	"github.com/tphakala/go-sdr-dsp/internal/pipeline"
)

// Spectrometer turns a stream of real int16 samples into time-integrated
// power spectra. Samples are staged until a full batch of spectra is
// available; each spectrum is folded into the current integration window,
// and a window is emitted as its mean once it holds Integration spectra.
//
// A Spectrometer serializes its own calls.
type Spectrometer struct {
	mu     sync.Mutex
	dev    *Device
	id     uuid.UUID
	config WaterfallConfig
	plan   pipeline.WaterfallPlan

	staging  *pipeline.RingBuffer[int16]
	batch    []int16
	power    []float64
	spectrum *engine.Spectrum
	integ    *engine.Integrator

	closed bool
}

// WaterfallInfo describes a spectrometer.
type WaterfallInfo struct {
	ID               uuid.UUID
	Channels         int
	PointsPerPayload int
	Batch            int
	Integration      int
	Window           Window
	FFTLen           int
	Workers          int
	MemoryFootprint  int64
}

// NewSpectrometer creates a spectrometer on dev.
func NewSpectrometer(dev *Device, config *WaterfallConfig) (*Spectrometer, error) {
	if dev == nil {
		return nil, fmt.Errorf("%w: device is required", ErrInvalidConfig)
	}
	if config == nil {
		return nil, fmt.Errorf("%w: config is required", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := *config
	cfg.Batch = config.batch()
	plan := cfg.plan(dev.Workers())

	id, err := dev.reserve(ResourceWaterfall, plan.MemoryFootprint())
	if err != nil {
		return nil, err
	}

	spectrum, err := engine.NewSpectrum(plan.Channels, plan.Workers, cfg.Window)
	if err != nil {
		dev.release(id)
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	integ, err := engine.NewIntegrator(plan.Channels, plan.Integration)
	if err != nil {
		dev.release(id)
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &Spectrometer{
		dev:      dev,
		id:       id,
		config:   cfg,
		plan:     plan,
		staging:  pipeline.NewRingBuffer[int16](plan.StagingCapacity()),
		batch:    make([]int16, plan.SamplesPerBatch()),
		power:    make([]float64, plan.Batch*plan.Channels),
		spectrum: spectrum,
		integ:    integ,
	}, nil
}

// Process consumes input and writes every integration window it completes
// to dst, Channels floats per window in completion order. It returns the
// number of windows written; 0 means the samples only advanced a window in
// progress. len(input) must be a positive multiple of PointsPerPayload and
// dst must hold OutputSize(len(input)) floats. Rejected calls change no
// state.
func (s *Spectrometer) Process(input []int16, dst []float32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fmt.Errorf("waterfall %s: %w", s.id, ErrClosed)
	}
	if len(input) == 0 {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidInput)
	}
	if len(input)%s.plan.PointsPerPayload != 0 {
		return 0, fmt.Errorf("%w: %d samples is not a multiple of the %d-point payload",
			ErrInvalidInput, len(input), s.plan.PointsPerPayload)
	}
	if need := s.outputSize(len(input)); len(dst) < need {
		return 0, fmt.Errorf("%w: need %d, have %d", ErrBufferTooSmall, need, len(dst))
	}

	s.staging.Write(input)
	if s.staging.Available() < len(s.batch) {
		return 0, nil
	}

	workers := s.acquireWorkers()
	defer s.dev.releaseWorkers(workers)

	windows := 0
	for s.staging.Available() >= len(s.batch) {
		s.staging.ReadInto(s.batch)
		if err := s.spectrum.Power(s.power, s.batch, workers); err != nil {
			return windows, fmt.Errorf("%w: waterfall %s: %w", ErrCompute, s.id, err)
		}
		n, err := s.integ.Add(s.power, dst[windows*s.plan.Channels:])
		if err != nil {
			return windows, fmt.Errorf("%w: waterfall %s: %w", ErrCompute, s.id, err)
		}
		windows += n
	}

	return windows, nil
}

// acquireWorkers takes the device worker slots one batch can use.
func (s *Spectrometer) acquireWorkers() int {
	return s.dev.acquireWorkers(s.spectrum.Workers(s.plan.Batch, s.plan.Workers))
}

// OutputSize returns the exact number of floats the next Process call with
// npt samples writes. It returns 0 for lengths Process would reject.
func (s *Spectrometer) OutputSize(npt int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if npt <= 0 || npt%s.plan.PointsPerPayload != 0 {
		return 0
	}
	return s.outputSize(npt)
}

func (s *Spectrometer) outputSize(npt int) int {
	return s.plan.OutputSize(s.staging.Available(), s.integ.Pending(), npt)
}

// MaxOutputSize returns the most floats a call with npt samples can write,
// independent of the current state.
func (s *Spectrometer) MaxOutputSize(npt int) int {
	spectra := (s.plan.SamplesPerBatch() - 1 + npt) / s.plan.SamplesPerBatch() * s.plan.Batch
	return s.plan.WindowsCompleted(s.plan.Integration-1, spectra) * s.plan.Channels
}

// Pending returns the number of spectra in the window in progress.
func (s *Spectrometer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.integ.Pending()
}

// Buffered returns the number of staged samples not yet transformed.
func (s *Spectrometer) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staging.Available()
}

// Reset discards staged samples and the window in progress.
func (s *Spectrometer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.staging.Clear()
	s.integ.Reset()
}

// Info describes the spectrometer.
func (s *Spectrometer) Info() WaterfallInfo {
	return WaterfallInfo{
		ID:               s.id,
		Channels:         s.plan.Channels,
		PointsPerPayload: s.plan.PointsPerPayload,
		Batch:            s.plan.Batch,
		Integration:      s.plan.Integration,
		Window:           s.config.Window,
		FFTLen:           s.spectrum.FFTLen(),
		Workers:          s.plan.Workers,
		MemoryFootprint:  s.plan.MemoryFootprint(),
	}
}

// Close releases the spectrometer's device reservation. It waits for an
// in-flight call to finish. Closing twice returns ErrClosed.
func (s *Spectrometer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("waterfall %s: %w", s.id, ErrClosed)
	}
	s.closed = true
	s.dev.release(s.id)
	s.staging.Clear()
	return nil
}
