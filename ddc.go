package sdrdsp

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tphakala/go-sdr-dsp/internal/engine"
	"github.com/tphakala/go-sdr-dsp/internal/filter"
	"github.com/tphakala/go-sdr-dsp/internal/pipeline"
)

// DDC is a streaming digital down-converter. Each Process call mixes real
// int16 samples against one LO channel, low-pass filters and decimates
// them, producing complex baseband samples. Filter history and decimation
// phase persist between calls so consecutive calls behave as one stream.
//
// A DDC serializes its own calls. Distinct DDCs may run concurrently and
// share the device's worker slots.
type DDC struct {
	mu     sync.Mutex
	dev    *Device
	id     uuid.UUID
	config DDCConfig
	plan   pipeline.DDCPlan
	dec    *engine.Decimator[float32]

	out      []complex64
	outLen   int
	produced bool
	closed   bool
}

// DDCInfo describes a down-converter.
type DDCInfo struct {
	ID              uuid.UUID
	Channels        int
	Taps            int
	Decimation      int
	SubBands        int
	SharedFilter    bool
	MaxInputSize    int
	MaxOutputSize   int
	MemoryFootprint int64
}

// NewDDC creates a down-converter on dev. The coefficients are copied.
func NewDDC(dev *Device, config *DDCConfig) (*DDC, error) {
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
	cfg.SubBands = config.subBands()
	cfg.MaxInputSize = config.maxInputSize()
	cfg.Coefficients = append([]float32(nil), config.Coefficients...)

	bank, err := filter.NewBank(cfg.Coefficients, cfg.Taps, cfg.SubBands)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	plan := cfg.plan()
	id, err := dev.reserve(ResourceDDC, plan.MemoryFootprint())
	if err != nil {
		return nil, err
	}

	dec, err := engine.NewDecimator[float32](plan, bank)
	if err != nil {
		dev.release(id)
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &DDC{
		dev:    dev,
		id:     id,
		config: cfg,
		plan:   plan,
		dec:    dec,
		out:    make([]complex64, plan.MaxOutputSize()),
	}, nil
}

// Process down-converts input on LO channel loCh and returns the number of
// complex samples produced. The samples stay available through Output and
// FetchOutput until the next successful call. On error the filter state and
// the previous output are unchanged.
func (d *DDC) Process(input []int16, loCh int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, fmt.Errorf("ddc %s: %w", d.id, ErrClosed)
	}
	if len(input) == 0 {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidInput)
	}
	if len(input) > d.plan.MaxInputSize {
		return 0, fmt.Errorf("%w: %d samples exceeds maximum %d", ErrInvalidInput, len(input), d.plan.MaxInputSize)
	}
	if loCh < 0 || loCh >= d.plan.Channels {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidChannel, loCh, d.plan.Channels)
	}

	workers := d.acquireWorkers(len(input))
	defer d.dev.releaseWorkers(workers)

	n, err := d.dec.Process(input, loCh, d.out, workers)
	if err != nil {
		return 0, fmt.Errorf("%w: ddc %s: %w", ErrCompute, d.id, err)
	}

	d.outLen = n
	d.produced = true
	return n, nil
}

// acquireWorkers takes the device worker slots a call with n input samples
// can use; small calls hold a single slot.
func (d *DDC) acquireWorkers(n int) int {
	return d.dev.acquireWorkers(d.dec.Workers(n, d.dev.Workers()))
}

// FetchOutput copies the samples produced by the most recent successful
// Process call into dst and returns the count.
func (d *DDC) FetchOutput(dst []complex64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, fmt.Errorf("ddc %s: %w", d.id, ErrClosed)
	}
	if !d.produced {
		return 0, ErrNoOutput
	}
	if len(dst) < d.outLen {
		return 0, fmt.Errorf("%w: need %d, have %d", ErrBufferTooSmall, d.outLen, len(dst))
	}
	return copy(dst, d.out[:d.outLen]), nil
}

// Output returns the samples of the most recent successful Process call.
// The slice aliases internal storage and is overwritten by the next call.
func (d *DDC) Output() []complex64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.out[:d.outLen]
}

// OutputSize returns the sample count of the most recent successful
// Process call, or 0 before the first.
func (d *DDC) OutputSize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.outLen
}

// MaxOutputSize returns the largest count a single Process call can return.
func (d *DDC) MaxOutputSize() int {
	return d.plan.MaxOutputSize()
}

// Reset clears the filter history, LO position and decimation phase, and
// discards the last output.
func (d *DDC) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dec.Reset()
	d.outLen = 0
	d.produced = false
}

// Info describes the down-converter.
func (d *DDC) Info() DDCInfo {
	return DDCInfo{
		ID:              d.id,
		Channels:        d.config.Channels,
		Taps:            d.config.Taps,
		Decimation:      d.config.Decimation,
		SubBands:        d.config.SubBands,
		SharedFilter:    d.plan.Filters == 1,
		MaxInputSize:    d.plan.MaxInputSize,
		MaxOutputSize:   d.plan.MaxOutputSize(),
		MemoryFootprint: d.plan.MemoryFootprint(),
	}
}

// Close releases the down-converter's device reservation. It waits for an
// in-flight call to finish. Closing twice returns ErrClosed.
func (d *DDC) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return fmt.Errorf("ddc %s: %w", d.id, ErrClosed)
	}
	d.closed = true
	d.dev.release(d.id)
	d.out = nil
	d.outLen = 0
	return nil
}
