package sdrdsp

import (
	"fmt"
	"runtime"

	"github.com/tphakala/go-sdr-dsp/internal/engine"
	"github.com/tphakala/go-sdr-dsp/internal/pipeline"
)

// DeviceConfig configures a compute device.
type DeviceConfig struct {
	// MemoryLimit is the number of bytes resources may reserve in total.
	// Zero means unlimited.
	MemoryLimit int64

	// Workers is the number of compute workers shared by every resource on
	// the device. Zero selects runtime.NumCPU().
	Workers int
}

// Validate checks the device configuration.
func (c *DeviceConfig) Validate() error {
	if c.MemoryLimit < 0 {
		return fmt.Errorf("%w: memory limit must not be negative", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *DeviceConfig) workers() int {
	if c.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// DDCConfig configures a digital down-converter.
type DDCConfig struct {
	// Channels is N, the number of LO channels the input band is split into.
	Channels int

	// Taps is M, the length of each FIR filter.
	Taps int

	// Decimation is NDEC, the input-to-output rate ratio.
	Decimation int

	// SubBands is K, the number of filter sub-bands. Zero means 1.
	SubBands int

	// Coefficients holds either Taps values (one filter shared by every
	// channel) or Taps·SubBands values, filter k at [k·Taps, (k+1)·Taps).
	Coefficients []float32

	// MaxInputSize is the largest input accepted per Process call.
	// Zero selects 65536.
	MaxInputSize int
}

// Validate checks the DDC configuration.
func (c *DDCConfig) Validate() error {
	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}
	if c.Taps < 1 {
		return fmt.Errorf("%w: taps must be at least 1", ErrInvalidConfig)
	}
	if c.Decimation < 1 {
		return fmt.Errorf("%w: decimation must be at least 1", ErrInvalidConfig)
	}
	if c.SubBands < 0 || c.SubBands > c.Channels {
		return fmt.Errorf("%w: sub-bands must be in [0, %d], 0 selects 1", ErrInvalidConfig, c.Channels)
	}
	if c.MaxInputSize < 0 {
		return fmt.Errorf("%w: max input size must not be negative", ErrInvalidConfig)
	}

	k := c.subBands()
	if n := len(c.Coefficients); n != c.Taps && n != c.Taps*k {
		return fmt.Errorf("%w: got %d coefficients, want %d or %d", ErrInvalidConfig, n, c.Taps, c.Taps*k)
	}
	return nil
}

func (c *DDCConfig) subBands() int {
	if c.SubBands == 0 {
		return 1
	}
	return c.SubBands
}

func (c *DDCConfig) maxInputSize() int {
	if c.MaxInputSize == 0 {
		return defaultMaxInputSize
	}
	return c.MaxInputSize
}

func (c *DDCConfig) plan() pipeline.DDCPlan {
	filters := 1
	if len(c.Coefficients) != c.Taps {
		filters = c.subBands()
	}
	return pipeline.DDCPlan{
		Channels:     c.Channels,
		Taps:         c.Taps,
		Decimation:   c.Decimation,
		Filters:      filters,
		MaxInputSize: c.maxInputSize(),
	}
}

// Window selects the taper applied before each FFT.
type Window = engine.Window

// Supported windows.
const (
	WindowRectangular = engine.WindowRectangular
	WindowHann        = engine.WindowHann
)

// WaterfallConfig configures a waterfall spectrometer.
type WaterfallConfig struct {
	// Channels is nch, the number of frequency bins per spectrum. Each raw
	// spectrum consumes 2·Channels real samples.
	Channels int

	// PointsPerPayload is the payload size; every input length must be a
	// multiple of it.
	PointsPerPayload int

	// Batch is the number of spectra transformed together. Zero selects
	// Integration.
	Batch int

	// Integration is nint, the number of spectra averaged into one output.
	Integration int

	// Window is the FFT taper. The zero value is rectangular.
	Window Window
}

// Validate checks the waterfall configuration.
func (c *WaterfallConfig) Validate() error {
	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}
	if c.PointsPerPayload < 1 {
		return fmt.Errorf("%w: points per payload must be at least 1", ErrInvalidConfig)
	}
	if c.Batch < 0 {
		return fmt.Errorf("%w: batch must not be negative", ErrInvalidConfig)
	}
	if c.Integration < 1 {
		return fmt.Errorf("%w: integration must be at least 1", ErrInvalidConfig)
	}
	if c.Window != WindowRectangular && c.Window != WindowHann {
		return fmt.Errorf("%w: unknown window %v", ErrInvalidConfig, c.Window)
	}
	return nil
}

func (c *WaterfallConfig) batch() int {
	if c.Batch == 0 {
		return c.Integration
	}
	return c.Batch
}

func (c *WaterfallConfig) plan(workers int) pipeline.WaterfallPlan {
	return pipeline.WaterfallPlan{
		Channels:         c.Channels,
		PointsPerPayload: c.PointsPerPayload,
		Batch:            c.batch(),
		Integration:      c.Integration,
		Workers:          max(1, min(workers, c.batch())),
	}
}
