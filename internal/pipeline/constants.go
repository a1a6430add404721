package pipeline

// Buffer sizing.
const (
	bufferGrowthFactor = 2
)

// Element sizes used for memory footprints, in bytes.
const (
	bytesInt16      = 2
	bytesFloat32    = 4
	bytesFloat64    = 8
	bytesComplex64  = 8
	bytesComplex128 = 16
)

// realFFTWorkFactor approximates the gonum real FFT plan storage: a work
// array of 2n float64 values plus the twiddle table.
const realFFTWorkFactor = 3
