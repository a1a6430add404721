package engine

// Parallel dispatch thresholds. Below these sizes the goroutine fan-out
// costs more than it saves.
const (
	// Minimum outputs per call before the decimator splits the output range.
	parallelMinOutputs = 256

	// Minimum outputs a single worker is handed.
	minOutputsPerWorker = 64

	// Minimum spectra per batch before power spectra run in parallel.
	parallelMinSpectra = 2
)

// Hann window coefficient: w[n] = 0.5 − 0.5·cos(2πn/(N−1)).
const hannCoeff = 0.5
