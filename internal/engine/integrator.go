package engine

import (
	"fmt"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/tphakala/go-sdr-dsp/internal/simdops"
)

// Integrator averages consecutive power spectra over windows of a fixed
// number of spectra. A partial window carries over to the next call.
type Integrator struct {
	bins   int
	length int // spectra per window
	acc    []float64
	scaled []float64
	count  int // spectra folded into acc
	ops    *simdops.Ops[float64]
}

// NewIntegrator allocates an integrator for windows of length spectra.
func NewIntegrator(bins, length int) (*Integrator, error) {
	if bins < 1 || length < 1 {
		return nil, fmt.Errorf("invalid integrator shape: bins=%d length=%d", bins, length)
	}
	return &Integrator{
		bins:   bins,
		length: length,
		acc:    make([]float64, bins),
		scaled: make([]float64, bins),
		ops:    simdops.Float64Ops(),
	}, nil
}

// Completes returns how many windows folding spectra more spectra finishes.
func (g *Integrator) Completes(spectra int) int {
	return (g.count + spectra) / g.length
}

// Add folds the spectra (bins values each, in stream order) into the
// running window. Each completed window is written to dst as the mean
// spectrum, bins floats per window, in completion order. dst must hold
// Completes(spectra)·bins values. Returns the number of windows written.
func (g *Integrator) Add(spectra []float64, dst []float32) (int, error) {
	if len(spectra)%g.bins != 0 {
		return 0, fmt.Errorf("spectra length %d is not a multiple of %d bins", len(spectra), g.bins)
	}
	n := len(spectra) / g.bins
	windows := g.Completes(n)
	if len(dst) < windows*g.bins {
		return 0, fmt.Errorf("window buffer too small: need %d, have %d", windows*g.bins, len(dst))
	}

	written := 0
	for i := range n {
		vecmath.AddBlockInPlace(g.acc, spectra[i*g.bins:(i+1)*g.bins])
		g.count++
		if g.count == g.length {
			g.emit(dst[written*g.bins : (written+1)*g.bins])
			written++
		}
	}

	return written, nil
}

// emit writes acc/length to dst and starts a new window.
func (g *Integrator) emit(dst []float32) {
	g.ops.Scale(g.scaled, g.acc, 1/float64(g.length))
	for k, v := range g.scaled {
		dst[k] = float32(v)
	}
	clear(g.acc)
	g.count = 0
}

// Pending returns the number of spectra in the current partial window.
func (g *Integrator) Pending() int {
	return g.count
}

// Reset discards the partial window.
func (g *Integrator) Reset() {
	clear(g.acc)
	g.count = 0
}
