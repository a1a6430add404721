package filter

import (
	"errors"
	"fmt"
)

// ErrBankShape is returned when the coefficient count matches neither one
// filter nor one filter per sub-band.
var ErrBankShape = errors.New("coefficient count must be taps or taps*subBands")

// Bank is a set of K equal-length FIR filters, one per sub-band of the LO
// channel range. Taps are stored time-reversed in float32 so a filter output
// is a single dot product against the oldest-first sample window.
type Bank struct {
	taps     int
	subBands int
	shared   bool
	reversed [][]float32
}

// NewBank builds a bank from coefficients laid out sub-band by sub-band:
// filter k occupies coeffs[k*taps : (k+1)*taps]. A single filter of length
// taps is shared by every sub-band.
func NewBank(coeffs []float32, taps, subBands int) (*Bank, error) {
	if taps < 1 || subBands < 1 {
		return nil, fmt.Errorf("invalid bank shape: taps=%d subBands=%d", taps, subBands)
	}

	var filters int
	switch len(coeffs) {
	case taps:
		filters = 1
	case taps * subBands:
		filters = subBands
	default:
		return nil, fmt.Errorf("%w: got %d, taps=%d subBands=%d", ErrBankShape, len(coeffs), taps, subBands)
	}

	b := &Bank{
		taps:     taps,
		subBands: subBands,
		shared:   filters == 1,
		reversed: make([][]float32, filters),
	}
	for k := range filters {
		src := coeffs[k*taps : (k+1)*taps]
		rev := make([]float32, taps)
		for i, c := range src {
			rev[taps-1-i] = c
		}
		b.reversed[k] = rev
	}

	return b, nil
}

// subBand maps an LO channel in [0, channels) to its sub-band index:
// channels are split into subBands contiguous groups.
func (b *Bank) subBand(channel, channels int) int {
	if channels <= 0 {
		return 0
	}
	return channel * b.subBands / channels
}

// Filters returns the number of distinct filters: 1 when shared, K otherwise.
func (b *Bank) Filters() int { return len(b.reversed) }

// Filter returns the time-reversed taps of filter k.
func (b *Bank) Filter(k int) []float32 { return b.reversed[k] }

// Index returns the filter index used for the given LO channel.
func (b *Bank) Index(channel, channels int) int {
	if b.shared {
		return 0
	}
	return b.subBand(channel, channels)
}

// Taps returns the length of each filter.
func (b *Bank) Taps() int { return b.taps }

// ToFloat32 narrows float64 taps for upload into a bank.
func ToFloat32(taps []float64) []float32 {
	out := make([]float32, len(taps))
	for i, v := range taps {
		out[i] = float32(v)
	}
	return out
}
