package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-sdr-dsp/internal/simdops"
)

// LOTable holds one period of the local oscillator, exp(−j·2π·k/N) for
// k in [0, N). Channel c at stream sample t reads entry (c·t) mod N, so a
// single table serves every channel without drift.
type LOTable struct {
	n   int
	cos []float64
	sin []float64 // stores −sin so mixing is a pair of multiplies
}

// NewLOTable builds the table for n channels.
func NewLOTable(n int) (*LOTable, error) {
	if n < 1 {
		return nil, fmt.Errorf("LO table size must be positive: %d", n)
	}

	t := &LOTable{
		n:   n,
		cos: make([]float64, n),
		sin: make([]float64, n),
	}
	for k := range n {
		angle := 2 * math.Pi * float64(k) / float64(n)
		t.cos[k] = math.Cos(angle)
		t.sin[k] = -math.Sin(angle)
	}

	return t, nil
}

// index returns (ch·pos) mod N for any sign of pos.
func (t *LOTable) index(ch, pos int) int {
	p := pos % t.n
	if p < 0 {
		p += t.n
	}
	return (ch % t.n) * p % t.n
}

// mix writes the complex product of raw and the oscillator for channel ch
// into dstI/dstQ. raw[0] sits at stream position start.
func mix[F simdops.Float](t *LOTable, dstI, dstQ, raw []F, ch, start int) {
	k := t.index(ch, start)
	step := ch % t.n
	for i, x := range raw {
		dstI[i] = x * F(t.cos[k])
		dstQ[i] = x * F(t.sin[k])
		k += step
		if k >= t.n {
			k -= t.n
		}
	}
}
