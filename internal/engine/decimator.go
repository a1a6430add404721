// Package engine implements the streaming compute kernels: the mixing
// decimator behind the DDC and the power spectrum and integration stages
// behind the waterfall spectrometer.
package engine

import (
	"fmt"

	"github.com/tphakala/go-sdr-dsp/internal/filter"
	"github.com/tphakala/go-sdr-dsp/internal/pipeline"
	"github.com/tphakala/go-sdr-dsp/internal/simdops"
)

// Decimator mixes a real int16 stream against one LO channel, low-pass
// filters the complex product and keeps every Decimation-th sample.
//
// State carried between calls:
//   - the last Taps−1 raw samples, so filter windows span call boundaries
//   - the decimation phase, so output spacing does not restart per call
//   - the stream position mod N, so the oscillator phase stays continuous
//
// History is kept unmixed and mixed again on each call with the channel of
// that call. Switching channels between calls therefore yields exactly what
// a single call over the concatenated input would.
//
// Type parameter F selects the working precision of the mixer and filter.
type Decimator[F simdops.Float] struct {
	plan pipeline.DDCPlan
	lo   *LOTable
	bank *filter.Bank
	taps [][]F // time-reversed, one per distinct filter
	ops  *simdops.Ops[F]

	raw  []F // history followed by the current input
	mixI []F
	mixQ []F

	phase int // input samples since the last output, mod Decimation
	pos   int // stream position of the next input sample, mod Channels
}

// NewDecimator allocates a decimator for the plan and filter bank.
func NewDecimator[F simdops.Float](plan pipeline.DDCPlan, bank *filter.Bank) (*Decimator[F], error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if bank == nil {
		return nil, fmt.Errorf("filter bank is required")
	}
	if bank.Taps() != plan.Taps || bank.Filters() != plan.Filters {
		return nil, fmt.Errorf("filter bank shape %dx%d does not match plan %dx%d",
			bank.Filters(), bank.Taps(), plan.Filters, plan.Taps)
	}

	lo, err := NewLOTable(plan.Channels)
	if err != nil {
		return nil, err
	}

	taps := make([][]F, bank.Filters())
	for k := range taps {
		src := bank.Filter(k)
		taps[k] = make([]F, len(src))
		for i, c := range src {
			taps[k][i] = F(c)
		}
	}

	work := plan.WorkLen()
	return &Decimator[F]{
		plan: plan,
		lo:   lo,
		bank: bank,
		taps: taps,
		ops:  simdops.For[F](),
		raw:  make([]F, work),
		mixI: make([]F, work),
		mixQ: make([]F, work),
	}, nil
}

// OutputCount returns how many outputs the next n input samples produce.
func (d *Decimator[F]) OutputCount(n int) int {
	return d.plan.OutputCount(n, d.phase)
}

// Workers returns how many workers a call with n input samples uses when up
// to limit are available.
func (d *Decimator[F]) Workers(n, limit int) int {
	return outputWorkers(d.OutputCount(n), limit)
}

// Process consumes input on LO channel ch and writes the decimated complex
// baseband samples to dst, returning the count. Outputs are computed over
// up to workers goroutines. On error no state changes.
func (d *Decimator[F]) Process(input []int16, ch int, dst []complex64, workers int) (int, error) {
	n := len(input)
	if n > d.plan.MaxInputSize {
		return 0, fmt.Errorf("input length %d exceeds maximum %d", n, d.plan.MaxInputSize)
	}
	if ch < 0 || ch >= d.plan.Channels {
		return 0, fmt.Errorf("channel %d out of range [0, %d)", ch, d.plan.Channels)
	}
	count := d.OutputCount(n)
	if len(dst) < count {
		return 0, fmt.Errorf("output buffer too small: need %d, have %d", count, len(dst))
	}
	if n == 0 {
		return 0, nil
	}

	hist := d.plan.HistoryLen()
	span := hist + n
	for i, s := range input {
		d.raw[hist+i] = F(s)
	}
	mix(d.lo, d.mixI[:span], d.mixQ[:span], d.raw[:span], ch, d.pos-hist)

	taps := d.taps[d.bank.Index(ch, d.plan.Channels)]
	first := (d.plan.Decimation - d.phase) % d.plan.Decimation
	m := d.plan.Taps
	dec := d.plan.Decimation

	forEachRange(count, outputWorkers(count, workers), func(lo, hi int) {
		for j := lo; j < hi; j++ {
			// Output j filters the window ending at input index first+j·dec.
			k := first + j*dec
			re := d.ops.DotProductUnsafe(taps, d.mixI[k:k+m])
			im := d.ops.DotProductUnsafe(taps, d.mixQ[k:k+m])
			dst[j] = complex(float32(re), float32(im))
		}
	})

	copy(d.raw[:hist], d.raw[n:span])
	d.phase = d.plan.NextPhase(n, d.phase)
	d.pos = (d.pos + n) % d.plan.Channels

	return count, nil
}

// Reset clears the history and restarts the stream at position zero.
func (d *Decimator[F]) Reset() {
	clear(d.raw)
	d.phase = 0
	d.pos = 0
}
