package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLOTable_Values(t *testing.T) {
	lo, err := NewLOTable(8)
	require.NoError(t, err)
	assert.Equal(t, 8, lo.n)

	for ch := range 8 {
		for pos := -20; pos < 40; pos++ {
			k := lo.index(ch, pos)
			re, im := lo.cos[k], lo.sin[k]
			angle := -2 * math.Pi * float64(ch) * float64(pos) / 8
			assert.InDelta(t, math.Cos(angle), re, 1e-12, "ch=%d pos=%d", ch, pos)
			assert.InDelta(t, math.Sin(angle), im, 1e-12, "ch=%d pos=%d", ch, pos)
		}
	}
}

func TestLOTable_MixMatchesTable(t *testing.T) {
	lo, err := NewLOTable(12)
	require.NoError(t, err)

	raw := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	dstI := make([]float64, len(raw))
	dstQ := make([]float64, len(raw))
	mix(lo, dstI, dstQ, raw, 7, -5)

	for i, x := range raw {
		k := lo.index(7, i-5)
		re, im := lo.cos[k], lo.sin[k]
		assert.InDelta(t, x*re, dstI[i], 1e-12)
		assert.InDelta(t, x*im, dstQ[i], 1e-12)
	}
}

func TestNewLOTable_Invalid(t *testing.T) {
	_, err := NewLOTable(0)
	assert.Error(t, err)
}
