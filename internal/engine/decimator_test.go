package engine

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-sdr-dsp/internal/filter"
	"github.com/tphakala/go-sdr-dsp/internal/pipeline"
	"github.com/tphakala/go-sdr-dsp/internal/testutil"
)

// referenceDDC is the direct-form definition: mix every sample, filter the
// whole stream, keep samples at multiples of dec.
func referenceDDC(input []int16, taps []float64, channels, ch, dec int) []complex128 {
	mixed := make([]complex128, len(input))
	for t, x := range input {
		angle := -2 * math.Pi * float64(ch*t%channels) / float64(channels)
		mixed[t] = complex(float64(x), 0) * cmplx.Exp(complex(0, angle))
	}

	var out []complex128
	for t := 0; t < len(input); t += dec {
		var y complex128
		for i, h := range taps {
			if t-i >= 0 {
				y += complex(h, 0) * mixed[t-i]
			}
		}
		out = append(out, y)
	}
	return out
}

func newTestDecimator[F float32 | float64](t *testing.T, channels, dec, maxInput int, taps []float64) *Decimator[F] {
	t.Helper()
	bank, err := filter.NewBank(filter.ToFloat32(taps), len(taps), 1)
	require.NoError(t, err)

	d, err := NewDecimator[F](pipeline.DDCPlan{
		Channels:     channels,
		Taps:         len(taps),
		Decimation:   dec,
		Filters:      1,
		MaxInputSize: maxInput,
	}, bank)
	require.NoError(t, err)
	return d
}

func designTestTaps(t *testing.T, numTaps, dec int) []float64 {
	t.Helper()
	taps, err := filter.DesignLowPass(filter.LowPassParams{
		NumTaps:     numTaps,
		CutoffFreq:  0.45 / float64(dec),
		Attenuation: 80,
		Gain:        1,
	})
	require.NoError(t, err)

	// Round through float32 so the reference sees the taps the bank holds.
	for i, v := range taps {
		taps[i] = float64(float32(v))
	}
	return taps
}

func TestDecimator_MatchesReference(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		ch       int
		taps     int
		dec      int
	}{
		{"N8_ch3_M31_D4", 8, 3, 31, 4},
		{"N16_ch0_M64_D8", 16, 0, 64, 8},
		{"N5_ch4_M17_D3", 5, 4, 17, 3},
		{"N1_ch0_M1_D1", 1, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taps := designTestTaps(t, tt.taps, tt.dec)
			input := testutil.Noise(1000, 2000, 42)

			d := newTestDecimator[float64](t, tt.channels, tt.dec, len(input), taps)
			out := make([]complex64, d.OutputCount(len(input)))
			n, err := d.Process(input, tt.ch, out, 1)
			require.NoError(t, err)

			want := referenceDDC(input, taps, tt.channels, tt.ch, tt.dec)
			require.Equal(t, len(want), n)
			for i := range want {
				assert.InDelta(t, real(want[i]), float64(real(out[i])), 1e-2, "real[%d]", i)
				assert.InDelta(t, imag(want[i]), float64(imag(out[i])), 1e-2, "imag[%d]", i)
			}
		})
	}
}

// TestDecimator_AlternatingBoxcar feeds A·(−1)^t through a boxcar: the tone
// sits exactly on channel N/2 and cancels on every other channel once the
// filter window is full.
func TestDecimator_AlternatingBoxcar(t *testing.T) {
	const (
		channels  = 4
		numTaps   = 8
		dec       = 4
		amplitude = 1000
		warmup    = 2 // outputs whose window reaches before t=0
	)

	taps := make([]float64, numTaps)
	for i := range taps {
		taps[i] = 1.0 / numTaps
	}
	input := make([]int16, 256)
	for i := range input {
		input[i] = amplitude
		if i%2 == 1 {
			input[i] = -amplitude
		}
	}

	for ch := range channels {
		d := newTestDecimator[float32](t, channels, dec, len(input), taps)
		out := make([]complex64, d.OutputCount(len(input)))
		n, err := d.Process(input, ch, out, 1)
		require.NoError(t, err)
		require.Equal(t, len(input)/dec, n)

		for i := warmup; i < n; i++ {
			got := cmplx.Abs(complex128(out[i]))
			if ch == channels/2 {
				assert.InDelta(t, amplitude, real(out[i]), 1e-3, "ch=%d out[%d]", ch, i)
				assert.InDelta(t, 0, imag(out[i]), 1e-3, "ch=%d out[%d]", ch, i)
			} else {
				assert.InDelta(t, 0, got, 1e-3, "ch=%d out[%d]", ch, i)
			}
		}
	}
}

func TestDecimator_SplitCallsMatchSingleCall(t *testing.T) {
	taps := designTestTaps(t, 37, 5)
	input := testutil.Noise(997, 3000, 7)

	whole := newTestDecimator[float64](t, 8, 5, len(input), taps)
	want := make([]complex64, whole.OutputCount(len(input)))
	_, err := whole.Process(input, 5, want, 1)
	require.NoError(t, err)

	for _, chunk := range []int{1, 3, 5, 36, 37, 100, 500} {
		d := newTestDecimator[float64](t, 8, 5, len(input), taps)
		var got []complex64
		for start := 0; start < len(input); start += chunk {
			block := input[start:min(start+chunk, len(input))]
			out := make([]complex64, d.OutputCount(len(block)))
			n, err := d.Process(block, 5, out, 1)
			require.NoError(t, err)
			got = append(got, out[:n]...)
		}
		testutil.AssertComplexInDelta(t, want, got, 1e-3)
	}
}

// TestDecimator_ChannelSwitch checks that after a channel change the output
// equals that of a stream processed on the new channel throughout.
func TestDecimator_ChannelSwitch(t *testing.T) {
	taps := designTestTaps(t, 24, 4)
	input := testutil.Noise(800, 1000, 3)
	split := 400 // multiple of the decimation, so output indices line up

	whole := newTestDecimator[float64](t, 8, 4, len(input), taps)
	want := make([]complex64, whole.OutputCount(len(input)))
	_, err := whole.Process(input, 6, want, 1)
	require.NoError(t, err)

	d := newTestDecimator[float64](t, 8, 4, len(input), taps)
	first := make([]complex64, d.OutputCount(split))
	_, err = d.Process(input[:split], 1, first, 1)
	require.NoError(t, err)

	second := make([]complex64, d.OutputCount(len(input)-split))
	n, err := d.Process(input[split:], 6, second, 1)
	require.NoError(t, err)

	testutil.AssertComplexInDelta(t, want[split/4:], second[:n], 1e-3)
}

func TestDecimator_ParallelMatchesSerial(t *testing.T) {
	taps := designTestTaps(t, 64, 2)
	input := testutil.Noise(8192, 5000, 11)

	serial := newTestDecimator[float32](t, 32, 2, len(input), taps)
	want := make([]complex64, serial.OutputCount(len(input)))
	_, err := serial.Process(input, 9, want, 1)
	require.NoError(t, err)

	parallel := newTestDecimator[float32](t, 32, 2, len(input), taps)
	got := make([]complex64, parallel.OutputCount(len(input)))
	_, err = parallel.Process(input, 9, got, 8)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestDecimator_SubBandFilterSelection(t *testing.T) {
	const numTaps = 4
	// Sub-band 0: boxcar. Sub-band 1: unit impulse.
	coeffs := []float32{0.25, 0.25, 0.25, 0.25, 1, 0, 0, 0}
	bank, err := filter.NewBank(coeffs, numTaps, 2)
	require.NoError(t, err)

	d, err := NewDecimator[float64](pipeline.DDCPlan{
		Channels: 4, Taps: numTaps, Decimation: 1, Filters: 2, MaxInputSize: 16,
	}, bank)
	require.NoError(t, err)

	input := testutil.Noise(16, 100, 5)
	out := make([]complex64, 16)
	_, err = d.Process(input, 3, out, 1)
	require.NoError(t, err)

	want := referenceDDC(input, []float64{1, 0, 0, 0}, 4, 3, 1)
	for i := range want {
		assert.InDelta(t, real(want[i]), float64(real(out[i])), 1e-4)
		assert.InDelta(t, imag(want[i]), float64(imag(out[i])), 1e-4)
	}
}

func TestDecimator_ErrorsLeaveStateUntouched(t *testing.T) {
	taps := designTestTaps(t, 8, 3)
	d := newTestDecimator[float64](t, 4, 3, 10, taps)

	out := make([]complex64, 4)
	_, err := d.Process(testutil.Noise(5, 100, 1), 0, out, 1)
	require.NoError(t, err)
	phase := d.phase

	_, err = d.Process(make([]int16, 11), 0, out, 1)
	assert.Error(t, err, "input over the maximum")
	_, err = d.Process(make([]int16, 4), 4, out, 1)
	assert.Error(t, err, "channel out of range")
	_, err = d.Process(make([]int16, 10), 0, out[:1], 1)
	assert.Error(t, err, "short output buffer")

	assert.Equal(t, phase, d.phase)
}

func TestDecimator_ResetMatchesFresh(t *testing.T) {
	taps := designTestTaps(t, 16, 2)
	input := testutil.Noise(101, 1000, 9)

	d := newTestDecimator[float64](t, 8, 2, len(input), taps)
	first := make([]complex64, d.OutputCount(len(input)))
	_, err := d.Process(input, 2, first, 1)
	require.NoError(t, err)

	d.Reset()
	assert.Zero(t, d.phase)

	again := make([]complex64, d.OutputCount(len(input)))
	_, err = d.Process(input, 2, again, 1)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestDecimator_Workers(t *testing.T) {
	taps := designTestTaps(t, 16, 4)
	d := newTestDecimator[float32](t, 8, 4, 1<<16, taps)

	assert.Equal(t, 1, d.Workers(1, 8), "one output")
	assert.Equal(t, 1, d.Workers(4*parallelMinOutputs-4, 8), "below the parallel threshold")
	assert.Equal(t, 4, d.Workers(4*parallelMinOutputs, 8), "split by outputs per worker")
	assert.Equal(t, 2, d.Workers(1<<16, 2), "capped by limit")
}

func TestNewDecimator_RejectsMismatchedBank(t *testing.T) {
	bank, err := filter.NewBank([]float32{1, 1, 1}, 3, 1)
	require.NoError(t, err)

	_, err = NewDecimator[float32](pipeline.DDCPlan{
		Channels: 4, Taps: 4, Decimation: 2, Filters: 1, MaxInputSize: 8,
	}, bank)
	assert.Error(t, err)

	_, err = NewDecimator[float32](pipeline.DDCPlan{
		Channels: 4, Taps: 3, Decimation: 2, Filters: 1, MaxInputSize: 8,
	}, nil)
	assert.Error(t, err)
}

func BenchmarkDecimator(b *testing.B) {
	taps, err := filter.DesignLowPass(filter.LowPassParams{NumTaps: 256, CutoffFreq: 0.45 / 16, Attenuation: 100, Gain: 1})
	require.NoError(b, err)
	bank, err := filter.NewBank(filter.ToFloat32(taps), len(taps), 1)
	require.NoError(b, err)

	input := testutil.Noise(65536, 8000, 1)
	d, err := NewDecimator[float32](pipeline.DDCPlan{
		Channels: 4096, Taps: 256, Decimation: 16, Filters: 1, MaxInputSize: len(input),
	}, bank)
	require.NoError(b, err)
	out := make([]complex64, len(input)/16)

	b.SetBytes(int64(len(input) * 2))
	b.ResetTimer()
	for b.Loop() {
		if _, err := d.Process(input, 1234, out, 4); err != nil {
			b.Fatal(err)
		}
	}
}
