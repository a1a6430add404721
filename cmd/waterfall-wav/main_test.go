package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdrdsp "github.com/tphakala/go-sdr-dsp"
	"github.com/tphakala/go-sdr-dsp/internal/testutil"
	"github.com/tphakala/go-sdr-dsp/internal/wavio"
)

func TestCapturePattern(t *testing.T) {
	assert.Equal(t, testutil.Alternating(100), capturePattern(100))
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name    string
		want    sdrdsp.Window
		wantErr bool
	}{
		{"rect", sdrdsp.WindowRectangular, false},
		{"", sdrdsp.WindowRectangular, false},
		{"Hann", sdrdsp.WindowHann, false},
		{"hanning", sdrdsp.WindowHann, false},
		{"blackman", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWindow(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newSpectrometer(t *testing.T) *sdrdsp.Spectrometer {
	t.Helper()
	dev, err := sdrdsp.NewDevice(nil)
	require.NoError(t, err)

	wf, err := sdrdsp.NewSpectrometer(dev, &sdrdsp.WaterfallConfig{
		Channels:         16,
		PointsPerPayload: 64,
		Integration:      4,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = wf.Close()
		_ = dev.Close()
	})
	return wf
}

func decodeFloats(b []byte) []float32 {
	out := make([]float32, len(b)/bytesPerFloat32)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*bytesPerFloat32:]))
	}
	return out
}

func TestIntegrate_Synthetic(t *testing.T) {
	wf := newSpectrometer(t)

	// 5 payloads of 64 points are 10 spectra of 32 samples: two full windows.
	var buf bytes.Buffer
	src := &syntheticSource{pattern: capturePattern(64), remaining: 5}
	payloads, windows, err := integrate(wf, src, &buf)
	require.NoError(t, err)
	assert.Equal(t, 5, payloads)
	assert.Equal(t, 2, windows)
	assert.Equal(t, 0, wf.Pending())
	assert.Equal(t, 64, wf.Buffered())

	spectra := decodeFloats(buf.Bytes())
	require.Len(t, spectra, 2*16)

	// Period 16 over a 32-point FFT lands in bin 2; identical payloads give
	// identical windows.
	assert.Equal(t, 2, testutil.ArgMax(spectra[:16]))
	assert.Equal(t, spectra[:16], spectra[16:])
}

func TestIntegrate_WAVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	w, err := wavio.Create(path, 8000, 1)
	require.NoError(t, err)
	// 300 samples: four whole payloads and a dropped tail of 44.
	require.NoError(t, w.WriteInt16(testutil.Tone(300, 0.25, 1000, 0)))
	require.NoError(t, w.Close())

	r, err := wavio.Open(path, 0)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	wf := newSpectrometer(t)
	var buf bytes.Buffer
	payloads, windows, err := integrate(wf, &wavSource{r: r}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 4, payloads)
	assert.Equal(t, 2, windows)

	spectra := decodeFloats(buf.Bytes())
	require.Len(t, spectra, 2*16)
	// 0.25 cycles/sample over 32 points is bin 8.
	assert.Equal(t, 8, testutil.ArgMax(spectra[:16]))
}
