// Command ddc-wav down-converts one LO channel of a WAV recording into a
// stereo WAV file holding the complex baseband signal (left = I, right = Q).
//
// Usage:
//
//	ddc-wav -channels 16 -ch 3 input.wav iq.wav
//	ddc-wav -channels 64 -decimation 32 -taps 512 -ch 10 input.wav iq.wav
//	ddc-wav -channels 8 -subbands 2 -att 100 -v 1 -logtostderr input.wav iq.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"

	sdrdsp "github.com/tphakala/go-sdr-dsp"
	"github.com/tphakala/go-sdr-dsp/internal/simdops"
	"github.com/tphakala/go-sdr-dsp/internal/wavio"
)

const (
	defaultChannels  = 16
	defaultChunkSize = 65536
	minRequiredArgs  = 2
	iqChannels       = 2
)

var (
	channels    = flag.Int("channels", defaultChannels, "Number of LO channels the input band is split into")
	loChannel   = flag.Int("ch", 1, "LO channel to extract, in [0, channels)")
	decimation  = flag.Int("decimation", 0, "Decimation factor (0 = channels)")
	taps        = flag.Int("taps", 0, "Filter length (0 = derived from attenuation)")
	subBands    = flag.Int("subbands", 1, "Number of filter sub-bands")
	attenuation = flag.Float64("att", 80, "Filter stopband attenuation in dB")
	chunkSize   = flag.Int("chunk", defaultChunkSize, "Samples per Process call")
	inChannel   = flag.Int("input-channel", 0, "WAV channel to read")
	gain        = flag.Float64("gain", 1, "Output gain applied before 16-bit quantization")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(args[0], args[1]); err != nil {
		glog.Exit(err)
	}
}

type ddcStats struct {
	inputRate     int
	outputRate    int
	inputSamples  int64
	outputSamples int64
	taps          int
}

func run(inputPath, outputPath string) (err error) {
	dec := *decimation
	if dec == 0 {
		dec = *channels
	}

	coeffs, err := sdrdsp.DesignDDCFilterBank(*taps, dec, *subBands, *attenuation)
	if err != nil {
		return fmt.Errorf("filter design failed: %w", err)
	}
	ntaps := len(coeffs) / *subBands

	dev, err := sdrdsp.NewDevice(nil)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := dev.Close(); err == nil {
			err = closeErr
		}
	}()

	ddc, err := sdrdsp.NewDDC(dev, &sdrdsp.DDCConfig{
		Channels:     *channels,
		Taps:         ntaps,
		Decimation:   dec,
		SubBands:     *subBands,
		Coefficients: coeffs,
		MaxInputSize: *chunkSize,
	})
	if err != nil {
		return err
	}
	defer func() { _ = ddc.Close() }()

	info := dev.Info()
	glog.V(1).Infof("device: %d workers, SIMD %s", info.Workers, info.SIMD)
	glog.V(1).Infof("ddc: N=%d M=%d NDEC=%d K=%d ch=%d", *channels, ntaps, dec, *subBands, *loChannel)

	input, err := wavio.Open(inputPath, *inChannel)
	if err != nil {
		return err
	}
	defer func() { _ = input.Close() }()

	outputRate := max(1, input.Rate/dec)
	output, err := wavio.Create(outputPath, outputRate, iqChannels)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	start := time.Now()
	stats := &ddcStats{inputRate: input.Rate, outputRate: outputRate, taps: ntaps}
	if err := convert(ddc, input, output, stats); err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Down-converted %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  channel %d of %d, %d taps, decimation %d\n", *loChannel, *channels, stats.taps, dec)
	fmt.Printf("  %d Hz -> %d Hz, %d samples -> %d I/Q samples\n",
		stats.inputRate, stats.outputRate, stats.inputSamples, stats.outputSamples)
	fmt.Printf("  Duration: %.2fs\n", elapsed.Seconds())
	return nil
}

// convert streams the input through the DDC and writes interleaved I/Q.
func convert(ddc *sdrdsp.DDC, input *wavio.Reader, output *wavio.Writer, stats *ddcStats) error {
	ops := simdops.Float32Ops()

	samples := make([]int16, *chunkSize)
	maxOut := ddc.MaxOutputSize()
	re := make([]float32, maxOut)
	im := make([]float32, maxOut)
	interleaved := make([]float32, iqChannels*maxOut)
	pcm := make([]int16, iqChannels*maxOut)

	for {
		n, err := input.Read(samples)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		stats.inputSamples += int64(n)

		count, err := ddc.Process(samples[:n], *loChannel)
		if err != nil {
			return fmt.Errorf("ddc failed after %d samples: %w", stats.inputSamples, err)
		}
		if count == 0 {
			continue
		}

		for i, z := range ddc.Output() {
			re[i] = real(z)
			im[i] = imag(z)
		}
		ops.Interleave2(interleaved[:iqChannels*count], re[:count], im[:count])
		quantize(pcm[:iqChannels*count], interleaved[:iqChannels*count], float32(*gain))

		if err := output.WriteInt16(pcm[:iqChannels*count]); err != nil {
			return fmt.Errorf("failed to write I/Q data: %w", err)
		}
		stats.outputSamples += int64(count)
		glog.V(2).Infof("chunk: %d in, %d out", n, count)
	}
}

// quantize scales and clamps float samples to int16.
func quantize(dst []int16, src []float32, gain float32) {
	for i, v := range src {
		s := math.Round(float64(v * gain))
		dst[i] = int16(min(max(s, math.MinInt16), math.MaxInt16))
	}
}
