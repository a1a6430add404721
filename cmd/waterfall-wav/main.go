// Command waterfall-wav integrates power spectra of a WAV recording, or of
// the synthetic ±1 capture pattern, and writes every completed window to a
// raw little-endian float32 file, Channels values per window.
//
// Usage:
//
//	waterfall-wav -channels 1024 -integration 64 input.wav spectra.f32
//	waterfall-wav -synthetic 100000 -channels 16384 -batch 1024 -integration 128 a.dat
package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"

	sdrdsp "github.com/tphakala/go-sdr-dsp"
	"github.com/tphakala/go-sdr-dsp/internal/wavio"
)

const (
	defaultChannels = 1024
	defaultPayload  = 4096
	bytesPerFloat32 = 4
	writerBuffer    = 1 << 20
)

var (
	channels    = flag.Int("channels", defaultChannels, "Frequency bins per spectrum")
	payload     = flag.Int("payload", defaultPayload, "Points per payload")
	batch       = flag.Int("batch", 0, "Spectra per FFT batch (0 = integration)")
	integration = flag.Int("integration", 64, "Spectra averaged per output window")
	window      = flag.String("window", "rect", "FFT window: rect, hann")
	synthetic   = flag.Int("synthetic", 0, "Process this many synthetic payloads instead of a WAV file")
	inChannel   = flag.Int("input-channel", 0, "WAV channel to read")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	args := flag.Args()
	wantArgs := 2
	if *synthetic > 0 {
		wantArgs = 1
	}
	if len(args) < wantArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.f32\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -synthetic N [options] output.f32\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(args); err != nil {
		glog.Exit(err)
	}
}

// payloadSource yields successive payloads; io.EOF ends the stream.
type payloadSource interface {
	Next(dst []int16) error
}

// syntheticSource repeats the ±1 capture pattern a fixed number of times.
type syntheticSource struct {
	pattern   []int16
	remaining int
}

// capturePattern is a ±1 square wave with period 16, nine samples high.
func capturePattern(n int) []int16 {
	p := make([]int16, n)
	for i := range p {
		p[i] = 1
		if i%16 > 8 {
			p[i] = -1
		}
	}
	return p
}

func (s *syntheticSource) Next(dst []int16) error {
	if s.remaining == 0 {
		return io.EOF
	}
	s.remaining--
	copy(dst, s.pattern)
	return nil
}

// wavSource reads whole payloads from a WAV file, dropping a short tail.
type wavSource struct {
	r *wavio.Reader
}

func (s *wavSource) Next(dst []int16) error {
	n := 0
	for n < len(dst) {
		got, err := s.r.Read(dst[n:])
		if err != nil {
			return err
		}
		n += got
	}
	return nil
}

func parseWindow(name string) (sdrdsp.Window, error) {
	switch strings.ToLower(name) {
	case "rect", "rectangular", "":
		return sdrdsp.WindowRectangular, nil
	case "hann", "hanning":
		return sdrdsp.WindowHann, nil
	default:
		return 0, fmt.Errorf("unknown window %q", name)
	}
}

func run(args []string) (err error) {
	win, err := parseWindow(*window)
	if err != nil {
		return err
	}

	var (
		source     payloadSource
		outputPath string
	)
	if *synthetic > 0 {
		source = &syntheticSource{pattern: capturePattern(*payload), remaining: *synthetic}
		outputPath = args[0]
	} else {
		r, err := wavio.Open(args[0], *inChannel)
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()
		glog.V(1).Infof("input: %s, %d Hz, %d channels, %d-bit", args[0], r.Rate, r.Channels, r.BitDepth)
		source = &wavSource{r: r}
		outputPath = args[1]
	}

	dev, err := sdrdsp.NewDevice(nil)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := dev.Close(); err == nil {
			err = closeErr
		}
	}()

	wf, err := sdrdsp.NewSpectrometer(dev, &sdrdsp.WaterfallConfig{
		Channels:         *channels,
		PointsPerPayload: *payload,
		Batch:            *batch,
		Integration:      *integration,
		Window:           win,
	})
	if err != nil {
		return err
	}
	defer func() { _ = wf.Close() }()

	info := wf.Info()
	glog.V(1).Infof("waterfall: nch=%d npp=%d nbatch=%d nint=%d window=%s workers=%d",
		info.Channels, info.PointsPerPayload, info.Batch, info.Integration, info.Window, info.Workers)

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	w := bufio.NewWriterSize(f, writerBuffer)

	start := time.Now()
	payloads, windows, err := integrate(wf, source, w)
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write spectra: %w", err)
	}

	fmt.Printf("Integrated %d payloads -> %d windows in %s\n", payloads, windows, filepath.Base(outputPath))
	fmt.Printf("  Duration: %.2fs\n", time.Since(start).Seconds())
	return nil
}

// integrate feeds every payload to the spectrometer and writes each
// completed window to w as little-endian float32.
func integrate(wf *sdrdsp.Spectrometer, source payloadSource, w io.Writer) (payloads, windows int, err error) {
	nch := wf.Info().Channels
	npp := wf.Info().PointsPerPayload

	in := make([]int16, npp)
	out := make([]float32, wf.MaxOutputSize(npp))
	raw := make([]byte, 0, len(out)*bytesPerFloat32)

	for {
		if err := source.Next(in); err != nil {
			if errors.Is(err, io.EOF) {
				return payloads, windows, nil
			}
			return payloads, windows, err
		}
		payloads++

		n, err := wf.Process(in, out)
		if err != nil {
			return payloads, windows, fmt.Errorf("payload %d: %w", payloads, err)
		}
		if n == 0 {
			continue
		}

		raw = raw[:0]
		for _, v := range out[:n*nch] {
			raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(v))
		}
		if _, err := w.Write(raw); err != nil {
			return payloads, windows, fmt.Errorf("failed to write spectra: %w", err)
		}
		windows += n
		glog.V(2).Infof("payload %d: %d windows", payloads, n)
	}
}
