// Command design-filter designs a DDC low-pass filter and prints its taps
// and frequency response.
//
// Usage:
//
//	design-filter -decimation 16 -att 80
//	design-filter -decimation 8 -taps 255 -format go > taps.go
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/golang/glog"

	sdrdsp "github.com/tphakala/go-sdr-dsp"
	"github.com/tphakala/go-sdr-dsp/internal/filter"
	"github.com/tphakala/go-sdr-dsp/internal/mathutil"
)

const (
	defaultDecimation = 16
	defaultPoints     = 2048
	tapsPerLine       = 6
)

var (
	decimation  = flag.Int("decimation", defaultDecimation, "Decimation factor the filter serves")
	taps        = flag.Int("taps", 0, "Filter length (0 = derived from attenuation)")
	attenuation = flag.Float64("att", 80, "Stopband attenuation in dB")
	points      = flag.Int("points", defaultPoints, "Frequency response points from DC to Nyquist")
	format      = flag.String("format", "text", "Output format: text, go")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	h, err := sdrdsp.DesignDDCFilter(*taps, *decimation, *attenuation)
	if err != nil {
		glog.Exit(err)
	}

	switch *format {
	case "text":
		printReport(os.Stdout, h, *decimation, *attenuation, *points)
	case "go":
		printGo(os.Stdout, h)
	default:
		glog.Exitf("unknown format %q, pick one of: text, go", *format)
	}
}

// responseSummary holds the figures of merit of a DDC filter.
type responseSummary struct {
	dcGain        float64
	passbandDB    float64 // worst deviation from 0 dB below the passband edge
	stopbandDB    float64 // highest level above the stopband edge
	passbandEdge  float64
	stopbandEdge  float64
	attenuationDB float64
}

func summarize(h []float32, dec int, att float64, numPoints int) responseSummary {
	taps := make([]float64, len(h))
	var dc float64
	for i, v := range h {
		taps[i] = float64(v)
		dc += float64(v)
	}

	band := 0.5 / float64(dec)
	s := responseSummary{
		dcGain:        dc,
		passbandEdge:  0.8 * band,
		stopbandEdge:  band,
		stopbandDB:    -1000,
		attenuationDB: att,
	}
	if att == 0 {
		s.attenuationDB = 80
	}

	resp := filter.ComputeFrequencyResponse(taps, numPoints)
	for i, f := range resp.Frequencies {
		db := filter.MagnitudeDB(resp.Magnitude[i])
		switch {
		case f <= s.passbandEdge:
			s.passbandDB = max(s.passbandDB, math.Abs(db))
		case f >= s.stopbandEdge:
			s.stopbandDB = max(s.stopbandDB, db)
		}
	}
	return s
}

func printReport(w io.Writer, h []float32, dec int, att float64, numPoints int) {
	s := summarize(h, dec, att, numPoints)

	fmt.Fprintln(w, "=== DDC Filter ===")
	fmt.Fprintf(w, "  Taps:           %d\n", len(h))
	fmt.Fprintf(w, "  Decimation:     %d\n", dec)
	fmt.Fprintf(w, "  Kaiser beta:    %.4f\n", mathutil.KaiserBeta(s.attenuationDB))
	fmt.Fprintf(w, "  DC gain:        %.10f\n", s.dcGain)
	fmt.Fprintf(w, "  Passband ripple (f <= %.5f): %.5f dB\n", s.passbandEdge, s.passbandDB)
	fmt.Fprintf(w, "  Stopband peak   (f >= %.5f): %.2f dB\n", s.stopbandEdge, s.stopbandDB)

	fmt.Fprintln(w, "\nCoefficients:")
	for i := 0; i < len(h); i += tapsPerLine {
		fmt.Fprintf(w, "  %4d:", i)
		for _, v := range h[i:min(i+tapsPerLine, len(h))] {
			fmt.Fprintf(w, " % .8e", v)
		}
		fmt.Fprintln(w)
	}
}

func printGo(w io.Writer, h []float32) {
	fmt.Fprintln(w, "var ddcTaps = []float32{")
	for i := 0; i < len(h); i += tapsPerLine {
		fmt.Fprint(w, "\t")
		for j, v := range h[i:min(i+tapsPerLine, len(h))] {
			if j > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "%.9g,", v)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "}")
}
