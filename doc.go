// Package sdrdsp provides two streaming DSP engines for software-defined
// radio receivers in pure Go: a multi-channel digital down-converter (DDC)
// and a waterfall spectrometer.
//
// # Features
//
//   - DDC: LO mixing, low-pass FIR and integer decimation of real 16-bit
//     samples into complex baseband, with filter history and decimation
//     phase carried across calls
//   - Optional per-sub-band filters selected by LO channel
//   - Waterfall: batched real FFT power spectra averaged over a fixed
//     number of spectra, emitted in arrival order
//   - Kaiser windowed-sinc filter design helpers
//   - SIMD dot products via github.com/tphakala/simd
//   - A shared [Device] bounding worker goroutines and buffer memory across
//     all engines
//
// # Quick Start
//
// Down-convert channel 3 of 16:
//
//	dev, err := sdrdsp.NewDevice(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	taps, err := sdrdsp.DesignDDCFilter(128, 16, 80)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ddc, err := sdrdsp.NewDDC(dev, &sdrdsp.DDCConfig{
//	    Channels:     16,
//	    Taps:         len(taps),
//	    Decimation:   16,
//	    Coefficients: taps,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ddc.Close()
//
//	for payload := range payloads {
//	    if _, err := ddc.Process(payload, 3); err != nil {
//	        log.Fatal(err)
//	    }
//	    consume(ddc.Output())
//	}
//
// Integrate spectra:
//
//	wf, err := sdrdsp.NewSpectrometer(dev, &sdrdsp.WaterfallConfig{
//	    Channels:         1024,
//	    PointsPerPayload: 4096,
//	    Integration:      64,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer wf.Close()
//
//	out := make([]float32, wf.MaxOutputSize(4096))
//	for payload := range payloads {
//	    windows, err := wf.Process(payload, out)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for w := range windows {
//	        plot(out[w*1024 : (w+1)*1024])
//	    }
//	}
//
// # Down-Converter
//
// Sample t of the stream is multiplied by exp(−j2π·ch·t/N), where N is
// [DDCConfig.Channels] and ch the LO channel passed to [DDC.Process]. The
// product is filtered by an M-tap FIR and every Decimation-th filter output
// is kept. Each call may select a different channel; the filter history is
// kept unmixed, so output after a channel change equals what a stream
// processed on the new channel throughout would give.
//
// # Spectrometer
//
// Each raw spectrum is the squared magnitude of a real FFT over
// 2·[WaterfallConfig.Channels] samples, keeping bins 0 to Channels−1.
// [WaterfallConfig.Batch] spectra are transformed together; every
// [WaterfallConfig.Integration] spectra form one output window, their mean.
// [Spectrometer.Process] reports how many windows it completed.
//
// # Thread Safety
//
// Each [DDC] and [Spectrometer] serializes its own calls, and Close waits
// for an in-flight call. Distinct resources run concurrently, sharing the
// worker slots of their [Device].
package sdrdsp
