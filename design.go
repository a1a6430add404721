package sdrdsp

import (
	"fmt"

	"github.com/tphakala/go-sdr-dsp/internal/filter"
	"github.com/tphakala/go-sdr-dsp/internal/mathutil"
)

// DesignDDCFilter designs a Kaiser-windowed sinc low-pass suitable for a
// DDC decimating by decimation: the passband ends at 90% of the decimated
// Nyquist frequency and the taps sum to 1.
//
// taps = 0 picks the length from the attenuation and transition width.
// attenuationDB = 0 selects 80 dB.
func DesignDDCFilter(taps, decimation int, attenuationDB float64) ([]float32, error) {
	if decimation < 1 {
		return nil, fmt.Errorf("%w: decimation must be at least 1", ErrInvalidConfig)
	}
	if taps < 0 || taps > maxDDCTaps {
		return nil, fmt.Errorf("%w: taps must be in [0, %d]", ErrInvalidConfig, maxDDCTaps)
	}
	if attenuationDB < 0 {
		return nil, fmt.Errorf("%w: attenuation must not be negative", ErrInvalidConfig)
	}
	if attenuationDB == 0 {
		attenuationDB = defaultAttenuationDB
	}

	band := nyquist / float64(decimation)
	cutoff := ddcPassbandFraction * band
	if taps == 0 {
		taps = mathutil.EstimateFilterLength(attenuationDB, (1-ddcPassbandFraction)*band)
	}
	if taps == 1 {
		return []float32{1}, nil
	}

	h, err := filter.DesignLowPass(filter.LowPassParams{
		NumTaps:     taps,
		CutoffFreq:  cutoff,
		Attenuation: attenuationDB,
		Gain:        1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return filter.ToFloat32(h), nil
}

// DesignDDCFilterBank returns subBands copies of the DesignDDCFilter
// prototype laid out for DDCConfig.Coefficients.
func DesignDDCFilterBank(taps, decimation, subBands int, attenuationDB float64) ([]float32, error) {
	if subBands < 1 {
		return nil, fmt.Errorf("%w: sub-bands must be at least 1", ErrInvalidConfig)
	}

	proto, err := DesignDDCFilter(taps, decimation, attenuationDB)
	if err != nil {
		return nil, err
	}

	bank := make([]float32, 0, len(proto)*subBands)
	for range subBands {
		bank = append(bank, proto...)
	}
	return bank, nil
}
