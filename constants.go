package sdrdsp

// DDC limits and defaults.
const (
	defaultMaxInputSize = 65536 // samples accepted per Process call
	maxDDCTaps          = 8191  // longest filter the design helpers produce
)

// Filter design defaults.
const (
	// Fraction of the decimated Nyquist band kept as passband.
	ddcPassbandFraction = 0.9

	// Stopband attenuation used when the caller passes zero.
	defaultAttenuationDB = 80.0

	nyquist = 0.5
)
