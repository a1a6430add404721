package mathutil

// Bessel series limits.
const (
	besselSeriesQuarter = 4.0 // (x/2)² = x²/4
	besselMaxTerms      = 500 // hard stop; the series converges far earlier
)

// Kaiser & Schafer β formula constants.
const (
	kaiserAttHigh        = 50.0
	kaiserAttMedium      = 21.0
	kaiserBetaHighCoeff  = 0.1102
	kaiserBetaHighOffset = 8.7

	kaiserBetaMediumCoeff1 = 0.5842
	kaiserBetaMediumPower  = 0.4
	kaiserBetaMediumCoeff2 = 0.07886
)

// Filter length estimation constants.
const (
	kaiserLengthOffset     = 8.0
	kaiserLengthMultiplier = 2.285

	minFilterLength     = 3
	maxFilterLength     = 8191
	defaultTransitionBW = 0.01
)
