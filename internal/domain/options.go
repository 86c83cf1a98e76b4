package domain

// Options carries the switches that alter or instrument a regridding pass.
// They are fixed at construction time; the core never reads the process
// environment.
type Options struct {
	// LinearPoleDerivative makes partial derivatives on the first and last
	// rows use one-sided differences extrapolated to the pole.
	LinearPoleDerivative bool

	// CheckConservation compares the weighted means of input and output
	// fields after each pass.
	CheckConservation bool

	// EmosPrecisionCompat floors generated longitude increments to five
	// decimals, reproducing historical EMOS output bit for bit.
	EmosPrecisionCompat bool

	// Trace enables per-chunk debug logging in the use case.
	Trace bool
}
