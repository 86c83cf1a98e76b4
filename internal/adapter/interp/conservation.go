package interp

import (
	"gonum.org/v1/gonum/floats"

	"go.ngs.io/regrid/internal/domain"
)

// CheckConservation returns the weighted mean Σ v·w / Σ w of a field. Missing
// samples add nothing to the numerator but their weight stays in the
// denominator, so masked areas pull the mean towards zero.
func CheckConservation(values, weights []float64, mv float64) (float64, error) {
	const op = "interp.CheckConservation"
	if len(values) != len(weights) {
		return 0, domain.InvalidArgument(op, "%d values and %d weights", len(values), len(weights))
	}
	total := floats.Sum(weights)
	if domain.IsZero(total) {
		return 0, domain.InvalidArgument(op, "weights sum to zero")
	}
	var sum float64
	for i, v := range values {
		if v == mv {
			continue
		}
		sum += v * weights[i]
	}
	return sum / total, nil
}

// NeighboursNeeded returns the ring size a cell method scan needs for input
// and output north-south increments nsIn and nsOut.
func NeighboursNeeded(nsIn, nsOut float64) int {
	if nsOut <= nsIn {
		return 16
	}
	if int(nsOut/nsIn) > 3 {
		return 64
	}
	return 36
}
