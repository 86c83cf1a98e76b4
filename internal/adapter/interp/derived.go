package interp

import (
	"fmt"
	"math"
	"strings"

	"go.ngs.io/regrid/internal/domain"
)

// Parameter is a subgrid orography parameter derived from the K, L and M
// terms of the gradient covariance (see KLM).
type Parameter int

const (
	Anisotropy Parameter = iota + 1
	Orientation
	Slope
)

func (p Parameter) String() string {
	switch p {
	case Anisotropy:
		return "anisotropy"
	case Orientation:
		return "orientation"
	case Slope:
		return "slope"
	default:
		return fmt.Sprintf("Parameter(%d)", int(p))
	}
}

// ParseParameter maps a parameter name to its Parameter.
func ParseParameter(name string) (Parameter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "anisotropy":
		return Anisotropy, nil
	case "orientation":
		return Orientation, nil
	case "slope":
		return Slope, nil
	}
	return 0, domain.InvalidArgument("interp.ParseParameter", "unknown derived parameter %q", name)
}

// Calculate evaluates the parameter, with x = sqrt(l² + m²):
//
//	anisotropy  = sqrt((k - x) / (k + x)), 1 on flat terrain
//	orientation = atan2(m, l) / 2, in radians
//	slope       = sqrt(k + x)
func (p Parameter) Calculate(k, l, m float64) float64 {
	x := math.Sqrt(l*l + m*m)
	switch p {
	case Anisotropy:
		if domain.IsZero(k + x) {
			return 1
		}
		return math.Sqrt(math.Max(0, (k-x)/(k+x)))
	case Orientation:
		return 0.5 * math.Atan2(m, l)
	case Slope:
		return math.Sqrt(math.Max(0, k+x))
	}
	return math.NaN()
}

// Derive is Calculate returning mv when any input is missing.
func Derive(p Parameter, k, l, m, mv float64) float64 {
	if k == mv || l == mv || m == mv {
		return mv
	}
	return p.Calculate(k, l, m)
}

// DeriveField applies Derive point by point.
func DeriveField(p Parameter, k, l, m []float64, mv float64) ([]float64, error) {
	if len(l) != len(k) || len(m) != len(k) {
		return nil, domain.InvalidArgument("interp.DeriveField", "k, l and m have %d, %d and %d values", len(k), len(l), len(m))
	}
	out := make([]float64, len(k))
	for i := range k {
		out[i] = Derive(p, k[i], l[i], m[i], mv)
	}
	return out, nil
}

// StandardDeviation combines the interpolated mean of the squared field and
// the interpolated mean of the field.
func StandardDeviation(meanSquare, mean, mv float64) float64 {
	if meanSquare == mv || mean == mv {
		return mv
	}
	return math.Sqrt(math.Max(0, meanSquare-mean*mean))
}
