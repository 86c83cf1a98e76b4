// Package interp turns neighbour samples into interpolated values.
//
// Point kernels implement Interpolator and work from the neighbours a grid
// search returns. Cell methods (averaging and flux conserving) delegate the
// windowing to the input grid and are built with NewCell.
package interp

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"go.ngs.io/regrid/internal/domain"
)

// Interpolator converts the neighbours of a target point into a value.
type Interpolator interface {
	fmt.Stringer

	// Neighbours is the number of neighbours the kernel asks the grid for.
	Neighbours() int

	// Value returns the interpolated value at where.
	Value(where domain.Point, nbrs []domain.FieldPoint) (float64, error)

	// Weights returns one weight per neighbour. Kernels without a linear
	// decomposition return a domain.KindUnimplemented error.
	Weights(where domain.Point, nbrs []domain.FieldPoint) ([]float64, error)
}

// Kind names an interpolation method.
type Kind int

const (
	KindLinear Kind = iota + 1
	KindBiLinear
	KindCubic12pts
	KindNearestNeighbour
	KindNearestNeighbourAdjusted
	KindLinearBitmap
	KindBiLinearBitmap
	KindCubic12ptsBitmap
	KindDoubleLinearBitmapAdjusted
	KindDoubleLinearLSM
	KindAverageWeighted
	KindAverageWeightedLSM
	KindFluxConserving
)

var kindNames = map[Kind]string{
	KindLinear:                     "linear",
	KindBiLinear:                   "bilinear",
	KindCubic12pts:                 "cubic12pts",
	KindNearestNeighbour:           "nearest_neighbour",
	KindNearestNeighbourAdjusted:   "nearest_neighbour_adjusted",
	KindLinearBitmap:               "linear_bitmap",
	KindBiLinearBitmap:             "bilinear_bitmap",
	KindCubic12ptsBitmap:           "cubic12pts_bitmap",
	KindDoubleLinearBitmapAdjusted: "double_linear_bitmap_adjusted",
	KindDoubleLinearLSM:            "double_linear_lsm",
	KindAverageWeighted:            "average_weighted",
	KindAverageWeightedLSM:         "average_weighted_lsm",
	KindFluxConserving:             "flux_conserving",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsCell reports whether the method works on cells rather than neighbours.
func (k Kind) IsCell() bool {
	return k == KindAverageWeighted || k == KindAverageWeightedLSM || k == KindFluxConserving
}

// NeedsLSM reports whether the method requires land-sea masks.
func (k Kind) NeedsLSM() bool {
	return k == KindDoubleLinearLSM || k == KindAverageWeightedLSM
}

// Kinds lists every method in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := KindLinear; k <= KindFluxConserving; k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind maps a method name to its Kind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, domain.InvalidArgument("interp.ParseKind", "unknown interpolation method %q", name)
}

// Config carries the scalar settings of a kernel.
type Config struct {
	// MissingValue is the sentinel of absent samples.
	MissingValue float64

	// LinearOnPole extrapolates linearly from two neighbours for targets on
	// a pole. AverageOnPole uses the pole averages instead.
	LinearOnPole     bool
	AverageOnPole    bool
	NorthPoleAverage float64
	SouthPoleAverage float64

	// Direction makes DoubleLinearBitmapAdjusted treat samples as angles in
	// degrees.
	Direction bool

	// LSMIn and LSMOut are the land-sea masks of the input and output grids,
	// indexed by storage offset.
	LSMIn  []float64
	LSMOut []float64
}

// DefaultConfig returns a configuration using domain.MissingValue.
func DefaultConfig() Config {
	return Config{MissingValue: domain.MissingValue}
}

// New builds the point kernel of kind.
func New(kind Kind, cfg Config) (Interpolator, error) {
	const op = "interp.New"
	b := base{cfg: cfg}
	switch kind {
	case KindLinear:
		return &Linear{base: b.with(4)}, nil
	case KindBiLinear:
		return &BiLinear{base: b.with(4)}, nil
	case KindCubic12pts:
		return &Cubic12pts{base: b.with(12)}, nil
	case KindNearestNeighbour:
		return &NearestNeighbour{base: b.with(4)}, nil
	case KindNearestNeighbourAdjusted:
		return &NearestNeighbourAdjusted{base: b.with(4)}, nil
	case KindLinearBitmap:
		return NewBitmap(&Linear{base: b.with(4)}, cfg), nil
	case KindBiLinearBitmap:
		return NewBitmap(&BiLinear{base: b.with(4)}, cfg), nil
	case KindCubic12ptsBitmap:
		return NewBitmap(&Cubic12pts{base: b.with(12)}, cfg), nil
	case KindDoubleLinearBitmapAdjusted:
		return &DoubleLinearBitmapAdjusted{base: b.with(4)}, nil
	case KindDoubleLinearLSM:
		if cfg.LSMIn == nil || cfg.LSMOut == nil {
			return nil, domain.InvalidArgument(op, "%s needs input and output land-sea masks", kind)
		}
		return &DoubleLinearLSM{base: b.with(4)}, nil
	case KindAverageWeighted, KindAverageWeightedLSM, KindFluxConserving:
		return nil, domain.InvalidArgument(op, "%s is a cell method", kind)
	}
	return nil, domain.Unimplemented(fmt.Sprintf("%s: %s", op, kind))
}

// base holds the settings and the missing-neighbour policy shared by all
// point kernels.
type base struct {
	neighbours int
	cfg        Config
}

func (b base) with(n int) base {
	b.neighbours = n
	return b
}

func (b base) Neighbours() int { return b.neighbours }

func (b base) mv() float64 { return b.cfg.MissingValue }

// missingNeighbours resolves a target with fewer neighbours than the kernel
// needs: pole policies first, then the nearest neighbour while the count is
// tolerated.
func (b base) missingNeighbours(where domain.Point, nbrs []domain.FieldPoint) (float64, error) {
	size := len(nbrs)
	if size == 0 {
		return b.mv(), nil
	}

	northPole := math.Abs(where.Latitude-domain.NorthPole) < domain.AreaFactor
	southPole := math.Abs(where.Latitude-domain.SouthPole) < domain.AreaFactor
	if b.cfg.LinearOnPole {
		if size == 2 && (northPole || southPole) {
			return NewBitmap(&Linear{base: b.with(4)}, b.cfg).Value(where, nbrs)
		}
	} else if b.cfg.AverageOnPole {
		if northPole {
			return b.cfg.NorthPoleAverage, nil
		}
		if southPole {
			return b.cfg.SouthPoleAverage, nil
		}
	}

	if size <= b.neighbours {
		return nearestValue(where, nbrs), nil
	}
	return 0, domain.InvalidArgument("interp.missingNeighbours", "%d neighbours for a %d-point kernel", size, b.neighbours)
}

// missingNeighbourWeights puts the whole weight on the nearest neighbour
// while the neighbour count is tolerated.
func (b base) missingNeighbourWeights(where domain.Point, nbrs []domain.FieldPoint) ([]float64, error) {
	if len(nbrs) == 0 {
		return nil, nil
	}
	if len(nbrs) <= b.neighbours {
		return nearestWeights(where, nbrs), nil
	}
	return nil, domain.InvalidArgument("interp.missingNeighbourWeights", "%d neighbours for a %d-point kernel", len(nbrs), b.neighbours)
}

// combine returns Σ w·v over the neighbours.
func combine(weights []float64, nbrs []domain.FieldPoint) float64 {
	values := make([]float64, len(weights))
	for i := range weights {
		values[i] = nbrs[i].Value
	}
	return floats.Dot(weights, values)
}

// alignLon shifts lon by whole turns to within half a turn of ref, moving
// the target into the longitude frame of its neighbours.
func alignLon(lon, ref float64) float64 {
	for lon-ref > 180.0 {
		lon -= 360.0
	}
	for ref-lon > 180.0 {
		lon += 360.0
	}
	return lon
}

// fraction returns (x - from) / step, or zero for a degenerate step.
func fraction(x, from, step float64) float64 {
	if domain.IsZero(step) {
		return 0
	}
	return (x - from) / step
}
