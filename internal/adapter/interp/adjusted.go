package interp

import (
	"math"

	"go.ngs.io/regrid/internal/domain"
)

// DoubleLinearBitmapAdjusted is a bilinear kernel for masked fields: when any
// of the four neighbours is missing it falls back to the nearest present
// neighbour. In direction mode samples are angles in degrees and the blend
// runs on their unit vectors.
type DoubleLinearBitmapAdjusted struct {
	base
}

// stencil holds the blending fractions of a 2x2 stencil: north/south
// latitude weights and the east-west weights of each row.
type stencil struct {
	north, south float64
	nWest, nEast float64
	sWest, sEast float64
}

func newStencil(where domain.Point, nbrs []domain.FieldPoint) stencil {
	var s stencil
	s.south = fraction(nbrs[0].Latitude, where.Latitude, nbrs[0].Latitude-nbrs[2].Latitude)
	s.north = 1 - s.south

	dNW := rowFraction(where.Longitude, nbrs[0], nbrs[1])
	dSW := rowFraction(where.Longitude, nbrs[2], nbrs[3])
	s.nWest, s.nEast = 1-dNW, dNW
	s.sWest, s.sEast = 1-dSW, dSW
	return s
}

func (s stencil) weights() []float64 {
	return []float64{s.nWest * s.north, s.nEast * s.north, s.sWest * s.south, s.sEast * s.south}
}

func (d *DoubleLinearBitmapAdjusted) Value(where domain.Point, nbrs []domain.FieldPoint) (float64, error) {
	if len(nbrs) < 4 {
		return d.mv(), nil
	}
	if domain.AnyMissing(nbrs[:4], d.mv()) {
		return nearestPresent(where, nbrs, d.mv()), nil
	}
	s := newStencil(where, nbrs)
	if !d.cfg.Direction {
		return combine(s.weights(), nbrs), nil
	}

	w := s.weights()
	var cc, ss float64
	for i := 0; i < 4; i++ {
		rad := nbrs[i].Value * math.Pi / 180
		cc += w[i] * math.Cos(rad)
		ss += w[i] * math.Sin(rad)
	}
	deg := math.Atan2(ss, cc) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg, nil
}

// Weights is Unimplemented in direction mode, where the value is not a
// linear combination of the samples.
func (d *DoubleLinearBitmapAdjusted) Weights(where domain.Point, nbrs []domain.FieldPoint) ([]float64, error) {
	if d.cfg.Direction {
		return nil, domain.Unimplemented("DoubleLinearBitmapAdjusted.Weights (direction)")
	}
	if len(nbrs) < 4 {
		return make([]float64, len(nbrs)), nil
	}
	if domain.AnyMissing(nbrs[:4], d.mv()) {
		w := make([]float64, len(nbrs))
		keep := func(n domain.FieldPoint) bool { return !n.IsMissing(d.mv()) }
		if i := nearestIndex(where, nbrs, keep); i >= 0 {
			w[i] = 1
		}
		return w, nil
	}
	w := newStencil(where, nbrs).weights()
	return append(w, make([]float64, len(nbrs)-4)...), nil
}

func (d *DoubleLinearBitmapAdjusted) String() string {
	if d.cfg.Direction {
		return KindDoubleLinearBitmapAdjusted.String() + "(direction)"
	}
	return KindDoubleLinearBitmapAdjusted.String()
}
