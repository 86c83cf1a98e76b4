package interp

import (
	"math"

	"go.ngs.io/regrid/internal/domain"
)

// Linear interpolates between one pair of neighbours sharing a latitude
// (along the parallel) or a longitude (along the meridian).
//
// Numbering of the points, I is the target:
//
//	0       1
//	    I
//	2       3
type Linear struct {
	base
}

// alongParallel returns the weights of left and right for the target lon.
func alongParallel(lon float64, left, right domain.FieldPoint) (float64, float64) {
	lon = alignLon(lon, left.Longitude)
	lw := math.Abs(lon - left.Longitude)
	rw := math.Abs(right.Longitude - lon)
	if domain.IsZero(lw + rw) {
		return 1, 0
	}
	low := rw / (rw + lw)
	return low, 1 - low
}

// alongMeridian returns the weights of up and down for the target lat.
func alongMeridian(lat float64, up, down domain.FieldPoint) (float64, float64) {
	uw := math.Abs(up.Latitude - lat)
	dw := math.Abs(lat - down.Latitude)
	if domain.IsZero(uw + dw) {
		return 1, 0
	}
	low := dw / (dw + uw)
	return low, 1 - low
}

func (l *Linear) Weights(where domain.Point, nbrs []domain.FieldPoint) ([]float64, error) {
	size := len(nbrs)
	if size == 0 || size > 4 {
		return l.missingNeighbourWeights(where, nbrs)
	}
	w := make([]float64, size)
	if size == 1 {
		w[0] = 1
		return w, nil
	}

	sameLat := func(a, b int) bool { return domain.Same(nbrs[a].Latitude, nbrs[b].Latitude) }
	sameLon := func(a, b int) bool { return domain.Same(nbrs[a].Longitude, nbrs[b].Longitude) }
	parallel := func(a, b int) { w[a], w[b] = alongParallel(where.Longitude, nbrs[a], nbrs[b]) }
	meridian := func(a, b int) { w[a], w[b] = alongMeridian(where.Latitude, nbrs[a], nbrs[b]) }

	switch size {
	case 2:
		switch {
		case sameLat(0, 1):
			parallel(0, 1)
		case sameLon(0, 1):
			meridian(0, 1)
		default:
			return nearestWeights(where, nbrs), nil
		}
	case 3:
		switch {
		case sameLat(0, 1):
			parallel(0, 1)
		case sameLat(1, 2):
			parallel(1, 2)
		case sameLon(0, 1):
			meridian(0, 1)
		case sameLon(1, 2):
			meridian(1, 2)
		default:
			return nearestWeights(where, nbrs), nil
		}
	case 4:
		switch {
		case sameLat(0, 1):
			parallel(0, 1)
		case sameLat(2, 3):
			parallel(2, 3)
		case sameLon(0, 2):
			meridian(0, 2)
		case sameLon(1, 3):
			meridian(1, 3)
		default:
			return nearestWeights(where, nbrs), nil
		}
	}
	return w, nil
}

func (l *Linear) Value(where domain.Point, nbrs []domain.FieldPoint) (float64, error) {
	if len(nbrs) == 0 || len(nbrs) > 4 {
		return l.missingNeighbours(where, nbrs)
	}
	w, err := l.Weights(where, nbrs)
	if err != nil {
		return 0, err
	}
	return combine(w, nbrs), nil
}

func (l *Linear) String() string { return KindLinear.String() }
