package interp

import (
	"go.ngs.io/regrid/internal/domain"
)

// closer reports whether neighbour a, at distance da, wins over neighbour b.
// Distances that differ decide; on a tie the higher index of the same
// parity wins, and an odd index beats an even one.
func closer(da, db float64, a, b int) bool {
	if !domain.Same(da, db) {
		return da < db
	}
	if a%2 == b%2 {
		return a > b
	}
	return a%2 > b%2
}

// nearestIndex returns the position of the nearest neighbour accepted by
// keep, or -1.
func nearestIndex(where domain.Point, nbrs []domain.FieldPoint, keep func(domain.FieldPoint) bool) int {
	best, bestDist := -1, 0.0
	for i, n := range nbrs {
		if keep != nil && !keep(n) {
			continue
		}
		d := where.EarthDistance(n.Point)
		if best < 0 || closer(d, bestDist, i, best) {
			best, bestDist = i, d
		}
	}
	return best
}

func nearestValue(where domain.Point, nbrs []domain.FieldPoint) float64 {
	return nbrs[nearestIndex(where, nbrs, nil)].Value
}

func nearestWeights(where domain.Point, nbrs []domain.FieldPoint) []float64 {
	w := make([]float64, len(nbrs))
	if i := nearestIndex(where, nbrs, nil); i >= 0 {
		w[i] = 1
	}
	return w
}

// NearestNeighbour takes the value of the closest neighbour.
type NearestNeighbour struct {
	base
}

func (n *NearestNeighbour) Value(where domain.Point, nbrs []domain.FieldPoint) (float64, error) {
	if len(nbrs) == 0 {
		return n.mv(), nil
	}
	return nearestValue(where, nbrs), nil
}

func (n *NearestNeighbour) Weights(where domain.Point, nbrs []domain.FieldPoint) ([]float64, error) {
	return nearestWeights(where, nbrs), nil
}

func (n *NearestNeighbour) String() string { return KindNearestNeighbour.String() }

// NearestNeighbourAdjusted takes the value of the closest neighbour that is
// not missing.
type NearestNeighbourAdjusted struct {
	base
}

func (n *NearestNeighbourAdjusted) Value(where domain.Point, nbrs []domain.FieldPoint) (float64, error) {
	return nearestPresent(where, nbrs, n.mv()), nil
}

// Weights is not defined: the chosen neighbour depends on the samples.
func (n *NearestNeighbourAdjusted) Weights(domain.Point, []domain.FieldPoint) ([]float64, error) {
	return nil, domain.Unimplemented("NearestNeighbourAdjusted.Weights")
}

func (n *NearestNeighbourAdjusted) String() string { return KindNearestNeighbourAdjusted.String() }

// nearestPresent returns the value of the nearest non-missing neighbour, or
// mv when every neighbour is missing.
func nearestPresent(where domain.Point, nbrs []domain.FieldPoint, mv float64) float64 {
	i := nearestIndex(where, nbrs, func(n domain.FieldPoint) bool { return !n.IsMissing(mv) })
	if i < 0 {
		return mv
	}
	return nbrs[i].Value
}
