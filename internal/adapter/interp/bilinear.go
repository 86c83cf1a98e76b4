package interp

import (
	"go.ngs.io/regrid/internal/domain"
)

// BiLinear fits linearly along the two rows of the 2x2 stencil, normalises
// the partial weights and then fits along the meridian.
//
// Formula, with d the signed longitude and latitude distances:
//
//	wNW ∝ dNE · (dSW + dSE) · dS
//	wNE ∝ dNW · (dSW + dSE) · dS
//	wSW ∝ dSE · (dNW + dNE) · dN
//	wSE ∝ dSW · (dNW + dNE) · dN
//
// Numbering of the points, I is the target:
//
//	0       1
//	    I
//	2       3
type BiLinear struct {
	base
}

func (b *BiLinear) Weights(where domain.Point, nbrs []domain.FieldPoint) ([]float64, error) {
	if len(nbrs) < 4 {
		return b.missingNeighbourWeights(where, nbrs)
	}
	lon := alignLon(where.Longitude, nbrs[0].Longitude)

	distNW := lon - nbrs[0].Longitude
	distNE := nbrs[1].Longitude - lon
	distSW := lon - nbrs[2].Longitude
	distSE := nbrs[3].Longitude - lon
	distN := nbrs[0].Latitude - where.Latitude
	distS := where.Latitude - nbrs[2].Latitude

	north := distNW + distNE
	south := distSW + distSE

	w := make([]float64, len(nbrs))
	w[0] = distNE * south * distS
	w[1] = distNW * south * distS
	w[2] = distSE * north * distN
	w[3] = distSW * north * distN

	sum := w[0] + w[1] + w[2] + w[3]
	if domain.IsZero(sum) {
		// Degenerate stencil (collapsed row or coincident rows).
		return nearestWeights(where, nbrs), nil
	}
	for i := 0; i < 4; i++ {
		w[i] /= sum
	}
	return w, nil
}

func (b *BiLinear) Value(where domain.Point, nbrs []domain.FieldPoint) (float64, error) {
	if len(nbrs) < 4 {
		return b.missingNeighbours(where, nbrs)
	}
	w, err := b.Weights(where, nbrs)
	if err != nil {
		return 0, err
	}
	return combine(w, nbrs), nil
}

func (b *BiLinear) String() string { return KindBiLinear.String() }
