package interp

import (
	"math"

	"go.ngs.io/regrid/internal/domain"
)

// landThreshold separates sea from land in a mask.
const landThreshold = 0.5

func isLand(v float64) bool { return v >= landThreshold }

// DoubleLinearLSM is a bilinear kernel that drops neighbours whose land/sea
// class differs from the target's. A row (or the whole stencil) with no
// matching neighbour falls back to plain bilinear weights.
type DoubleLinearLSM struct {
	base
}

// adjustLSM restores a to 1 when the flag b shows the pair it belongs to has
// no usable member.
func adjustLSM(a, b float64) float64 {
	return 1 - math.Trunc(b+1e-5)*(1-a)
}

func (d *DoubleLinearLSM) Weights(where domain.Point, nbrs []domain.FieldPoint) ([]float64, error) {
	const op = "DoubleLinearLSM.Weights"
	if len(nbrs) < 4 {
		return d.missingNeighbourWeights(where, nbrs)
	}
	lsmIn, lsmOut := d.cfg.LSMIn, d.cfg.LSMOut
	if where.K < 0 || where.K >= int64(len(lsmOut)) {
		return nil, domain.OutOfRange(op, "output offset %d outside land-sea mask of %d points", where.K, len(lsmOut))
	}
	land := isLand(lsmOut[where.K])

	z := [4]float64{1, 1, 1, 1}
	for i := 0; i < 4; i++ {
		k := nbrs[i].K
		if k < 0 || k >= int64(len(lsmIn)) {
			return nil, domain.OutOfRange(op, "input offset %d outside land-sea mask of %d points", k, len(lsmIn))
		}
		if isLand(lsmIn[k]) != land {
			z[i] = 0
		}
	}

	zn := math.Min(z[0]+z[1], 1)
	zs := math.Min(z[2]+z[3], 1)
	zall := math.Min(zn+zs, 1)

	z[0] = adjustLSM(z[0], zn)
	z[1] = adjustLSM(z[1], zn)
	z[2] = adjustLSM(z[2], zs)
	z[3] = adjustLSM(z[3], zs)
	zn = adjustLSM(zn, zall)
	zs = adjustLSM(zs, zall)

	pdlat := fraction(where.Latitude, nbrs[0].Latitude, nbrs[2].Latitude-nbrs[0].Latitude)
	pdlo1 := rowFraction(where.Longitude, nbrs[0], nbrs[1])
	pdlo2 := rowFraction(where.Longitude, nbrs[2], nbrs[3])

	zwy := zs * (1 + zn*(pdlat-1))
	zcy := 1 - zwy
	zwxn := z[1] * (1 + z[0]*(pdlo1-1))
	zcxn := 1 - zwxn
	zwxs := z[3] * (1 + z[2]*(pdlo2-1))
	zcxs := 1 - zwxs

	w := make([]float64, len(nbrs))
	w[0] = zcxn * zcy
	w[1] = zwxn * zcy
	w[2] = zcxs * zwy
	w[3] = zwxs * zwy
	return w, nil
}

func (d *DoubleLinearLSM) Value(where domain.Point, nbrs []domain.FieldPoint) (float64, error) {
	if len(nbrs) < 4 {
		return d.missingNeighbours(where, nbrs)
	}
	w, err := d.Weights(where, nbrs)
	if err != nil {
		return 0, err
	}
	return combine(w, nbrs), nil
}

func (d *DoubleLinearLSM) String() string { return KindDoubleLinearLSM.String() }
