package interp

import (
	"math"

	"go.ngs.io/regrid/internal/domain"
)

// Cubic12pts fits cubic polynomials along the two inner rows, linear fits
// along the two outer rows and a cubic across the four rows.
//
// Numbering of the points, I is the target:
//
//	        4       5
//	6       0       1       7
//	            I
//	8       2       3       9
//	        10      11
type Cubic12pts struct {
	base
}

// Lagrange weights of the nodes 0, 1 and 2 of the cubic through -1, 0, 1, 2.
func cubicNode0(a float64) float64 { return (a + 1) * (a - 2) * (a - 1) / 2 }
func cubicNode1(a float64) float64 { return -(a + 1) * (a - 2) * a / 2 }
func cubicNode2(a float64) float64 { return a * (a - 1) * (a + 1) / 6 }

// rowFraction returns the zonal position of lon between the west and east
// neighbours of one row.
func rowFraction(lon float64, west, east domain.FieldPoint) float64 {
	lon = alignLon(lon, west.Longitude)
	return fraction(lon, west.Longitude, math.Abs(east.Longitude-west.Longitude))
}

func (c *Cubic12pts) Weights(where domain.Point, nbrs []domain.FieldPoint) ([]float64, error) {
	size := len(nbrs)
	if size < 4 {
		return c.missingNeighbourWeights(where, nbrs)
	}
	if size < 12 {
		bl := &BiLinear{base: c.with(4)}
		w, err := bl.Weights(where, nbrs[:4])
		if err != nil {
			return nil, err
		}
		return append(w, make([]float64, size-4)...), nil
	}

	lat0 := nbrs[4].Latitude
	lat1 := nbrs[0].Latitude
	lat2 := nbrs[2].Latitude
	lat3 := nbrs[10].Latitude

	pdlo0 := rowFraction(where.Longitude, nbrs[4], nbrs[5])
	pdlo1 := rowFraction(where.Longitude, nbrs[0], nbrs[1])
	pdlo2 := rowFraction(where.Longitude, nbrs[2], nbrs[3])
	pdlo3 := rowFraction(where.Longitude, nbrs[10], nbrs[11])

	zdy := where.Latitude - lat1
	zdy10 := lat1 - lat0
	zdy21 := lat2 - lat1
	zdy32 := lat3 - lat2

	zwxn1, zwxn2, zwxn3 := cubicNode0(pdlo1), cubicNode1(pdlo1), cubicNode2(pdlo1)
	zwxn0 := 1 - zwxn1 - zwxn2 - zwxn3
	zwxs1, zwxs2, zwxs3 := cubicNode0(pdlo2), cubicNode1(pdlo2), cubicNode2(pdlo2)
	zwxs0 := 1 - zwxs1 - zwxs2 - zwxs3

	zwy3 := ((zdy + zdy10) * zdy * (zdy - zdy21)) /
		((zdy10 + zdy21 + zdy32) * (zdy21 + zdy32) * zdy32)
	zwy2 := ((zdy + zdy10) * zdy * (zdy - zdy21 - zdy32)) /
		((zdy10 + zdy21) * zdy21 * (-zdy32))
	zwy1 := ((zdy + zdy10) * (zdy - zdy21) * (zdy - zdy21 - zdy32)) /
		(zdy10 * (-zdy21) * (-zdy21 - zdy32))
	zwy0 := 1 - zwy1 - zwy2 - zwy3

	w := make([]float64, size)
	w[0] = zwxn1 * zwy1
	w[1] = zwxn2 * zwy1
	w[2] = zwxs1 * zwy2
	w[3] = zwxs2 * zwy2
	w[4] = (1 - pdlo0) * zwy0
	w[5] = pdlo0 * zwy0
	w[6] = zwxn0 * zwy1
	w[7] = zwxn3 * zwy1
	w[8] = zwxs0 * zwy2
	w[9] = zwxs3 * zwy2
	w[10] = (1 - pdlo3) * zwy3
	w[11] = pdlo3 * zwy3
	return w, nil
}

func (c *Cubic12pts) Value(where domain.Point, nbrs []domain.FieldPoint) (float64, error) {
	if len(nbrs) < 4 {
		return c.missingNeighbours(where, nbrs)
	}
	w, err := c.Weights(where, nbrs)
	if err != nil {
		return 0, err
	}
	return combine(w, nbrs), nil
}

func (c *Cubic12pts) String() string { return KindCubic12pts.String() }
