package interp

import (
	"math"

	"go.ngs.io/regrid/internal/adapter/grid"
	"go.ngs.io/regrid/internal/domain"
)

// Positions returned by grid.NearestIndexed.
const (
	up = iota
	left
	down
	right
)

// Derivatives holds the first derivatives of a field, per metre, at every
// point of its grid. Points without a usable stencil hold the missing value.
type Derivatives struct {
	Zonal      []float64
	Meridional []float64
}

const radian = math.Pi / 180

// absent reports whether n is a placeholder for a neighbour beyond the pole
// or the row edge.
func absent(n domain.FieldPoint) bool { return n.K < 0 }

// slope returns (va - vb) / (lat or lon distance in radians).
func slope(va, vb, a, b float64) float64 {
	return (va - vb) / ((a - b) * radian)
}

// mean averages the valid one-sided estimates.
func mean(a, b float64, aok, bok bool) (float64, bool) {
	switch {
	case aok && bok:
		return (a + b) / 2, true
	case aok:
		return a, true
	case bok:
		return b, true
	}
	return 0, false
}

// PartialDerivatives computes centred differences from the up, left, down and
// right neighbours of every point, falling back to one-sided differences
// where a side is missing. With opts.LinearPoleDerivative the meridional
// derivative of a row without a neighbour row is extrapolated linearly from
// the two rows below (or above) it.
func PartialDerivatives(g grid.Grid, data []float64, mv float64, opts domain.Options) (Derivatives, error) {
	d := Derivatives{
		Zonal:      make([]float64, len(data)),
		Meridional: make([]float64, len(data)),
	}
	for i := range data {
		d.Zonal[i], d.Meridional[i] = mv, mv
	}
	for _, p := range g.Points() {
		p = g.Localise(p)
		k := p.K
		if k < 0 || k >= int64(len(data)) {
			return Derivatives{}, domain.OutOfRange("interp.PartialDerivatives", "point %d outside data of %d values", k, len(data))
		}
		v := data[k]
		if v == mv {
			continue
		}
		nbrs, err := g.NearestIndexed(p, data, mv)
		if err != nil {
			return Derivatives{}, err
		}
		if d.Meridional[k], err = meridional(g, p, v, nbrs, data, mv, opts); err != nil {
			return Derivatives{}, err
		}
		d.Zonal[k] = zonal(p, v, nbrs, mv)
	}
	return d, nil
}

func meridional(g grid.Grid, p domain.Point, v float64, nbrs []domain.FieldPoint, data []float64, mv float64, opts domain.Options) (float64, error) {
	u, dn := nbrs[up], nbrs[down]
	uok, dok := !u.IsMissing(mv), !dn.IsMissing(mv)
	var du, dd float64
	if uok {
		du = slope(u.Value, v, u.Latitude, p.Latitude)
	}
	if dok {
		dd = slope(v, dn.Value, p.Latitude, dn.Latitude)
	}

	if opts.LinearPoleDerivative && absent(u) != absent(dn) {
		var err error
		switch {
		case absent(u) && dok:
			dd, err = extrapolate(g, p, dn, dd, down, data, mv)
		case absent(dn) && uok:
			du, err = extrapolate(g, p, u, du, up, data, mv)
		}
		if err != nil {
			return 0, err
		}
	}

	m, ok := mean(du, dd, uok, dok)
	if !ok {
		return mv, nil
	}
	return m / domain.EarthRadius, nil
}

// extrapolate moves the one-sided gradient g1, taken between p and its
// neighbour n, from the midpoint of the pair to p itself, using the gradient
// one row further in the same direction.
func extrapolate(g grid.Grid, p domain.Point, n domain.FieldPoint, g1 float64, dir int, data []float64, mv float64) (float64, error) {
	next, err := g.NearestIndexed(n.Point, data, mv)
	if err != nil {
		return 0, err
	}
	nn := next[dir]
	if absent(nn) || nn.IsMissing(mv) {
		return g1, nil
	}
	g2 := slope(n.Value, nn.Value, n.Latitude, nn.Latitude)
	m1 := (p.Latitude + n.Latitude) / 2
	m2 := (n.Latitude + nn.Latitude) / 2
	if domain.Same(m1, m2) {
		return g1, nil
	}
	return g1 + (g1-g2)*(p.Latitude-m1)/(m1-m2), nil
}

func zonal(p domain.Point, v float64, nbrs []domain.FieldPoint, mv float64) float64 {
	l, r := nbrs[left], nbrs[right]
	lok := !l.IsMissing(mv) && !absent(l)
	rok := !r.IsMissing(mv) && !absent(r)
	if !lok && !rok {
		return mv
	}
	if domain.IsPole(p.Latitude) {
		return 0
	}
	var dl, dr float64
	if rok {
		dr = slope(r.Value, v, alignLon(r.Longitude, p.Longitude), p.Longitude)
	}
	if lok {
		dl = slope(v, l.Value, p.Longitude, alignLon(l.Longitude, p.Longitude))
	}
	m, _ := mean(dl, dr, lok, rok)
	return m / (domain.EarthRadius * math.Cos(p.Latitude*radian))
}

// KLM returns the gradient covariance terms of a field:
//
//	K = (zon² + mer²) / 2
//	L = (zon² - mer²) / 2
//	M = zon · mer
//
// A point is missing when either derivative is.
func KLM(g grid.Grid, data []float64, mv float64, opts domain.Options) (k, l, m []float64, err error) {
	d, err := PartialDerivatives(g, data, mv, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	k = make([]float64, len(d.Zonal))
	l = make([]float64, len(d.Zonal))
	m = make([]float64, len(d.Zonal))
	for i, zon := range d.Zonal {
		mer := d.Meridional[i]
		if zon == mv || mer == mv {
			k[i], l[i], m[i] = mv, mv, mv
			continue
		}
		k[i] = (zon*zon + mer*mer) / 2
		l[i] = (zon*zon - mer*mer) / 2
		m[i] = zon * mer
	}
	return k, l, m, nil
}
