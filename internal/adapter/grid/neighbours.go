package grid

import (
	"math"

	"go.ngs.io/regrid/internal/domain"
)

// nearLon shifts lon by whole turns to within half a turn of ref.
func nearLon(lon, ref float64) float64 {
	for lon-ref > 180.0 {
		lon -= 360.0
	}
	for ref-lon > 180.0 {
		lon += 360.0
	}
	return lon
}

// ring collects neighbours for one query.
type ring struct {
	r    *rows
	data []float64
	ref  float64
	out  []domain.FieldPoint
	err  error
}

// add appends column i (wrapped into the row) of row j.
func (g *ring) add(i, j int) {
	if g.err != nil {
		return
	}
	i = wrapColumn(i, g.r.pl[j])
	fp, err := g.r.fieldPoint(i, j, nearLon(g.r.lons[j][i], g.ref), g.data)
	if err != nil {
		g.err = err
		return
	}
	g.out = append(g.out, fp)
}

// addBracket appends the west or east member of a bracket, keeping the
// unwrapped longitude of the bracket.
func (g *ring) addBracket(j int, c columns, east bool) {
	if g.err != nil {
		return
	}
	i, lon := c.w, c.west
	if east {
		i, lon = c.e, c.east
	}
	fp, err := g.r.fieldPoint(i, j, lon, g.data)
	if err != nil {
		g.err = err
		return
	}
	g.out = append(g.out, fp)
}

// rowColumns pairs a row with its bracket.
type rowColumns struct {
	j int
	c columns
}

func validRing(howMany int) bool {
	switch howMany {
	case 4, 12, 16, 36, 64:
		return true
	}
	return false
}

// NearestPoints returns the neighbour rings of where, innermost first.
//
// The 2x2 stencil comes first (0, 1 on the north row, 2, 3 on the south
// row). With 12 and 16 the next rows out and the columns beside the stencil
// follow; 36 and 64 add whole rings walked clockwise from the north-west.
// Rings of 12 and 16 that run off a pole keep the stencil found so far;
// larger rings need every row and fail with OutOfRange.
func (r *rows) NearestPoints(ctx *Context, where domain.Point, data []float64, howMany int) ([]domain.FieldPoint, error) {
	const op = "grid.NearestPoints"
	if err := ctx.checkRows(r, op); err != nil {
		return nil, err
	}
	if !validRing(howMany) {
		return nil, domain.InvalidArgument(op, "unsupported number of neighbours %d", howMany)
	}
	if int64(len(data)) < r.total {
		return nil, domain.InvalidArgument(op, "data has %d values, grid has %d points", len(data), r.total)
	}

	n, s, err := ctx.bracketRows(where.Latitude, r.lats)
	if err != nil {
		return nil, err
	}

	g := &ring{r: r, data: data, ref: domain.NormalizeLon360(where.Longitude), out: make([]domain.FieldPoint, 0, howMany)}

	bracket := func(j, slot int) (columns, bool, error) {
		if j < 0 || j >= len(r.pl) || r.pl[j] == 0 {
			return columns{}, false, nil
		}
		c, err := findWestEast(where.Longitude, &ctx.lastI[slot], r.lons[j], r.global)
		if err != nil {
			return columns{}, false, err
		}
		return c, true, nil
	}

	nc, haveN, err := bracket(n, slotNorth)
	if err != nil {
		return nil, err
	}
	sc, haveS, err := bracket(s, slotSouth)
	if err != nil {
		return nil, err
	}
	if haveN {
		g.addBracket(n, nc, false)
		g.addBracket(n, nc, true)
	}
	if haveS {
		g.addBracket(s, sc, false)
		g.addBracket(s, sc, true)
	}
	if g.err != nil {
		return nil, g.err
	}
	if howMany == 4 {
		return g.out, nil
	}

	nn, ss := n-1, s+1
	nnc, haveNN, err := bracket(nn, slotNNorth)
	if err != nil {
		return nil, err
	}
	ssc, haveSS, err := bracket(ss, slotSSouth)
	if err != nil {
		return nil, err
	}
	if !haveN || !haveS || !haveNN || !haveSS {
		if howMany <= 16 {
			return g.out, nil
		}
		return nil, domain.OutOfRange(op, "%d neighbours of latitude %.6f need rows beyond the poles", howMany, where.Latitude)
	}

	g.addBracket(nn, nnc, false)
	g.addBracket(nn, nnc, true)
	g.add(nc.w-1, n)
	g.add(nc.e+1, n)
	g.add(sc.w-1, s)
	g.add(sc.e+1, s)
	g.addBracket(ss, ssc, false)
	g.addBracket(ss, ssc, true)
	if howMany == 12 {
		return g.out, g.err
	}

	g.add(nnc.w-1, nn)
	g.add(nnc.e+1, nn)
	g.add(ssc.w-1, ss)
	g.add(ssc.e+1, ss)
	if howMany == 16 {
		return g.out, g.err
	}

	n3, s3 := n-2, s+2
	n3c, haveN3, err := bracket(n3, slotNNNorth)
	if err != nil {
		return nil, err
	}
	s3c, haveS3, err := bracket(s3, slotSSSouth)
	if err != nil {
		return nil, err
	}
	if !haveN3 || !haveS3 {
		return nil, domain.OutOfRange(op, "%d neighbours of latitude %.6f need rows beyond the poles", howMany, where.Latitude)
	}

	inner := []rowColumns{{nn, nnc}, {n, nc}, {s, sc}, {ss, ssc}}

	// Second ring: top row, right column, bottom row reversed, left column reversed.
	g.add(n3c.w-2, n3)
	g.add(n3c.w-1, n3)
	g.add(n3c.w, n3)
	g.add(n3c.e, n3)
	g.add(n3c.e+1, n3)
	g.add(n3c.e+2, n3)
	for _, row := range inner {
		g.add(row.c.e+2, row.j)
	}
	g.add(s3c.e+2, s3)
	g.add(s3c.e+1, s3)
	g.add(s3c.e, s3)
	g.add(s3c.w, s3)
	g.add(s3c.w-1, s3)
	g.add(s3c.w-2, s3)
	for k := len(inner) - 1; k >= 0; k-- {
		g.add(inner[k].c.w-2, inner[k].j)
	}
	if howMany == 36 {
		return g.out, g.err
	}

	n4, s4 := n-3, s+3
	n4c, haveN4, err := bracket(n4, slotNNNNorth)
	if err != nil {
		return nil, err
	}
	s4c, haveS4, err := bracket(s4, slotSSSSouth)
	if err != nil {
		return nil, err
	}
	if !haveN4 || !haveS4 {
		return nil, domain.OutOfRange(op, "%d neighbours of latitude %.6f need rows beyond the poles", howMany, where.Latitude)
	}

	inner = append(append([]rowColumns{{n3, n3c}}, inner...), rowColumns{s3, s3c})

	for d := 3; d >= 1; d-- {
		g.add(n4c.w-d, n4)
	}
	g.add(n4c.w, n4)
	g.add(n4c.e, n4)
	for d := 1; d <= 3; d++ {
		g.add(n4c.e+d, n4)
	}
	for _, row := range inner {
		g.add(row.c.e+3, row.j)
	}
	for d := 3; d >= 1; d-- {
		g.add(s4c.e+d, s4)
	}
	g.add(s4c.e, s4)
	g.add(s4c.w, s4)
	for d := 1; d <= 3; d++ {
		g.add(s4c.w-d, s4)
	}
	for k := len(inner) - 1; k >= 0; k-- {
		g.add(inner[k].c.w-3, inner[k].j)
	}
	return g.out, g.err
}

// Nearest4 returns the 2x2 stencil around where without samples.
func (r *rows) Nearest4(ctx *Context, where domain.Point) ([]domain.Point, error) {
	zeros := make([]float64, r.total)
	nbrs, err := r.NearestPoints(ctx, where, zeros, 4)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Point, len(nbrs))
	for i, n := range nbrs {
		out[i] = n.Point
	}
	return out, nil
}

// NearestIndexed returns the up, left, down and right neighbours of the grid
// point where. Up and down are the nearest columns of the adjacent rows;
// absent neighbours are returned at the pole or the row edge with value mv.
func (r *rows) NearestIndexed(where domain.Point, data []float64, mv float64) ([]domain.FieldPoint, error) {
	const op = "grid.NearestIndexed"
	j, i := where.J, where.I
	if j < 0 || j >= len(r.pl) || i < 0 || i >= r.pl[j] {
		return nil, domain.OutOfRange(op, "point (%d, %d) is not on the grid", i, j)
	}
	if int64(len(data)) < r.total {
		return nil, domain.InvalidArgument(op, "data has %d values, grid has %d points", len(data), r.total)
	}
	lon := r.lons[j][i]

	missing := func(lat, lon float64) domain.FieldPoint {
		return domain.NewFieldPoint(domain.NewPoint(lat, lon), mv)
	}

	vertical := func(jj int, pole float64) (domain.FieldPoint, error) {
		if jj < 0 || jj >= len(r.pl) || r.pl[jj] == 0 {
			return missing(pole, lon), nil
		}
		col := nearestColumn(lon, r.lons[jj])
		return r.fieldPoint(col, jj, nearLon(r.lons[jj][col], lon), data)
	}
	horizontal := func(ii int) (domain.FieldPoint, error) {
		n := r.pl[j]
		if n < 2 || (!r.global && (ii < 0 || ii >= n)) {
			return missing(r.lats[j], lon), nil
		}
		ii = wrapColumn(ii, n)
		return r.fieldPoint(ii, j, nearLon(r.lons[j][ii], lon), data)
	}

	out := make([]domain.FieldPoint, 4)
	var err error
	if out[0], err = vertical(j-1, domain.NorthPole); err != nil {
		return nil, err
	}
	if out[1], err = horizontal(i - 1); err != nil {
		return nil, err
	}
	if out[2], err = vertical(j+1, domain.SouthPole); err != nil {
		return nil, err
	}
	if out[3], err = horizontal(i + 1); err != nil {
		return nil, err
	}
	return out, nil
}

// nearestColumn returns the column of lons closest to lon around the circle.
func nearestColumn(lon float64, lons []float64) int {
	best, dist := 0, math.Inf(1)
	for i, l := range lons {
		d := math.Abs(nearLon(l, lon) - lon)
		if d < dist {
			best, dist = i, d
		}
	}
	return best
}
