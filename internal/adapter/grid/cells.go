package grid

import (
	"math"

	"go.ngs.io/regrid/internal/domain"
)

// tabled is implemented by the grids backed by a row table.
type tabled interface {
	table() *rows
}

func tableOf(g Grid) (*rows, bool) {
	t, ok := g.(tabled)
	if !ok {
		return nil, false
	}
	return t.table(), true
}

// isLand classifies a land-sea mask value.
func isLand(v float64) bool { return v >= 0.5 }

// eastOf returns how far lon lies east of west, in [0, 360).
func eastOf(lon, west float64) float64 {
	d := domain.NormalizeLon360(lon - west)
	if 360.0-d < domain.RoundingFactor {
		return 0
	}
	return d
}

// CellsAreas returns the cell of every point: the row band in latitude and
// half the row increment either side in longitude.
func (r *rows) CellsAreas() ([]domain.Area, []float64, error) {
	areas := make([]domain.Area, r.total)
	sizes := make([]float64, r.total)
	for j, row := range r.lons {
		north, south := r.rowBand(j)
		half := r.WEIncrement(j) / 2
		for i, lon := range row {
			k := r.offsets[j] + int64(i)
			a := domain.Area{North: north, West: lon - half, South: south, East: lon + half}
			areas[k] = a
			sizes[k] = a.Size()
		}
	}
	return areas, sizes, nil
}

// outputCell returns the cell of the output point where, caching the
// latitude band per output latitude.
func (ctx *Context) outputCell(where domain.Point, out Grid, flux bool, op string) (domain.Area, error) {
	ot, ok := tableOf(out)
	if !ok {
		return domain.Area{}, domain.Unimplemented(op + " to " + out.Kind().String())
	}
	j := where.J
	if j < 0 || j >= len(ot.lats) {
		return domain.Area{}, domain.OutOfRange(op, "output row %d outside [0, %d)", j, len(ot.lats))
	}
	if !ctx.haveCell || ctx.cellFlux != flux || !domain.Same(ctx.cellLat, where.Latitude) {
		ctx.cellNorth, ctx.cellSouth = ot.rowBand(j)
		ctx.cellLat = where.Latitude
		ctx.cellFlux = flux
		ctx.haveCell = false
	}
	half := ot.WEIncrement(j) / 2
	cell := domain.Area{
		North: ctx.cellNorth,
		West:  where.Longitude - half,
		South: ctx.cellSouth,
		East:  where.Longitude + half,
	}
	return cell, nil
}

// cellRows returns the first and last input rows used for the current
// output cell. Averaging uses rows lying inside the cell, falling back to the
// nearest row when none does; flux uses every row whose band overlaps it.
func (r *rows) cellRows(ctx *Context, cell domain.Area, lat float64, flux bool) (int, int) {
	if ctx.haveCell {
		return ctx.cellFirst, ctx.cellLast
	}
	first, last := -1, -1
	for j, l := range r.lats {
		var in bool
		if flux {
			north, south := r.rowBand(j)
			in = south < cell.North && north > cell.South
		} else {
			in = (l < cell.North || domain.Same(l, cell.North)) && (l > cell.South || domain.Same(l, cell.South))
		}
		if !in || r.pl[j] == 0 {
			continue
		}
		if first < 0 {
			first = j
		}
		last = j
	}
	if first < 0 && !flux {
		best := math.Inf(1)
		for j, l := range r.lats {
			if r.pl[j] == 0 {
				continue
			}
			if d := math.Abs(l - lat); d < best {
				best, first, last = d, j, j
			}
		}
	}
	ctx.haveCell, ctx.cellFirst, ctx.cellLast = true, first, last
	return first, last
}

// eachColumn calls fn for every column of row j whose longitude lies in
// [west, west+width]. Global rows start from the bracket of the west edge
// and step east; other rows are scanned in full.
func (r *rows) eachColumn(ctx *Context, j int, west, width float64, fn func(i int, k int64)) {
	n := r.pl[j]
	if n == 0 {
		return
	}
	if width >= 360.0 {
		width = 360.0 - domain.RoundingFactor
	}
	if len(ctx.edge) != len(r.pl) {
		ctx.edge = make([]int, len(r.pl))
	}

	start, steps := 0, n
	if r.global && n > 1 {
		if c, err := findWestEast(west, &ctx.edge[j], r.lons[j], true); err == nil {
			start = c.w
			if eastOf(r.lons[j][c.w], west) > width {
				start = c.e
			}
		}
	}
	for s := 0; s < steps; s++ {
		i := wrapColumn(start+s, n)
		d := eastOf(r.lons[j][i], west)
		if d > width+domain.RoundingFactor {
			if r.global {
				break
			}
			continue
		}
		fn(i, r.offsets[j]+int64(i))
	}
}

// averageWeighted accumulates Σ w·v / Σ w over the inputs inside the cell
// of where. lsmIn and lsmOut may be nil; when set, a weight is reduced by
// domain.LSMFactor where the land-sea classes of input and output differ.
func (r *rows) averageWeighted(ctx *Context, where domain.Point, weights, data, lsmIn, lsmOut []float64, mv float64, out Grid) (float64, error) {
	const op = "grid.AverageWeighted"
	if err := ctx.checkRows(r, op); err != nil {
		return 0, err
	}
	if int64(len(data)) < r.total || int64(len(weights)) < r.total {
		return 0, domain.InvalidArgument(op, "data and weights need %d values", r.total)
	}
	lsm := lsmIn != nil || lsmOut != nil
	if lsm {
		if int64(len(lsmIn)) < r.total || where.K < 0 || where.K >= int64(len(lsmOut)) {
			return 0, domain.InvalidArgument(op, "land-sea masks do not match the grids")
		}
	}

	cell, err := ctx.outputCell(where, out, false, op)
	if err != nil {
		return 0, err
	}
	first, last := r.cellRows(ctx, cell, where.Latitude, false)
	if first < 0 {
		return mv, nil
	}

	var outLand bool
	if lsm {
		outLand = isLand(lsmOut[where.K])
	}
	width := cell.East - cell.West
	var sum, sumW float64
	var count int
	for j := first; j <= last; j++ {
		r.eachColumn(ctx, j, cell.West, width, func(_ int, k int64) {
			v := data[k]
			if v == mv {
				return
			}
			w := weights[k]
			if lsm && isLand(lsmIn[k]) != outLand {
				w *= domain.LSMFactor
			}
			sum += w * v
			sumW += w
			count++
		})
	}

	switch {
	case count == 0:
		return mv, nil
	case sumW == 0:
		return 0, nil
	}
	return sum / sumW, nil
}

// AverageWeighted returns the weighted mean of the inputs inside the cell of
// where, a point of the output grid out.
func (r *rows) AverageWeighted(ctx *Context, where domain.Point, weights, data []float64, mv float64, out Grid) (float64, error) {
	return r.averageWeighted(ctx, where, weights, data, nil, nil, mv, out)
}

// AverageWeightedLSM is AverageWeighted with land-sea aware weights.
func (r *rows) AverageWeightedLSM(ctx *Context, where domain.Point, weights, data, lsmIn, lsmOut []float64, mv float64, out Grid) (float64, error) {
	if lsmIn == nil || lsmOut == nil {
		return 0, domain.InvalidArgument("grid.AverageWeightedLSM", "both land-sea masks are required")
	}
	return r.averageWeighted(ctx, where, weights, data, lsmIn, lsmOut, mv, out)
}

// FluxConserving returns Σ |in ∩ cell|·v / Σ |in ∩ cell| over the
// non-missing input cells overlapping the cell of where.
func (r *rows) FluxConserving(ctx *Context, where domain.Point, areas []domain.Area, sizes, data []float64, mv float64, out Grid) (float64, error) {
	const op = "grid.FluxConserving"
	if err := ctx.checkRows(r, op); err != nil {
		return 0, err
	}
	if int64(len(data)) < r.total || int64(len(areas)) < r.total || int64(len(sizes)) < r.total {
		return 0, domain.InvalidArgument(op, "data and cells need %d values", r.total)
	}

	cell, err := ctx.outputCell(where, out, true, op)
	if err != nil {
		return 0, err
	}
	first, last := r.cellRows(ctx, cell, where.Latitude, true)
	if first < 0 {
		return mv, nil
	}

	var sum, cover float64
	for j := first; j <= last; j++ {
		half := r.WEIncrement(j) / 2
		r.eachColumn(ctx, j, cell.West-half, cell.East-cell.West+2*half, func(_ int, k int64) {
			if sizes[k] <= 0 || data[k] == mv {
				return
			}
			overlap := cell.IntersectionSize(areas[k])
			if overlap <= 0 {
				return
			}
			sum += overlap * data[k]
			cover += overlap
		})
	}
	if cover <= 0 {
		return mv, nil
	}
	return sum / cover, nil
}
