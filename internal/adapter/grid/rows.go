package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"go.ngs.io/regrid/internal/domain"
)

// rows is the row table shared by regular and reduced grids: latitudes
// from north to south, a longitude array per row and the storage offset of
// every row.
type rows struct {
	kind    Kind
	lats    []float64
	pl      []int
	lons    [][]float64
	offsets []int64
	total   int64
	global  bool
	area    domain.Area
	scan    ScanMode
	opts    domain.Options

	// gaussian holds the Gaussian quadrature weight of every row, nil for
	// lat/lon grids.
	gaussian []float64

	// polar makes the first and last row bands reach the poles.
	polar bool
}

// newRows builds the row table. Longitudes are generated from the area's
// west edge; global rows wrap around the whole circle.
func newRows(kind Kind, lats []float64, pl []int, area domain.Area, global bool, opts domain.Options) (*rows, error) {
	r := &rows{
		kind:   kind,
		lats:   append([]float64(nil), lats...),
		pl:     append([]int(nil), pl...),
		global: global,
		area:   area,
		scan:   ScanWENS,
		opts:   opts,
	}
	if err := r.validate(); err != nil {
		return nil, err
	}

	r.lons = make([][]float64, len(pl))
	for j, n := range pl {
		r.lons[j] = generateLongitudes(n, area.West, area.East, global, opts.EmosPrecisionCompat)
	}
	r.layout()
	return r, nil
}

// layout computes row offsets for the current scanning mode.
func (r *rows) layout() {
	r.offsets = make([]int64, len(r.pl))
	var k int64
	if r.scan == ScanWESN || r.scan == ScanEWSN {
		for j := len(r.pl) - 1; j >= 0; j-- {
			r.offsets[j] = k
			k += int64(r.pl[j])
		}
	} else {
		for j := range r.pl {
			r.offsets[j] = k
			k += int64(r.pl[j])
		}
	}
	r.total = k
}

func (r *rows) validate() error {
	const op = "grid.Validate"
	if len(r.lats) == 0 {
		return domain.InvalidArgument(op, "grid has no rows")
	}
	if len(r.lats) != len(r.pl) {
		return domain.InvalidArgument(op, "%d latitudes for %d row lengths", len(r.lats), len(r.pl))
	}
	last := len(r.lats) - 1
	for j, lat := range r.lats {
		if lat > domain.NorthPole+domain.RoundingFactor || lat < domain.SouthPole-domain.RoundingFactor {
			return domain.InvalidArgument(op, "latitude %.6f of row %d is outside [-90, 90]", lat, j)
		}
		if j > 0 && !(lat < r.lats[j-1]) {
			return domain.InvalidArgument(op, "latitudes must decrease from north to south (row %d)", j)
		}
		if r.pl[j] < 0 {
			return domain.InvalidArgument(op, "row %d has %d points", j, r.pl[j])
		}
		if r.pl[j] == 0 && j != 0 && j != last && !domain.IsPole(lat) {
			return domain.InvalidArgument(op, "row %d at latitude %.6f is empty away from the poles", j, lat)
		}
	}
	return nil
}

func (r *rows) table() *rows { return r }

func (r *rows) Kind() Kind { return r.kind }

func (r *rows) Area() domain.Area { return r.area }

func (r *rows) NewContext() *Context { return newContext(familyRows, r) }

// Localise returns p unchanged: row grids search in geographic coordinates.
func (r *rows) Localise(p domain.Point) domain.Point { return p }

// Global reports whether rows wrap around the whole circle.
func (r *rows) Global() bool { return r.global }

// ScanMode returns the storage convention of the grid.
func (r *rows) ScanMode() ScanMode { return r.scan }

func (r *rows) NumberOfPoints() int { return int(r.total) }

func (r *rows) PointsPerRow() []int { return append([]int(nil), r.pl...) }

func (r *rows) Latitudes() []float64 { return append([]float64(nil), r.lats...) }

func (r *rows) WEIncrement(j int) float64 {
	if j < 0 || j >= len(r.pl) || r.pl[j] == 0 {
		return 0
	}
	if r.global {
		return 360.0 / float64(r.pl[j])
	}
	if r.pl[j] == 1 {
		return 0
	}
	return (r.area.East - r.area.West) / float64(r.pl[j]-1)
}

// Index maps column i of row j (rows counted north to south) to the flat
// storage offset.
func (r *rows) Index(i, j int) (int64, error) {
	const op = "grid.Index"
	if r.scan != ScanWENS && r.scan != ScanWESN {
		return 0, domain.Unimplemented(op + ": scanning mode " + fmt.Sprint(int(r.scan)))
	}
	if j < 0 || j >= len(r.pl) {
		return 0, domain.OutOfRange(op, "row %d outside [0, %d)", j, len(r.pl))
	}
	if i < 0 || i >= r.pl[j] {
		return 0, domain.OutOfRange(op, "column %d outside [0, %d) on row %d", i, r.pl[j], j)
	}
	k := r.offsets[j] + int64(i)
	if k >= r.total {
		return 0, domain.OutOfRange(op, "offset %d beyond %d points", k, r.total)
	}
	return k, nil
}

// Points generates every point in storage order.
func (r *rows) Points() []domain.Point {
	out := make([]domain.Point, r.total)
	for j, row := range r.lons {
		for i, lon := range row {
			k := r.offsets[j] + int64(i)
			out[k] = domain.NewIndexedPoint(r.lats[j], lon, i, j, k)
		}
	}
	return out
}

// fieldPoint returns column i of row j with its sample. lon overrides the
// stored longitude so callers can hand out unwrapped coordinates.
func (r *rows) fieldPoint(i, j int, lon float64, data []float64) (domain.FieldPoint, error) {
	k, err := r.Index(i, j)
	if err != nil {
		return domain.FieldPoint{}, err
	}
	if k >= int64(len(data)) {
		return domain.FieldPoint{}, domain.OutOfRange("grid.fieldPoint", "offset %d beyond %d samples", k, len(data))
	}
	return domain.NewFieldPoint(domain.NewIndexedPoint(r.lats[j], lon, i, j, k), data[k]), nil
}

// rowBand returns the latitude band represented by row j: halfway to the
// neighbouring rows, a symmetric half spacing on the edge rows.
func (r *rows) rowBand(j int) (north, south float64) {
	last := len(r.lats) - 1
	lat := r.lats[j]
	if last == 0 {
		return r.area.North, r.area.South
	}

	if j > 0 {
		north = (r.lats[j-1] + lat) / 2
	} else if r.polar {
		north = domain.NorthPole
	} else {
		north = lat + (lat-r.lats[1])/2
	}
	if j < last {
		south = (lat + r.lats[j+1]) / 2
	} else if r.polar {
		south = domain.SouthPole
	} else {
		south = lat - (r.lats[last-1]-lat)/2
	}
	return math.Min(north, domain.NorthPole), math.Max(south, domain.SouthPole)
}

// QuadratureWeights returns one weight per point, the row weight spread
// evenly over the row, normalised to sum to one.
func (r *rows) QuadratureWeights() ([]float64, error) {
	w := make([]float64, r.total)
	for j, n := range r.pl {
		if n == 0 {
			continue
		}
		var row float64
		if r.gaussian != nil {
			row = r.gaussian[j] / 2
		} else {
			north, south := r.rowBand(j)
			row = (math.Sin(north*math.Pi/180) - math.Sin(south*math.Pi/180)) / 2
		}
		for i := 0; i < n; i++ {
			w[r.offsets[j]+int64(i)] = row / float64(n)
		}
	}
	sum := floats.Sum(w)
	if sum <= 0 {
		return nil, domain.InvalidArgument("grid.QuadratureWeights", "grid has no weighted points")
	}
	floats.Scale(1/sum, w)
	return w, nil
}

// PoleAverages returns the mean of the non-missing samples of the first and
// the last row, used to fill output points sitting on a pole.
func (r *rows) PoleAverages(data []float64, mv float64) (north, south float64, err error) {
	if int64(len(data)) < r.total {
		return 0, 0, domain.InvalidArgument("grid.PoleAverages", "data has %d values, grid has %d points", len(data), r.total)
	}
	mean := func(j int) float64 {
		var sum float64
		var count int
		for i := 0; i < r.pl[j]; i++ {
			v := data[r.offsets[j]+int64(i)]
			if v == mv {
				continue
			}
			sum += v
			count++
		}
		if count == 0 {
			return mv
		}
		return sum / float64(count)
	}
	return mean(0), mean(len(r.pl) - 1), nil
}

func (r *rows) describe(name string) string {
	return fmt.Sprintf("%s{rows=%d points=%d global=%t scan=%d %s}", name, len(r.lats), r.total, r.global, r.scan, r.area)
}
