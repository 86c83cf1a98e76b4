package grid

import (
	"math"

	"go.ngs.io/regrid/internal/domain"
)

// Regular is a grid with the same number of points on every row.
type Regular struct {
	*rows
	nsInc float64
}

var _ Grid = (*Regular)(nil)

// NewRegular creates a regular lat/lon grid covering area with the given
// increments in degrees. Rows wrap around the globe when the west-east
// span plus one increment reaches 360 degrees.
func NewRegular(area domain.Area, nsInc, weInc float64, opts domain.Options) (*Regular, error) {
	const op = "grid.NewRegular"
	if nsInc <= 0 || weInc <= 0 {
		return nil, domain.InvalidArgument(op, "increments must be positive (ns=%g, we=%g)", nsInc, weInc)
	}
	if area.North < area.South {
		return nil, domain.InvalidArgument(op, "north %.6f is south of south %.6f", area.North, area.South)
	}

	nlat := int(math.Round((area.North-area.South)/nsInc)) + 1
	lats := make([]float64, nlat)
	for j := range lats {
		lats[j] = area.North - float64(j)*nsInc
	}

	span := area.East - area.West
	global := span+weInc > 360.0-domain.AreaFactor
	var nlon int
	if global {
		nlon = int(math.Round(360.0 / weInc))
		area.East = area.West + 360.0 - weInc
	} else {
		nlon = int(math.Round(span/weInc)) + 1
	}

	pl := make([]int, nlat)
	for j := range pl {
		pl[j] = nlon
	}
	r, err := newRows(KindRegular, lats, pl, area, global, opts)
	if err != nil {
		return nil, err
	}
	return &Regular{rows: r, nsInc: nsInc}, nil
}

// NewRegularFromAxes creates a regular grid from explicit axes: lats from
// north to south and evenly spaced ascending lons.
func NewRegularFromAxes(lats, lons []float64, opts domain.Options) (*Regular, error) {
	const op = "grid.NewRegularFromAxes"
	if len(lats) == 0 || len(lons) == 0 {
		return nil, domain.InvalidArgument(op, "axes must not be empty")
	}
	west, east := lons[0], lons[len(lons)-1]
	if east < west {
		east += 360.0
	}
	var weInc float64
	if len(lons) > 1 {
		weInc = (east - west) / float64(len(lons)-1)
	}
	global := len(lons) > 1 && math.Abs(east-west+weInc-360.0) < domain.AreaFactor

	area := domain.Area{North: lats[0], West: west, South: lats[len(lats)-1], East: east}
	pl := make([]int, len(lats))
	for j := range pl {
		pl[j] = len(lons)
	}
	r, err := newRows(KindRegular, lats, pl, area, global, opts)
	if err != nil {
		return nil, err
	}
	var nsInc float64
	if len(lats) > 1 {
		nsInc = math.Abs(lats[0]-lats[1])
	}
	return &Regular{rows: r, nsInc: nsInc}, nil
}

// NewRegularGaussian creates the full Gaussian grid F<n>: 2n Gaussian
// latitudes with 4n points on every row.
func NewRegularGaussian(n int, opts domain.Options) (*Regular, error) {
	lats, weights, err := GaussianLatitudes(n)
	if err != nil {
		return nil, err
	}
	pl := make([]int, len(lats))
	for j := range pl {
		pl[j] = 4 * n
	}
	area := domain.Area{North: lats[0], West: 0, South: lats[len(lats)-1], East: 360.0 - 90.0/float64(n)}
	r, err := newRows(KindRegular, lats, pl, area, true, opts)
	if err != nil {
		return nil, err
	}
	r.gaussian = weights
	r.polar = true
	return &Regular{rows: r}, nil
}

// WithScanMode returns a copy of the grid whose samples are stored in mode.
func (g *Regular) WithScanMode(mode ScanMode) *Regular {
	r := *g.rows
	r.scan = mode
	r.layout()
	return &Regular{rows: &r, nsInc: g.nsInc}
}

// NSIncrement returns the latitude spacing in degrees (zero on Gaussian grids).
func (g *Regular) NSIncrement() float64 { return g.nsInc }

func (g *Regular) String() string {
	return g.describe("Regular")
}
