package grid

import "go.ngs.io/regrid/internal/domain"

// Reduced is a grid whose number of points varies from row to row.
type Reduced struct {
	*rows
	gaussianNumber int
}

var _ Grid = (*Reduced)(nil)

// NewReduced creates a reduced lat/lon grid. pl[j] points are spread over
// row j between area.West and area.East; rows wrap around the globe when
// East - West is a full turn.
func NewReduced(lats []float64, pl []int, area domain.Area, opts domain.Options) (*Reduced, error) {
	global := area.East-area.West > 360.0-domain.AreaFactor
	r, err := newRows(KindReduced, lats, pl, area, global, opts)
	if err != nil {
		return nil, err
	}
	return &Reduced{rows: r}, nil
}

// NewReducedGaussian creates the reduced Gaussian grid of Gaussian number n
// with the row lengths pl, listed north to south.
func NewReducedGaussian(n int, pl []int, opts domain.Options) (*Reduced, error) {
	lats, weights, err := GaussianLatitudes(n)
	if err != nil {
		return nil, err
	}
	if len(pl) != len(lats) {
		return nil, domain.InvalidArgument("grid.NewReducedGaussian", "N%d has %d rows, got %d row lengths", n, len(lats), len(pl))
	}
	area := domain.Area{North: lats[0], West: 0, South: lats[len(lats)-1], East: 360.0}
	r, err := newRows(KindReduced, lats, pl, area, true, opts)
	if err != nil {
		return nil, err
	}
	r.gaussian = weights
	r.polar = true
	return &Reduced{rows: r, gaussianNumber: n}, nil
}

// NewOctahedral creates the octahedral reduced Gaussian grid O<n>.
func NewOctahedral(n int, opts domain.Options) (*Reduced, error) {
	if n <= 0 {
		return nil, domain.InvalidArgument("grid.NewOctahedral", "Gaussian number %d must be positive", n)
	}
	return NewReducedGaussian(n, OctahedralPointsPerRow(n), opts)
}

// GaussianNumber returns n for Gaussian grids and zero otherwise.
func (g *Reduced) GaussianNumber() int { return g.gaussianNumber }

// WithScanMode returns a copy of the grid whose samples are stored in mode.
func (g *Reduced) WithScanMode(mode ScanMode) *Reduced {
	r := *g.rows
	r.scan = mode
	r.layout()
	return &Reduced{rows: &r, gaussianNumber: g.gaussianNumber}
}

// Validate checks the row accounting invariants: every row offset plus its
// length stays within the number of points, and the lengths add up to it.
func (g *Reduced) Validate() error {
	const op = "grid.Validate"
	if err := g.validate(); err != nil {
		return err
	}
	var sum int64
	for j, n := range g.pl {
		sum += int64(n)
		if g.offsets[j]+int64(n) > g.total {
			return domain.OutOfRange(op, "row %d ends at %d beyond %d points", j, g.offsets[j]+int64(n), g.total)
		}
	}
	if sum != g.total {
		return domain.InvalidArgument(op, "rows hold %d points, grid has %d", sum, g.total)
	}
	return nil
}

func (g *Reduced) String() string {
	return g.describe("Reduced")
}
