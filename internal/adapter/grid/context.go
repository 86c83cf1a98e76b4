package grid

import "go.ngs.io/regrid/internal/domain"

type family int

const (
	familyRows family = iota + 1
	familyList
)

// Ring row slots of the per-row column cache.
const (
	slotNorth = iota
	slotSouth
	slotNNorth
	slotSSouth
	slotNNNorth
	slotSSSouth
	slotNNNNorth
	slotSSSSouth
	slotCount
)

// Context is the mutable scan state of one interpolation pass. Successive
// queries usually move south to north and west to east, so every search
// starts from the index found by the previous one. A Context must not be
// shared between goroutines; each worker obtains its own from NewContext.
type Context struct {
	family family
	owner  *rows

	lastJ int

	// Bracketing rows of the previous query latitude.
	haveLat bool
	lat     float64
	n, s    int

	lastI [slotCount]int

	// Rows spanned by the cell of the previous output latitude.
	haveCell  bool
	cellFlux  bool
	cellLat   float64
	cellNorth float64
	cellSouth float64
	cellFirst int
	cellLast  int

	// Last column found for the west edge of a cell, per input row.
	edge []int
}

func newContext(f family, owner *rows) *Context {
	return &Context{family: f, owner: owner}
}

func (c *Context) check(f family, op string) error {
	if c == nil {
		return domain.InvalidArgument(op, "nil grid context")
	}
	if c.family != f {
		return domain.InvalidArgument(op, "grid context belongs to another grid family")
	}
	return nil
}

// checkRows is check for row grids; the cached rows and columns only hold for
// the grid that created the context.
func (c *Context) checkRows(r *rows, op string) error {
	if err := c.check(familyRows, op); err != nil {
		return err
	}
	if c.owner != r {
		return domain.InvalidArgument(op, "grid context belongs to another grid")
	}
	return nil
}

// bracketRows returns the rows around lat, reusing the previous answer when
// the latitude did not change.
func (c *Context) bracketRows(lat float64, lats []float64) (int, int, error) {
	if c.haveLat && domain.Same(c.lat, lat) {
		return c.n, c.s, nil
	}
	n, s, err := findNorthSouth(lat, &c.lastJ, lats)
	if err != nil {
		return 0, 0, err
	}
	c.haveLat, c.lat, c.n, c.s = true, lat, n, s
	return n, s, nil
}
