// Package grid implements the grid shapes a field can live on and the
// spatial searches the interpolation kernels rely on.
package grid

import (
	"fmt"

	"go.ngs.io/regrid/internal/domain"
)

// Kind tags a grid variant.
type Kind int

const (
	KindRegular Kind = iota + 1
	KindReduced
	KindRotatedRegular
	KindRotatedReduced
	KindListOfPoints
)

func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindReduced:
		return "reduced"
	case KindRotatedRegular:
		return "rotated_regular"
	case KindRotatedReduced:
		return "rotated_reduced"
	case KindListOfPoints:
		return "list_of_points"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ScanMode is the convention used to flatten a grid into a 1-D array.
type ScanMode int

const (
	// ScanWENS runs west to east within a row, rows north to south.
	ScanWENS ScanMode = 1
	// ScanWESN runs west to east within a row, rows south to north.
	ScanWESN ScanMode = 2
	// ScanEWNS runs east to west within a row, rows north to south.
	ScanEWNS ScanMode = 3
	// ScanEWSN runs east to west within a row, rows south to north.
	ScanEWSN ScanMode = 4
)

// Grid is the shape of a field. A Grid never owns sample data: every query
// receives the flat data array, so one grid serves any number of fields.
//
// Query methods take the point in the grid's search frame; use Localise to
// move a geographic point into it. Methods that a variant cannot support
// return a domain.KindUnimplemented error.
type Grid interface {
	fmt.Stringer

	Kind() Kind
	NumberOfPoints() int
	PointsPerRow() []int
	Latitudes() []float64
	WEIncrement(j int) float64
	Area() domain.Area

	// Points returns every grid point in geographic coordinates, in storage order.
	Points() []domain.Point

	// NewContext returns fresh scan state for one pass over this grid.
	NewContext() *Context

	// Localise maps a geographic point into the frame searched by this grid.
	Localise(p domain.Point) domain.Point

	// Index maps column i of row j to the flat storage offset.
	Index(i, j int) (int64, error)

	// NearestPoints returns howMany neighbours of where, ordered as rings
	// around the 2x2 stencil.
	NearestPoints(ctx *Context, where domain.Point, data []float64, howMany int) ([]domain.FieldPoint, error)

	// Nearest4 returns the 2x2 stencil around where.
	Nearest4(ctx *Context, where domain.Point) ([]domain.Point, error)

	// NearestIndexed returns the up, left, down and right neighbours of a
	// point of this grid. Absent neighbours carry the value mv.
	NearestIndexed(where domain.Point, data []float64, mv float64) ([]domain.FieldPoint, error)

	// CellsAreas returns the cell of every point and its surface.
	CellsAreas() ([]domain.Area, []float64, error)

	// AverageWeighted returns the weighted mean of the inputs inside the
	// cell of where, a point of the output grid out.
	AverageWeighted(ctx *Context, where domain.Point, weights, data []float64, mv float64, out Grid) (float64, error)

	// AverageWeightedLSM is AverageWeighted with weights reduced by
	// domain.LSMFactor where land/sea classes differ.
	AverageWeightedLSM(ctx *Context, where domain.Point, weights, data, lsmIn, lsmOut []float64, mv float64, out Grid) (float64, error)

	// FluxConserving returns the area-weighted mean of the input cells
	// overlapping the cell of where.
	FluxConserving(ctx *Context, where domain.Point, areas []domain.Area, sizes, data []float64, mv float64, out Grid) (float64, error)

	// QuadratureWeights returns a normalised integration weight per point.
	QuadratureWeights() ([]float64, error)
}

// ReOrder converts data flattened with mode into ScanWENS order for a grid
// with the given points per row (listed north to south).
func ReOrder(data []float64, pl []int, mode ScanMode) ([]float64, error) {
	total := 0
	for _, n := range pl {
		total += n
	}
	if len(data) != total {
		return nil, domain.InvalidArgument("grid.ReOrder", "data has %d values, grid has %d points", len(data), total)
	}

	reverseRows := mode == ScanWESN || mode == ScanEWSN
	reverseCols := mode == ScanEWNS || mode == ScanEWSN
	if mode < ScanWENS || mode > ScanEWSN {
		return nil, domain.InvalidArgument("grid.ReOrder", "unsupported scanning mode %d", mode)
	}

	out := make([]float64, 0, total)
	src := 0
	// Row j of the input holds grid row j, or row len-1-j when rows run south to north.
	starts := make([]int, len(pl))
	for j := range pl {
		row := j
		if reverseRows {
			row = len(pl) - 1 - j
		}
		starts[row] = src
		src += pl[row]
	}
	for j, n := range pl {
		row := data[starts[j] : starts[j]+n]
		if reverseCols {
			for i := n - 1; i >= 0; i-- {
				out = append(out, row[i])
			}
			continue
		}
		out = append(out, row...)
	}
	return out, nil
}

// wrapColumn maps a column index that stepped past either end of a row of n
// points back into the row.
func wrapColumn(i, n int) int {
	if n == 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
