package interp

import (
	"fmt"

	"go.ngs.io/regrid/internal/adapter/grid"
	"go.ngs.io/regrid/internal/domain"
)

// Cell runs a cell method between an input and an output grid. The input
// quadrature weights or cell areas are computed once and shared by every
// output point.
type Cell struct {
	kind    Kind
	in, out grid.Grid
	mv      float64
	weights []float64
	areas   []domain.Area
	sizes   []float64
	lsmIn   []float64
	lsmOut  []float64
}

func rowGrid(g grid.Grid) bool {
	return g.Kind() == grid.KindRegular || g.Kind() == grid.KindReduced
}

// NewCell prepares the cell method kind from in to out. Both grids must be
// regular or reduced.
func NewCell(kind Kind, in, out grid.Grid, cfg Config) (*Cell, error) {
	const op = "interp.NewCell"
	if !kind.IsCell() {
		return nil, domain.InvalidArgument(op, "%s is not a cell method", kind)
	}
	if !rowGrid(in) || !rowGrid(out) {
		return nil, domain.Unimplemented(fmt.Sprintf("%s: %s from %s to %s", op, kind, in.Kind(), out.Kind()))
	}
	c := &Cell{kind: kind, in: in, out: out, mv: cfg.MissingValue, lsmIn: cfg.LSMIn, lsmOut: cfg.LSMOut}

	var err error
	switch kind {
	case KindAverageWeighted, KindAverageWeightedLSM:
		if kind == KindAverageWeightedLSM {
			if len(c.lsmIn) != in.NumberOfPoints() || len(c.lsmOut) != out.NumberOfPoints() {
				return nil, domain.InvalidArgument(op, "land-sea masks have %d and %d points, grids have %d and %d",
					len(c.lsmIn), len(c.lsmOut), in.NumberOfPoints(), out.NumberOfPoints())
			}
		}
		if c.weights, err = in.QuadratureWeights(); err != nil {
			return nil, fmt.Errorf("failed to compute quadrature weights: %w", err)
		}
	case KindFluxConserving:
		if c.areas, c.sizes, err = in.CellsAreas(); err != nil {
			return nil, fmt.Errorf("failed to compute cell areas: %w", err)
		}
	}
	return c, nil
}

// Value returns the cell value at where, a point of the output grid.
func (c *Cell) Value(ctx *grid.Context, where domain.Point, data []float64) (float64, error) {
	switch c.kind {
	case KindAverageWeighted:
		return c.in.AverageWeighted(ctx, where, c.weights, data, c.mv, c.out)
	case KindAverageWeightedLSM:
		return c.in.AverageWeightedLSM(ctx, where, c.weights, data, c.lsmIn, c.lsmOut, c.mv, c.out)
	default:
		return c.in.FluxConserving(ctx, where, c.areas, c.sizes, data, c.mv, c.out)
	}
}

// InputWeights returns the quadrature weights of the input grid, or nil for
// flux conserving.
func (c *Cell) InputWeights() []float64 { return c.weights }

func (c *Cell) Kind() Kind { return c.kind }

func (c *Cell) String() string {
	return fmt.Sprintf("%s{in=%s out=%s}", c.kind, c.in.Kind(), c.out.Kind())
}
