package grid

import (
	"fmt"

	"go.ngs.io/regrid/internal/domain"
)

// Rotated is a regular or reduced grid defined in a rotated-pole frame.
// Searches run in the rotated frame; Points returns geographic coordinates.
type Rotated struct {
	Grid
	rotation Rotation
}

var _ Grid = (*Rotated)(nil)

// NewRotated places inner, a Regular or Reduced grid, in the frame of rot.
func NewRotated(inner Grid, rot Rotation) (*Rotated, error) {
	switch inner.(type) {
	case *Regular, *Reduced:
	default:
		return nil, domain.InvalidArgument("grid.NewRotated", "can not rotate a %s grid", inner.Kind())
	}
	return &Rotated{Grid: inner, rotation: rot}, nil
}

// Kind returns KindRotatedRegular or KindRotatedReduced.
func (g *Rotated) Kind() Kind {
	if g.Grid.Kind() == KindReduced {
		return KindRotatedReduced
	}
	return KindRotatedRegular
}

// Rotation returns the frame of the grid.
func (g *Rotated) Rotation() Rotation { return g.rotation }

// Inner returns the grid in its own frame.
func (g *Rotated) Inner() Grid { return g.Grid }

// Points returns the grid points in geographic coordinates.
func (g *Rotated) Points() []domain.Point {
	pts := g.Grid.Points()
	for i, p := range pts {
		pts[i] = g.rotation.Unrotate(p)
	}
	return pts
}

// Localise rotates a geographic point into the grid's frame.
func (g *Rotated) Localise(p domain.Point) domain.Point {
	return g.rotation.Rotate(p)
}

func (g *Rotated) CellsAreas() ([]domain.Area, []float64, error) {
	return nil, nil, domain.Unimplemented("Rotated.CellsAreas")
}

func (g *Rotated) AverageWeighted(*Context, domain.Point, []float64, []float64, float64, Grid) (float64, error) {
	return 0, domain.Unimplemented("Rotated.AverageWeighted")
}

func (g *Rotated) AverageWeightedLSM(*Context, domain.Point, []float64, []float64, []float64, []float64, float64, Grid) (float64, error) {
	return 0, domain.Unimplemented("Rotated.AverageWeightedLSM")
}

func (g *Rotated) FluxConserving(*Context, domain.Point, []domain.Area, []float64, []float64, float64, Grid) (float64, error) {
	return 0, domain.Unimplemented("Rotated.FluxConserving")
}

func (g *Rotated) String() string {
	return fmt.Sprintf("Rotated{%s %s}", g.rotation, g.Grid)
}
