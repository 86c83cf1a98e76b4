package store

import (
	"go.ngs.io/regrid/internal/adapter/grid"
	"go.ngs.io/regrid/internal/domain"
)

// Field is a sampled field together with its grid. Values are stored in the
// grid's storage order (north to south, west to east for row grids).
type Field struct {
	Name         string
	Grid         grid.Grid
	Values       []float64
	MissingValue float64
}

// FieldLoader is the interface for loading input fields
type FieldLoader interface {
	// Load loads variable from the named dataset (e.g., "t2m")
	Load(name, variable string) (*Field, error)
}

// MaskProvider is the interface for land-sea masks used by the LSM methods
type MaskProvider interface {
	// MaskFor returns the mask on g, one value per storage offset
	MaskFor(g grid.Grid) ([]float64, error)
}

// PointLoader is the interface for named lists of target points
type PointLoader interface {
	// Load loads the named list (e.g., "stations")
	Load(name string) ([]domain.Point, error)

	// List returns the available list names
	List() ([]string, error)
}
