// Package gridspec reads grid descriptions written in HJSON.
//
// A description names the grid type and its geometry:
//
//	{
//	  # 1 degree global lat/lon
//	  type: regular
//	  area: [90, 0, -90, 360]
//	  increments: [1, 1]
//	}
package gridspec

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/hjson/hjson-go"

	"go.ngs.io/regrid/internal/adapter/grid"
	"go.ngs.io/regrid/internal/domain"
)

// Grid types understood by Build.
const (
	TypeRegular         = "regular"
	TypeRegularGaussian = "regular_gaussian"
	TypeReducedGaussian = "reduced_gaussian"
	TypeOctahedral      = "octahedral"
	TypeReduced         = "reduced"
	TypeRotated         = "rotated"
	TypePoints          = "points"
)

// Spec describes a grid. Area is [north, west, south, east] and Increments
// is [north-south, west-east], both in degrees.
type Spec struct {
	Type       string       `json:"type" validate:"required,oneof=regular regular_gaussian reduced_gaussian octahedral reduced rotated points"`
	Area       []float64    `json:"area,omitempty" validate:"omitempty,len=4"`
	Increments []float64    `json:"increments,omitempty" validate:"omitempty,len=2,dive,gt=0"`
	N          int          `json:"n,omitempty" validate:"omitempty,min=1,max=8000"`
	PL         []int        `json:"pl,omitempty" validate:"omitempty,dive,min=0"`
	Latitudes  []float64    `json:"latitudes,omitempty" validate:"omitempty,dive,min=-90,max=90"`
	ScanMode   int          `json:"scan_mode,omitempty" validate:"omitempty,oneof=1 2"`
	SouthPole  []float64    `json:"south_pole,omitempty" validate:"omitempty,len=2"`
	Inner      *Spec        `json:"inner,omitempty"`
	Points     [][2]float64 `json:"points,omitempty"`
}

var validate = validator.New()

// Load reads and builds the grid described in the HJSON file at path.
func Load(path string, opts domain.Options) (grid.Grid, error) {
	//nolint:gosec // G304: File path comes from a CLI flag or the data directory.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grid description: %w", err)
	}
	g, err := Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return g, nil
}

// Parse decodes an HJSON (or plain JSON) description and builds its grid.
func Parse(data []byte, opts domain.Options) (grid.Grid, error) {
	var spec Spec
	if err := Decode(data, &spec); err != nil {
		return nil, err
	}
	return Build(spec, opts)
}

// Decode turns HJSON into spec. HJSON is decoded into a generic map first
// so that the json tags of Spec apply.
func Decode(data []byte, spec *Spec) error {
	var raw map[string]any
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return domain.InvalidArgument("gridspec.Decode", "malformed description: %v", err)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to re-encode description: %w", err)
	}
	if err := json.Unmarshal(b, spec); err != nil {
		return domain.InvalidArgument("gridspec.Decode", "bad field: %v", err)
	}
	return nil
}

// Build creates the grid described by spec.
func Build(spec Spec, opts domain.Options) (grid.Grid, error) {
	const op = "gridspec.Build"
	if err := validate.Struct(spec); err != nil {
		return nil, domain.InvalidArgument(op, "%v", err)
	}

	switch spec.Type {
	case TypeRegular:
		if len(spec.Increments) != 2 {
			return nil, domain.InvalidArgument(op, "regular grid needs increments")
		}
		g, err := grid.NewRegular(spec.area(), spec.Increments[0], spec.Increments[1], opts)
		if err != nil {
			return nil, err
		}
		return g.WithScanMode(spec.scan()), nil

	case TypeRegularGaussian:
		if spec.N == 0 {
			return nil, domain.InvalidArgument(op, "regular_gaussian grid needs n")
		}
		g, err := grid.NewRegularGaussian(spec.N, opts)
		if err != nil {
			return nil, err
		}
		return g.WithScanMode(spec.scan()), nil

	case TypeOctahedral:
		if spec.N == 0 {
			return nil, domain.InvalidArgument(op, "octahedral grid needs n")
		}
		g, err := grid.NewOctahedral(spec.N, opts)
		if err != nil {
			return nil, err
		}
		return g.WithScanMode(spec.scan()), nil

	case TypeReducedGaussian:
		if spec.N == 0 || len(spec.PL) == 0 {
			return nil, domain.InvalidArgument(op, "reduced_gaussian grid needs n and pl")
		}
		g, err := grid.NewReducedGaussian(spec.N, spec.PL, opts)
		if err != nil {
			return nil, err
		}
		return g.WithScanMode(spec.scan()), nil

	case TypeReduced:
		if len(spec.Latitudes) == 0 || len(spec.Latitudes) != len(spec.PL) {
			return nil, domain.InvalidArgument(op, "reduced grid needs one pl entry per latitude (%d latitudes, %d pl)",
				len(spec.Latitudes), len(spec.PL))
		}
		g, err := grid.NewReduced(spec.Latitudes, spec.PL, spec.area(), opts)
		if err != nil {
			return nil, err
		}
		if err := g.Validate(); err != nil {
			return nil, err
		}
		return g.WithScanMode(spec.scan()), nil

	case TypeRotated:
		if spec.Inner == nil || len(spec.SouthPole) != 2 {
			return nil, domain.InvalidArgument(op, "rotated grid needs inner and south_pole")
		}
		inner, err := Build(*spec.Inner, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to build inner grid: %w", err)
		}
		return grid.NewRotated(inner, grid.Rotation{SouthPoleLat: spec.SouthPole[0], SouthPoleLon: spec.SouthPole[1]})

	default: // TypePoints
		if len(spec.Points) == 0 {
			return nil, domain.InvalidArgument(op, "points grid needs at least one point")
		}
		pts := make([]domain.Point, len(spec.Points))
		for i, ll := range spec.Points {
			if ll[0] < domain.SouthPole || ll[0] > domain.NorthPole {
				return nil, domain.InvalidArgument(op, "point %d latitude %.6f must be between -90 and 90", i, ll[0])
			}
			pts[i] = domain.NewPoint(ll[0], ll[1])
		}
		return grid.NewListOfPoints(pts)
	}
}

func (s Spec) area() domain.Area {
	if len(s.Area) != 4 {
		return domain.GlobalArea()
	}
	return domain.NewArea(s.Area[0], s.Area[1], s.Area[2], s.Area[3])
}

func (s Spec) scan() grid.ScanMode {
	if s.ScanMode == 0 {
		return grid.ScanWENS
	}
	return grid.ScanMode(s.ScanMode)
}

// Describe returns a Spec that rebuilds g.
func Describe(g grid.Grid) Spec {
	switch t := g.(type) {
	case *grid.Rotated:
		inner := Describe(t.Inner())
		rot := t.Rotation()
		return Spec{Type: TypeRotated, Inner: &inner, SouthPole: []float64{rot.SouthPoleLat, rot.SouthPoleLon}}
	case *grid.Regular:
		if t.NSIncrement() == 0 {
			return Spec{Type: TypeRegularGaussian, N: t.PointsPerRow()[0] / 4}
		}
		a := t.Area()
		return Spec{
			Type:       TypeRegular,
			Area:       []float64{a.North, a.West, a.South, a.East},
			Increments: []float64{t.NSIncrement(), t.WEIncrement(0)},
		}
	case *grid.Reduced:
		if n := t.GaussianNumber(); n > 0 {
			return Spec{Type: TypeReducedGaussian, N: n, PL: t.PointsPerRow()}
		}
		a := t.Area()
		return Spec{
			Type:      TypeReduced,
			Area:      []float64{a.North, a.West, a.South, a.East},
			Latitudes: t.Latitudes(),
			PL:        t.PointsPerRow(),
		}
	default:
		pts := g.Points()
		out := make([][2]float64, len(pts))
		for i, p := range pts {
			out[i] = [2]float64{p.Latitude, p.Longitude}
		}
		return Spec{Type: TypePoints, Points: out}
	}
}
