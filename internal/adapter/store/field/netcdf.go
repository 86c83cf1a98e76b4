// Package field reads and writes sampled fields stored in NetCDF files.
//
// Three layouts are understood:
//
//   - regular: 1-D lat and lon axes and a 2-D variable over them;
//   - reduced: 1-D lat and pl row variables and a 1-D variable holding the
//     rows one after the other, north to south;
//   - points: 1-D lat, lon and data variables sharing one dimension.
package field

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/regrid/internal/adapter/grid"
	"go.ngs.io/regrid/internal/adapter/store"
	"go.ngs.io/regrid/internal/domain"
)

// Field is the field type shared with the store interfaces.
type Field = store.Field

// FileConfig names the variables looked up first in a file.
type FileConfig struct {
	LatVarName string
	LonVarName string
	PLVarName  string
}

// DefaultConfig returns the default variable names.
func DefaultConfig() FileConfig {
	return FileConfig{
		LatVarName: "lat",
		LonVarName: "lon",
		PLVarName:  "pl",
	}
}

// Store loads fields from a data directory and caches them by file and
// variable.
type Store struct {
	dataDir string
	opts    domain.Options
	cache   map[string]*Field // Cache loaded fields.
	mu      sync.RWMutex      // Protect cache.
}

// NewStore creates a new field store rooted at dataDir.
func NewStore(dataDir string, opts domain.Options) *Store {
	return &Store{
		dataDir: dataDir,
		opts:    opts,
		cache:   make(map[string]*Field),
	}
}

// Load returns variable of the NetCDF file called name (with or without the
// .nc suffix) found anywhere under the data directory.
func (s *Store) Load(name, variable string) (*Field, error) {
	key := strings.TrimSuffix(strings.ToLower(name), ".nc") + "/" + variable
	s.mu.RLock()
	if f, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return f, nil
	}
	s.mu.RUnlock()

	path, err := s.find(name)
	if err != nil {
		return nil, err
	}
	f, err := Load(path, variable, DefaultConfig(), s.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s from %s: %w", variable, name, err)
	}

	s.mu.Lock()
	s.cache[key] = f
	s.mu.Unlock()
	return f, nil
}

// find walks the data directory for the first file matching name.
func (s *Store) find(name string) (string, error) {
	target := strings.ToLower(name)
	if !strings.HasSuffix(target, ".nc") {
		target += ".nc"
	}
	var match string
	errFound := errors.New("found")
	err := filepath.WalkDir(s.dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(d.Name(), target) {
			match = path
			return errFound
		}
		return nil
	})
	if errors.Is(err, errFound) {
		return match, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to walk data directory: %w", err)
	}
	return "", fmt.Errorf("field file %s not found under %s: %w", target, s.dataDir, fs.ErrNotExist)
}

// Load reads variable from the NetCDF file at path. Samples equal to the
// _FillValue (or missing_value) attribute, and NaNs, become the field's
// missing value. Rows stored south to north or east to west are reordered.
func Load(path, variable string, cfg FileConfig, opts domain.Options) (*Field, error) {
	//nolint:gosec // G304: path comes from configuration or a directory walk.
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	latData, err := readFirst(nc, []string{cfg.LatVarName, "latitude", "lat", "y"})
	if err != nil {
		return nil, fmt.Errorf("latitude variable not found: %w", err)
	}

	dataVar, err := nc.Var(variable)
	if err != nil {
		return nil, fmt.Errorf("variable %s not found: %w", variable, err)
	}
	values, err := readAll(dataVar)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", variable, err)
	}
	mv := domain.MissingValue
	if fv, ok := getFillValue(dataVar); ok {
		mv = fv
	}
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = mv
		}
	}

	f := &Field{Name: variable, Values: values, MissingValue: mv}
	if plVar, err := nc.Var(cfg.PLVarName); err == nil {
		f.Grid, err = reducedGrid(plVar, latData, len(values), opts)
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	lonData, err := readFirst(nc, []string{cfg.LonVarName, "longitude", "lon", "x"})
	if err != nil {
		return nil, fmt.Errorf("longitude variable not found: %w", err)
	}

	dims, err := dataVar.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	switch len(dims) {
	case 1:
		if len(latData) != len(values) || len(lonData) != len(values) {
			return nil, fmt.Errorf("point list mismatch: %d lats, %d lons, %d values", len(latData), len(lonData), len(values))
		}
		pts := make([]domain.Point, len(values))
		for i := range pts {
			pts[i] = domain.NewPoint(latData[i], lonData[i])
		}
		f.Grid, err = grid.NewListOfPoints(pts)
		if err != nil {
			return nil, fmt.Errorf("invalid point list: %w", err)
		}
	case 2:
		f.Grid, f.Values, err = regularGrid(dims, latData, lonData, values, opts)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("expected 1D or 2D data, got %dD", len(dims))
	}
	return f, nil
}

func reducedGrid(plVar netcdf.Var, lats []float64, nValues int, opts domain.Options) (grid.Grid, error) {
	plData, err := readAll(plVar)
	if err != nil {
		return nil, fmt.Errorf("failed to read pl: %w", err)
	}
	if len(plData) != len(lats) {
		return nil, fmt.Errorf("pl has %d rows, lat has %d", len(plData), len(lats))
	}
	pl := make([]int, len(plData))
	total := 0
	for j, n := range plData {
		pl[j] = int(n)
		total += pl[j]
	}
	if total != nValues {
		return nil, fmt.Errorf("pl describes %d points, data has %d", total, nValues)
	}

	if n, ok := attrFloat(plVar, "gaussian_number"); ok {
		g, err := grid.NewReducedGaussian(int(n), pl, opts)
		if err != nil {
			return nil, fmt.Errorf("invalid reduced Gaussian grid: %w", err)
		}
		return g, nil
	}
	west, east := 0.0, 360.0
	if v, ok := attrFloat(plVar, "west"); ok {
		west = v
	}
	if v, ok := attrFloat(plVar, "east"); ok {
		east = v
	}
	area := domain.Area{North: lats[0], West: west, South: lats[len(lats)-1], East: east}
	g, err := grid.NewReduced(lats, pl, area, opts)
	if err != nil {
		return nil, fmt.Errorf("invalid reduced grid: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reduced grid: %w", err)
	}
	return g, nil
}

// regularGrid builds a regular grid from its axes and returns the values in
// north-to-south, west-to-east order.
func regularGrid(dims []netcdf.Dim, lats, lons, values []float64, opts domain.Options) (grid.Grid, []float64, error) {
	nLat, nLon := len(lats), len(lons)
	dim0Len, err := dims[0].Len()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get dim0 length: %w", err)
	}
	dim1Len, err := dims[1].Len()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get dim1 length: %w", err)
	}

	type dimOrder struct{ d0, d1 uint64 }
	switch (dimOrder{dim0Len, dim1Len}) {
	case dimOrder{uint64(nLat), uint64(nLon)}:
	case dimOrder{uint64(nLon), uint64(nLat)}:
		values = transpose(values, nLon, nLat)
	default:
		return nil, nil, fmt.Errorf("dimension mismatch: data is [%d, %d], expected [%d, %d] or [%d, %d]",
			dim0Len, dim1Len, nLat, nLon, nLon, nLat)
	}

	southFirst := nLat > 1 && lats[0] < lats[nLat-1]
	eastFirst := nLon > 1 && lons[1] < lons[0] && lons[0]-lons[1] < 180
	mode := grid.ScanWENS
	switch {
	case southFirst && eastFirst:
		mode = grid.ScanEWSN
	case southFirst:
		mode = grid.ScanWESN
	case eastFirst:
		mode = grid.ScanEWNS
	}
	if mode != grid.ScanWENS {
		pl := make([]int, nLat)
		for j := range pl {
			pl[j] = nLon
		}
		if values, err = grid.ReOrder(values, pl, mode); err != nil {
			return nil, nil, fmt.Errorf("failed to reorder data: %w", err)
		}
		if southFirst {
			lats = reversed(lats)
		}
		if eastFirst {
			lons = reversed(lons)
		}
	}

	g, err := grid.NewRegularFromAxes(lats, lons, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid grid: %w", err)
	}
	return g, values, nil
}

// Save writes f to path in the layout matching its grid. Rotated grids are
// written as point lists in geographic coordinates.
func Save(path string, f *Field) error {
	nc, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	if len(f.Values) != f.Grid.NumberOfPoints() {
		return fmt.Errorf("field has %d values, grid has %d points", len(f.Values), f.Grid.NumberOfPoints())
	}

	var writes []func() error
	switch g := f.Grid.(type) {
	case *grid.Regular:
		writes, err = defineRegular(nc, g, f)
	case *grid.Reduced:
		writes, err = defineReduced(nc, g, f)
	default:
		writes, err = definePoints(nc, f)
	}
	if err != nil {
		return err
	}

	if err := nc.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}
	for _, write := range writes {
		if err := write(); err != nil {
			return err
		}
	}
	return nil
}

func defineData(nc netcdf.Dataset, f *Field, dims []netcdf.Dim) (netcdf.Var, error) {
	v, err := nc.AddVar(f.Name, netcdf.DOUBLE, dims)
	if err != nil {
		return netcdf.Var{}, fmt.Errorf("failed to add variable %s: %w", f.Name, err)
	}
	if err := v.Attr("_FillValue").WriteFloat64s([]float64{f.MissingValue}); err != nil {
		return netcdf.Var{}, fmt.Errorf("failed to write _FillValue: %w", err)
	}
	return v, nil
}

func defineRegular(nc netcdf.Dataset, g *grid.Regular, f *Field) ([]func() error, error) {
	lats := g.Latitudes()
	pts := g.Points()
	lons := make([]float64, g.PointsPerRow()[0])
	for i := range lons {
		lons[i] = pts[i].Longitude
	}

	latDim, err := nc.AddDim("lat", uint64(len(lats)))
	if err != nil {
		return nil, fmt.Errorf("failed to add lat dimension: %w", err)
	}
	lonDim, err := nc.AddDim("lon", uint64(len(lons)))
	if err != nil {
		return nil, fmt.Errorf("failed to add lon dimension: %w", err)
	}
	vlat, err := nc.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return nil, fmt.Errorf("failed to add lat variable: %w", err)
	}
	vlon, err := nc.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return nil, fmt.Errorf("failed to add lon variable: %w", err)
	}
	vdata, err := defineData(nc, f, []netcdf.Dim{latDim, lonDim})
	if err != nil {
		return nil, err
	}
	return []func() error{
		writer(vlat, lats, "lat"),
		writer(vlon, lons, "lon"),
		writer(vdata, f.Values, f.Name),
	}, nil
}

func defineReduced(nc netcdf.Dataset, g *grid.Reduced, f *Field) ([]func() error, error) {
	rowDim, err := nc.AddDim("rows", uint64(len(g.Latitudes())))
	if err != nil {
		return nil, fmt.Errorf("failed to add rows dimension: %w", err)
	}
	valDim, err := nc.AddDim("values", uint64(len(f.Values)))
	if err != nil {
		return nil, fmt.Errorf("failed to add values dimension: %w", err)
	}
	vlat, err := nc.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{rowDim})
	if err != nil {
		return nil, fmt.Errorf("failed to add lat variable: %w", err)
	}
	vpl, err := nc.AddVar("pl", netcdf.INT, []netcdf.Dim{rowDim})
	if err != nil {
		return nil, fmt.Errorf("failed to add pl variable: %w", err)
	}
	if n := g.GaussianNumber(); n > 0 {
		if err := vpl.Attr("gaussian_number").WriteInt32s([]int32{int32(n)}); err != nil {
			return nil, fmt.Errorf("failed to write gaussian_number: %w", err)
		}
	} else {
		area := g.Area()
		if err := vpl.Attr("west").WriteFloat64s([]float64{area.West}); err != nil {
			return nil, fmt.Errorf("failed to write west: %w", err)
		}
		if err := vpl.Attr("east").WriteFloat64s([]float64{area.East}); err != nil {
			return nil, fmt.Errorf("failed to write east: %w", err)
		}
	}
	vdata, err := defineData(nc, f, []netcdf.Dim{valDim})
	if err != nil {
		return nil, err
	}

	pl := make([]int32, len(g.PointsPerRow()))
	for j, n := range g.PointsPerRow() {
		pl[j] = int32(n)
	}
	return []func() error{
		writer(vlat, g.Latitudes(), "lat"),
		func() error {
			if err := vpl.WriteInt32s(pl); err != nil {
				return fmt.Errorf("failed to write pl: %w", err)
			}
			return nil
		},
		writer(vdata, f.Values, f.Name),
	}, nil
}

func definePoints(nc netcdf.Dataset, f *Field) ([]func() error, error) {
	pts := f.Grid.Points()
	lats := make([]float64, len(f.Values))
	lons := make([]float64, len(f.Values))
	for _, p := range pts {
		lats[p.K], lons[p.K] = p.Latitude, p.Longitude
	}

	dim, err := nc.AddDim("points", uint64(len(f.Values)))
	if err != nil {
		return nil, fmt.Errorf("failed to add points dimension: %w", err)
	}
	vlat, err := nc.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{dim})
	if err != nil {
		return nil, fmt.Errorf("failed to add lat variable: %w", err)
	}
	vlon, err := nc.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{dim})
	if err != nil {
		return nil, fmt.Errorf("failed to add lon variable: %w", err)
	}
	vdata, err := defineData(nc, f, []netcdf.Dim{dim})
	if err != nil {
		return nil, err
	}
	return []func() error{
		writer(vlat, lats, "lat"),
		writer(vlon, lons, "lon"),
		writer(vdata, f.Values, f.Name),
	}, nil
}

func writer(v netcdf.Var, data []float64, name string) func() error {
	return func() error {
		if err := v.WriteFloat64s(data); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		return nil
	}
}
