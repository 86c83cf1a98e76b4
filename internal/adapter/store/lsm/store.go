// Package lsm provides land-sea masks on arbitrary grids for the LSM-aware
// interpolation methods.
package lsm

import (
	"fmt"
	"sync"

	"go.ngs.io/regrid/internal/adapter/grid"
	"go.ngs.io/regrid/internal/adapter/interp"
	"go.ngs.io/regrid/internal/adapter/store/field"
	"go.ngs.io/regrid/internal/domain"
)

// Store derives masks from one master mask file. The master is read on first
// use and every derived mask is cached by grid.
type Store struct {
	path     string // Path to the master mask NetCDF file.
	variable string
	opts     domain.Options
	master   *field.Field
	masks    map[string][]float64
	mu       sync.RWMutex
}

// NewStore creates a mask store reading variable from the file at path.
func NewStore(path, variable string, opts domain.Options) *Store {
	return &Store{
		path:     path,
		variable: variable,
		opts:     opts,
		masks:    make(map[string][]float64),
	}
}

func maskKey(g grid.Grid) string {
	return fmt.Sprintf("%s/%d/%s", g.Kind(), g.NumberOfPoints(), g)
}

// MaskFor returns the land-sea mask on g, one value in [0, 1] per storage
// offset. Masks on other grids are taken from the nearest master point.
func (s *Store) MaskFor(g grid.Grid) ([]float64, error) {
	key := maskKey(g)
	s.mu.RLock()
	if m, ok := s.masks[key]; ok {
		s.mu.RUnlock()
		return m, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.masks[key]; ok {
		return m, nil
	}
	if s.master == nil {
		master, err := field.Load(s.path, s.variable, field.DefaultConfig(), s.opts)
		if err != nil {
			return nil, fmt.Errorf("failed to load land-sea mask: %w", err)
		}
		s.master = master
	}

	m, err := s.derive(g)
	if err != nil {
		return nil, fmt.Errorf("failed to derive land-sea mask for %s: %w", g, err)
	}
	s.masks[key] = m
	return m, nil
}

func (s *Store) derive(g grid.Grid) ([]float64, error) {
	src := s.master
	values := make([]float64, len(src.Values))
	for i, v := range src.Values {
		if v == src.MissingValue {
			v = 0
		}
		values[i] = v
	}
	if maskKey(src.Grid) == maskKey(g) {
		return values, nil
	}

	nn, err := interp.New(interp.KindNearestNeighbour, interp.DefaultConfig())
	if err != nil {
		return nil, err
	}
	out := make([]float64, g.NumberOfPoints())
	ctx := src.Grid.NewContext()
	for _, p := range g.Points() {
		where := src.Grid.Localise(p)
		nbrs, err := src.Grid.NearestPoints(ctx, where, values, nn.Neighbours())
		if err != nil {
			return nil, err
		}
		v, err := nn.Value(where, nbrs)
		if err != nil {
			return nil, err
		}
		if v == domain.MissingValue {
			v = 0
		}
		out[p.K] = v
	}
	return out, nil
}

// Close releases the master mask.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.master = nil
	s.masks = make(map[string][]float64)
	return nil
}
