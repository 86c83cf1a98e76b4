package grid

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/kdtree"

	"go.ngs.io/regrid/internal/domain"
)

// site is a list point on the unit sphere, indexed for the k-d tree.
type site struct {
	r3.Vector
	k int
}

// Compare implements kdtree.Comparable.
func (p site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(site)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	default:
		panic("illegal dimension")
	}
}

func (p site) Dims() int { return 3 }

// Distance returns the squared chord length, monotonic in the great-circle
// distance.
func (p site) Distance(c kdtree.Comparable) float64 {
	return p.Sub(c.(site).Vector).Norm2()
}

type sites []site

func (p sites) Index(i int) kdtree.Comparable         { return p[i] }
func (p sites) Len() int                              { return len(p) }
func (p sites) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p sites) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(sitePlane{sites: p, Dim: d}, kdtree.MedianOfRandoms(sitePlane{sites: p, Dim: d}, 100))
}

// sitePlane implements kdtree.SortSlicer along one dimension.
type sitePlane struct {
	sites
	kdtree.Dim
}

func (p sitePlane) Less(i, j int) bool {
	return p.sites[i].Compare(p.sites[j], p.Dim) < 0
}

func (p sitePlane) Slice(start, end int) kdtree.SortSlicer {
	return sitePlane{sites: p.sites[start:end], Dim: p.Dim}
}

func (p sitePlane) Swap(i, j int) {
	p.sites[i], p.sites[j] = p.sites[j], p.sites[i]
}

// ListOfPoints is a set of scattered points without row structure.
type ListOfPoints struct {
	points []domain.Point
	tree   *kdtree.Tree
	area   domain.Area
}

var _ Grid = (*ListOfPoints)(nil)

// NewListOfPoints indexes pts. The k-th point gets storage offset k.
func NewListOfPoints(pts []domain.Point) (*ListOfPoints, error) {
	if len(pts) == 0 {
		return nil, domain.InvalidArgument("grid.NewListOfPoints", "point list is empty")
	}
	l := &ListOfPoints{points: make([]domain.Point, len(pts))}
	s := make(sites, len(pts))
	north, south := math.Inf(-1), math.Inf(1)
	west, east := math.Inf(1), math.Inf(-1)
	for k, p := range pts {
		if p.Latitude > domain.NorthPole || p.Latitude < domain.SouthPole {
			return nil, domain.InvalidArgument("grid.NewListOfPoints", "latitude %.6f of point %d is outside [-90, 90]", p.Latitude, k)
		}
		lon := domain.NormalizeLon360(p.Longitude)
		l.points[k] = domain.NewIndexedPoint(p.Latitude, lon, k, 0, int64(k))
		s[k] = site{Vector: unitVector(l.points[k]), k: k}
		north, south = math.Max(north, p.Latitude), math.Min(south, p.Latitude)
		west, east = math.Min(west, lon), math.Max(east, lon)
	}
	l.area = domain.Area{North: north, West: west, South: south, East: east}
	l.tree = kdtree.New(s, true)
	return l, nil
}

func (l *ListOfPoints) Kind() Kind { return KindListOfPoints }

func (l *ListOfPoints) NumberOfPoints() int { return len(l.points) }

// PointsPerRow returns nil: a list has no rows.
func (l *ListOfPoints) PointsPerRow() []int { return nil }

func (l *ListOfPoints) Latitudes() []float64 { return nil }

func (l *ListOfPoints) WEIncrement(int) float64 { return 0 }

func (l *ListOfPoints) Area() domain.Area { return l.area }

func (l *ListOfPoints) Points() []domain.Point {
	return append([]domain.Point(nil), l.points...)
}

func (l *ListOfPoints) NewContext() *Context { return newContext(familyList, nil) }

func (l *ListOfPoints) Localise(p domain.Point) domain.Point { return p }

func (l *ListOfPoints) Index(int, int) (int64, error) {
	return 0, domain.Unimplemented("ListOfPoints.Index")
}

// NearestPoints returns the howMany points closest to where on the sphere,
// nearest first; equal distances are ordered by storage offset.
func (l *ListOfPoints) NearestPoints(ctx *Context, where domain.Point, data []float64, howMany int) ([]domain.FieldPoint, error) {
	const op = "ListOfPoints.NearestPoints"
	if err := ctx.check(familyList, op); err != nil {
		return nil, err
	}
	if howMany <= 0 {
		return nil, domain.InvalidArgument(op, "unsupported number of neighbours %d", howMany)
	}
	if len(data) < len(l.points) {
		return nil, domain.InvalidArgument(op, "data has %d values, list has %d points", len(data), len(l.points))
	}
	if howMany > len(l.points) {
		howMany = len(l.points)
	}

	keeper := kdtree.NewNKeeper(howMany)
	l.tree.NearestSet(keeper, site{Vector: unitVector(where), k: -1})

	found := make([]int, 0, howMany)
	for keeper.Len() > 0 {
		item := heap.Pop(keeper).(kdtree.ComparableDist)
		if item.Comparable == nil {
			continue
		}
		found = append(found, item.Comparable.(site).k)
	}

	dist := make(map[int]float64, len(found))
	for _, k := range found {
		dist[k] = where.EarthDistance(l.points[k])
	}
	sort.Slice(found, func(a, b int) bool {
		da, db := dist[found[a]], dist[found[b]]
		if da != db {
			return da < db
		}
		return found[a] < found[b]
	})

	out := make([]domain.FieldPoint, len(found))
	for i, k := range found {
		out[i] = domain.NewFieldPoint(l.points[k], data[k])
	}
	return out, nil
}

func (l *ListOfPoints) Nearest4(*Context, domain.Point) ([]domain.Point, error) {
	return nil, domain.Unimplemented("ListOfPoints.Nearest4")
}

func (l *ListOfPoints) NearestIndexed(domain.Point, []float64, float64) ([]domain.FieldPoint, error) {
	return nil, domain.Unimplemented("ListOfPoints.NearestIndexed")
}

func (l *ListOfPoints) CellsAreas() ([]domain.Area, []float64, error) {
	return nil, nil, domain.Unimplemented("ListOfPoints.CellsAreas")
}

func (l *ListOfPoints) AverageWeighted(*Context, domain.Point, []float64, []float64, float64, Grid) (float64, error) {
	return 0, domain.Unimplemented("ListOfPoints.AverageWeighted")
}

func (l *ListOfPoints) AverageWeightedLSM(*Context, domain.Point, []float64, []float64, []float64, []float64, float64, Grid) (float64, error) {
	return 0, domain.Unimplemented("ListOfPoints.AverageWeightedLSM")
}

func (l *ListOfPoints) FluxConserving(*Context, domain.Point, []domain.Area, []float64, []float64, float64, Grid) (float64, error) {
	return 0, domain.Unimplemented("ListOfPoints.FluxConserving")
}

func (l *ListOfPoints) QuadratureWeights() ([]float64, error) {
	return nil, domain.Unimplemented("ListOfPoints.QuadratureWeights")
}

func (l *ListOfPoints) String() string {
	return fmt.Sprintf("ListOfPoints{points=%d %s}", len(l.points), l.area)
}
