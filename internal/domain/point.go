// Package domain contains the value types shared by the regridding core:
// geographic points, field samples, lat/lon boxes, options and errors.
package domain

import (
	"fmt"

	"github.com/golang/geo/s2"
)

// Point is a geographic coordinate plus its indices in the owning grid.
//
// I and J are the column and row within the grid's own indexing scheme and K
// is the flattened storage offset. Points are values and are never mutated
// after construction.
type Point struct {
	Latitude  float64
	Longitude float64
	I, J      int
	K         int64
}

// NewPoint creates a point that does not belong to any grid.
func NewPoint(lat, lon float64) Point {
	return Point{Latitude: lat, Longitude: lon, I: -1, J: -1, K: -1}
}

// NewIndexedPoint creates a point at position (i, j) and offset k of a grid.
func NewIndexedPoint(lat, lon float64, i, j int, k int64) Point {
	return Point{Latitude: lat, Longitude: lon, I: i, J: j, K: k}
}

// LatLng returns the point as an s2 coordinate.
func (p Point) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Latitude, p.Longitude)
}

// EarthDistance returns the great-circle angle to other in radians.
func (p Point) EarthDistance(other Point) float64 {
	return p.LatLng().Distance(other.LatLng()).Radians()
}

// QuickDistance returns the squared distance in degree space.
func (p Point) QuickDistance(other Point) float64 {
	dlat := p.Latitude - other.Latitude
	dlon := p.Longitude - other.Longitude
	return dlat*dlat + dlon*dlon
}

// Normalized returns the point with a negative longitude moved into [0, 360).
func (p Point) Normalized() Point {
	if p.Longitude < 0 {
		p.Longitude += 360.0
	}
	return p
}

// WithCoordinates returns a copy of p carrying new coordinates and the same indices.
func (p Point) WithCoordinates(lat, lon float64) Point {
	p.Latitude = lat
	p.Longitude = lon
	return p
}

func (p Point) String() string {
	return fmt.Sprintf("Point{lat=%.6f lon=%.6f i=%d j=%d k=%d}", p.Latitude, p.Longitude, p.I, p.J, p.K)
}

// FieldPoint is a grid point together with the sample stored at it.
type FieldPoint struct {
	Point
	Value float64
}

// NewFieldPoint attaches value to p.
func NewFieldPoint(p Point, value float64) FieldPoint {
	return FieldPoint{Point: p, Value: value}
}

// IsMissing reports whether the sample equals the missing sentinel mv.
func (f FieldPoint) IsMissing(mv float64) bool {
	return f.Value == mv
}

func (f FieldPoint) String() string {
	return fmt.Sprintf("FieldPoint{%s value=%g}", f.Point, f.Value)
}

// AnyMissing reports whether any of nbrs carries the missing sentinel.
func AnyMissing(nbrs []FieldPoint, mv float64) bool {
	for _, n := range nbrs {
		if n.IsMissing(mv) {
			return true
		}
	}
	return false
}
