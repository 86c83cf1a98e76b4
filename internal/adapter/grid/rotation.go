package grid

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"

	"go.ngs.io/regrid/internal/domain"
)

// Rotation describes a rotated-pole frame by the geographic position of its
// south pole.
type Rotation struct {
	SouthPoleLat float64
	SouthPoleLon float64
}

// Rotate maps a geographic point into the rotated frame.
func (r Rotation) Rotate(p domain.Point) domain.Point {
	v := unitVector(p)
	v = rotZ(v, -r.SouthPoleLon*math.Pi/180)
	v = rotY(v, (90+r.SouthPoleLat)*math.Pi/180)
	return withVector(p, v)
}

// Unrotate maps a point of the rotated frame back to geographic coordinates.
func (r Rotation) Unrotate(p domain.Point) domain.Point {
	v := unitVector(p)
	v = rotY(v, -(90+r.SouthPoleLat)*math.Pi/180)
	v = rotZ(v, r.SouthPoleLon*math.Pi/180)
	return withVector(p, v)
}

func (r Rotation) String() string {
	return fmt.Sprintf("Rotation{south pole lat=%.6f lon=%.6f}", r.SouthPoleLat, r.SouthPoleLon)
}

func unitVector(p domain.Point) r3.Vector {
	return s2.PointFromLatLng(p.LatLng()).Vector
}

// withVector returns p moved to v, longitude in [0, 360).
func withVector(p domain.Point, v r3.Vector) domain.Point {
	ll := s2.LatLngFromPoint(s2.Point{Vector: v})
	return p.WithCoordinates(ll.Lat.Degrees(), domain.NormalizeLon360(ll.Lng.Degrees()))
}

func rotY(v r3.Vector, a float64) r3.Vector {
	c, s := math.Cos(a), math.Sin(a)
	return r3.Vector{X: v.X*c + v.Z*s, Y: v.Y, Z: -v.X*s + v.Z*c}
}

func rotZ(v r3.Vector, a float64) r3.Vector {
	c, s := math.Cos(a), math.Sin(a)
	return r3.Vector{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c, Z: v.Z}
}
