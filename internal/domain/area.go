package domain

import (
	"fmt"
	"math"
)

// Area is an axis-aligned lat/lon box in degrees.
type Area struct {
	North float64
	West  float64
	South float64
	East  float64
}

// NewArea builds an area, clamping latitudes to the poles and unwrapping the
// west/east pair so that West <= East whenever the box crosses the meridian.
func NewArea(north, west, south, east float64) Area {
	if north > NorthPole {
		north = NorthPole
	}
	if south < SouthPole {
		south = SouthPole
	}
	if west > 0 && west > east {
		west -= 360.0
	}
	if west == 0 && east < 0 {
		east += 360.0
	}
	return Area{North: north, West: west, South: south, East: east}
}

// GlobalArea returns the whole sphere starting at Greenwich.
func GlobalArea() Area {
	return Area{North: NorthPole, West: 0, South: SouthPole, East: 360}
}

// Size returns the spherical surface of the box in square metres.
func (a Area) Size() float64 {
	dlon := a.East - a.West
	if dlon < 0 {
		dlon += 360.0
	}
	band := math.Sin(deg2rad(a.North)) - math.Sin(deg2rad(a.South))
	return AreaEarthRadius * AreaEarthRadius * math.Abs(band) * deg2rad(dlon)
}

// Empty reports whether the box has no extent in either direction.
func (a Area) Empty() bool {
	return a.North-a.South < RoundingFactor || a.East-a.West < RoundingFactor
}

// Contains reports whether other lies completely inside a.
func (a Area) Contains(other Area) bool {
	o := a.align(other)
	return (o.North < a.North || Same(o.North, a.North)) &&
		(o.South > a.South || Same(o.South, a.South)) &&
		(o.West > a.West || Same(o.West, a.West)) &&
		(o.East < a.East || Same(o.East, a.East))
}

// Intersection returns the overlap of a and other; ok is false when they do
// not overlap.
func (a Area) Intersection(other Area) (Area, bool) {
	o := a.align(other)
	r := Area{
		North: math.Min(a.North, o.North),
		West:  math.Max(a.West, o.West),
		South: math.Max(a.South, o.South),
		East:  math.Min(a.East, o.East),
	}
	if r.Empty() {
		return Area{}, false
	}
	return r, true
}

// IntersectionSize returns the overlapping surface of a and other, counting
// overlaps found one turn east or west as well.
func (a Area) IntersectionSize(other Area) float64 {
	var total float64
	for _, shift := range []float64{-360.0, 0, 360.0} {
		o := other
		o.West += shift
		o.East += shift
		r := Area{
			North: math.Min(a.North, o.North),
			West:  math.Max(a.West, o.West),
			South: math.Max(a.South, o.South),
			East:  math.Min(a.East, o.East),
		}
		if !r.Empty() {
			total += r.Size()
		}
	}
	return total
}

// Intersects reports whether the two boxes overlap.
func (a Area) Intersects(other Area) bool {
	_, ok := a.Intersection(other)
	return ok
}

// align shifts other by whole turns so its west edge is as close as possible
// to a's west edge.
func (a Area) align(other Area) Area {
	for other.West-a.West >= 180.0 {
		other.West -= 360.0
		other.East -= 360.0
	}
	for a.West-other.West > 180.0 {
		other.West += 360.0
		other.East += 360.0
	}
	return other
}

func (a Area) String() string {
	return fmt.Sprintf("Area{north=%.6f west=%.6f south=%.6f east=%.6f}", a.North, a.West, a.South, a.East)
}
