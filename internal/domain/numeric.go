package domain

import "math"

// Numeric conventions shared by the grid and interpolation packages.
const (
	// RoundingFactor is the tolerance used for coordinate comparisons.
	RoundingFactor = 1e-10

	// MissingValue is the default missing-data sentinel.
	MissingValue = 9999.0

	// LSMFactor scales the weight of a neighbour whose land/sea class differs
	// from the target point.
	LSMFactor = 0.2

	// AreaFactor is the tolerance (degrees) used to detect pole targets.
	AreaFactor = 1e-3

	// EarthRadius is the radius in metres used for finite differences.
	EarthRadius = 6371229.0

	// AreaEarthRadius is the radius in metres used for cell areas.
	AreaEarthRadius = 6371220.0

	NorthPole = 90.0
	SouthPole = -90.0
)

// IsZero reports whether v is within RoundingFactor of zero.
func IsZero(v float64) bool {
	return math.Abs(v) < RoundingFactor
}

// Same reports whether a and b are equal within RoundingFactor.
func Same(a, b float64) bool {
	return IsZero(a - b)
}

// NormalizeLon360 maps arbitrary degree longitudes into the [0, 360) range.
func NormalizeLon360(lon float64) float64 {
	lon = math.Mod(lon, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	if Same(lon, 360.0) {
		lon = 0
	}
	return lon
}

// IsPole reports whether lat lies within AreaFactor of either pole.
func IsPole(lat float64) bool {
	return math.Abs(lat-NorthPole) < AreaFactor || math.Abs(lat-SouthPole) < AreaFactor
}

func deg2rad(x float64) float64 { return x / 180.0 * math.Pi }
