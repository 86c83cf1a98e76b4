package grid

import (
	"math"

	"go.ngs.io/regrid/internal/domain"
)

// findNorthSouth brackets lat between rows n and s of lats (north to south),
// starting the scan at *lastJ. North of the first row it returns (-1, 0) and
// south of the last row (last, -1).
func findNorthSouth(lat float64, lastJ *int, lats []float64) (int, int, error) {
	last := len(lats) - 1
	if last < 0 {
		return 0, 0, domain.InvalidArgument("grid.findNorthSouth", "grid has no rows")
	}
	if last == 0 {
		if lat > lats[0] || domain.Same(lat, lats[0]) {
			return -1, 0, nil
		}
		return 0, -1, nil
	}
	if *lastJ < 0 || *lastJ >= last {
		*lastJ = 0
	}

	for jj := 0; jj < last; jj++ {
		j := (jj + *lastJ) % last
		if (lat < lats[j] || domain.Same(lat, lats[j])) && lat > lats[j+1] {
			*lastJ = j
			return j, j + 1, nil
		}

		// Poles: the output point lies outside the input rows and is
		// resolved from one row only.
		if j == 0 && (lat > lats[0] || domain.Same(lat, lats[0])) {
			return -1, 0, nil
		}
		if j+1 == last && (lat < lats[last] || domain.Same(lat, lats[last])) {
			return last, -1, nil
		}
	}

	return 0, 0, domain.InvalidArgument("grid.findNorthSouth", "latitude %.6f can not be found", lat)
}

// columns is the west/east bracket of a longitude within one row. west and
// east are unwrapped so that west <= lon <= east.
type columns struct {
	w, e       int
	west, east float64
}

// edgeTolerance absorbs the drift of generated longitudes at the east edge
// of a limited-area row.
const edgeTolerance = 1e-6

// findWestEast brackets lon between two columns of a row with ascending
// (possibly wrapping) longitudes, starting the scan at *lastI.
func findWestEast(lon float64, lastI *int, lons []float64, global bool) (columns, error) {
	last := len(lons) - 1
	if last < 0 {
		return columns{}, domain.InvalidArgument("grid.findWestEast", "row has no points")
	}
	if last == 0 {
		return columns{w: 0, e: 0, west: lons[0], east: lons[0]}, nil
	}
	if *lastI < 0 || *lastI >= last {
		*lastI = 0
	}

	raw := domain.NormalizeLon360(lon)
	lon = raw + domain.RoundingFactor
	if lon >= 360.0 {
		lon -= 360.0
	}

	for ii := 0; ii < last; ii++ {
		i := (ii + *lastI) % last
		low, up := lons[i], lons[i+1]

		if (lon > low || domain.Same(lon, low)) && lon < up {
			*lastI = i
			return unwrap(lon, i, i+1, low, up), nil
		}
		if up < low && (lon >= low || lon < up) {
			*lastI = i
			return unwrap(lon, i, i+1, low, up), nil
		}
	}

	if global {
		if (lon > lons[last] || domain.Same(lon, lons[last])) && lon < 360.0 {
			return unwrap(lon, last, 0, lons[last], lons[0]), nil
		}
		if lon < lons[0] || domain.Same(lon, lons[0]) {
			return unwrap(lon, last, 0, lons[last], lons[0]), nil
		}
	} else if math.Abs(raw-lons[last]) < edgeTolerance {
		return unwrap(lons[last], last-1, last, lons[last-1], lons[last]), nil
	}

	return columns{}, domain.InvalidArgument("grid.findWestEast", "longitude %.6f can not be found", lon)
}

func unwrap(lon float64, w, e int, west, east float64) columns {
	if west > lon+domain.RoundingFactor {
		west -= 360.0
	}
	if east < lon-domain.RoundingFactor {
		east += 360.0
	}
	return columns{w: w, e: e, west: west, east: east}
}

// generateLongitudes returns n longitudes starting at west. Global rows are
// spaced 360/n, limited rows span [west, east] inclusive.
func generateLongitudes(n int, west, east float64, global, emosPrecision bool) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{domain.NormalizeLon360(west)}
	}

	var inc float64
	if global {
		inc = 360.0 / float64(n)
	} else {
		inc = (east - west) / float64(n-1)
	}
	if emosPrecision {
		inc = math.Floor(inc*100000.0) / 100000.0
		if n == 2500 {
			inc = 0.144
		}
	}

	lons := make([]float64, n)
	for i := range lons {
		lon := west + inc*float64(i)
		if lon < 0 && !domain.IsZero(lon) {
			lon += 360.0
		}
		if lon >= 360.0 {
			lon -= 360.0
		}
		lons[i] = lon
	}
	return lons
}
