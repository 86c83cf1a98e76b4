package grid

import (
	"math"

	"go.ngs.io/regrid/internal/domain"
)

// GaussianLatitudes returns the 2n Gaussian latitudes of Gaussian number n,
// north to south, with their quadrature weights (summing to two).
//
// The latitudes are the arcsines of the roots of the Legendre polynomial of
// degree 2n, found by Newton iteration.
func GaussianLatitudes(n int) ([]float64, []float64, error) {
	if n <= 0 {
		return nil, nil, domain.InvalidArgument("grid.GaussianLatitudes", "Gaussian number %d must be positive", n)
	}
	m := 2 * n
	lats := make([]float64, m)
	weights := make([]float64, m)

	for i := 0; i < n; i++ {
		x := math.Cos(math.Pi * (float64(i) + 0.75) / (float64(m) + 0.5))
		for iter := 0; iter < 100; iter++ {
			p, dp := legendre(m, x)
			dx := p / dp
			x -= dx
			if math.Abs(dx) < 1e-15 {
				break
			}
		}
		_, dp := legendre(m, x)
		w := 2 / ((1 - x*x) * dp * dp)
		lat := math.Asin(x) * 180 / math.Pi

		lats[i], lats[m-1-i] = lat, -lat
		weights[i], weights[m-1-i] = w, w
	}
	return lats, weights, nil
}

// legendre evaluates P_n and its derivative at x by the three-term recurrence.
func legendre(n int, x float64) (p, dp float64) {
	p0, p1 := 1.0, x
	for k := 2; k <= n; k++ {
		p0, p1 = p1, (float64(2*k-1)*x*p1-float64(k-1)*p0)/float64(k)
	}
	dp = float64(n) * (x*p1 - p0) / (x*x - 1)
	return p1, dp
}

// OctahedralPointsPerRow returns the row lengths of the octahedral reduced
// Gaussian grid O<n>: 20 points on the rows next to the poles, four more on
// each row towards the equator.
func OctahedralPointsPerRow(n int) []int {
	pl := make([]int, 2*n)
	for i := 0; i < n; i++ {
		pl[i] = 20 + 4*i
		pl[2*n-1-i] = pl[i]
	}
	return pl
}
