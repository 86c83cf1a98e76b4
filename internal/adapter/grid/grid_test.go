package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/regrid/internal/domain"
)

func scenarioGrid(t *testing.T) *Reduced {
	t.Helper()
	g, err := NewReduced(
		[]float64{60, 20, -20, -60},
		[]int{4, 8, 8, 4},
		domain.Area{North: 60, West: 0, South: -60, East: 360},
		domain.Options{},
	)
	require.NoError(t, err)
	return g
}

func globalOneDegree(t *testing.T) *Regular {
	t.Helper()
	g, err := NewRegular(domain.Area{North: 90, West: 0, South: -90, East: 359}, 1, 1, domain.Options{})
	require.NoError(t, err)
	return g
}

func constant(n int, v float64) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = v
	}
	return data
}

// TestReduced_ScenarioBilinearStencil tests the 2x2 stencil around the
// equator of a small reduced grid.
func TestReduced_ScenarioBilinearStencil(t *testing.T) {
	g := scenarioGrid(t)
	data := make([]float64, g.NumberOfPoints())
	for i := range data {
		data[i] = float64(i)
	}

	nbrs, err := g.NearestPoints(g.NewContext(), domain.NewPoint(0, 0), data, 4)
	require.NoError(t, err)
	require.Len(t, nbrs, 4)

	assert.Equal(t, 20.0, nbrs[0].Latitude)
	assert.Equal(t, 20.0, nbrs[1].Latitude)
	assert.Equal(t, -20.0, nbrs[2].Latitude)
	assert.Equal(t, -20.0, nbrs[3].Latitude)

	// Row 1 starts after the 4 points of row 0, row 2 after 4+8.
	assert.Equal(t, []int64{4, 5, 12, 13}, []int64{nbrs[0].K, nbrs[1].K, nbrs[2].K, nbrs[3].K})
	for _, n := range nbrs {
		assert.Equal(t, float64(n.K), n.Value)
	}
}

func TestReduced_RowAccounting(t *testing.T) {
	g := scenarioGrid(t)
	require.NoError(t, g.Validate())

	sum := 0
	for _, n := range g.PointsPerRow() {
		sum += n
	}
	assert.Equal(t, g.NumberOfPoints(), sum)
	for j, n := range g.pl {
		assert.LessOrEqual(t, g.offsets[j]+int64(n), int64(g.NumberOfPoints()))
	}
	assert.Len(t, g.Points(), g.NumberOfPoints())
}

func TestReduced_RejectsEmptyRowAwayFromPoles(t *testing.T) {
	_, err := NewReduced([]float64{60, 20, -20}, []int{4, 0, 4}, domain.Area{North: 60, West: 0, South: -20, East: 360}, domain.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

// TestFindWestEast_Wraparound tests that L and L+360 bracket identically.
func TestFindWestEast_Wraparound(t *testing.T) {
	lons := generateLongitudes(8, 0, 360, true, false)

	tests := []struct {
		lon  float64
		w, e int
	}{
		{0, 0, 1},
		{10, 0, 1},
		{100, 2, 3},
		{350, 7, 0},
		{-10, 7, 0},
	}

	for _, tt := range tests {
		for _, shift := range []float64{0, 360, 720} {
			last := 0
			c, err := findWestEast(tt.lon+shift, &last, lons, true)
			require.NoError(t, err)
			if c.w != tt.w || c.e != tt.e {
				t.Errorf("lon %.1f: expected (%d, %d), got (%d, %d)", tt.lon+shift, tt.w, tt.e, c.w, c.e)
			}
			lon := domain.NormalizeLon360(tt.lon)
			assert.LessOrEqual(t, c.west, lon+1e-9)
			assert.GreaterOrEqual(t, c.east, lon-1e-9)
		}
	}
}

func TestFindWestEast_LimitedArea(t *testing.T) {
	lons := generateLongitudes(5, 10, 50, false, false)
	last := 0

	c, err := findWestEast(50, &last, lons, false)
	require.NoError(t, err)
	assert.Equal(t, 3, c.w)
	assert.Equal(t, 4, c.e)

	_, err = findWestEast(60, &last, lons, false)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	for start := 0; start < 4; start++ {
		last = start
		c, err := findWestEast(50, &last, lons, false)
		require.NoError(t, err, "start %d", start)
		assert.Equal(t, 4, c.e)
		assert.InDelta(t, 50.0, c.east, 1e-9)
	}
}

// TestRegular_LimitedAreaSelfQuery tests that every point of a limited-area
// grid, east column included, finds its own stencil.
func TestRegular_LimitedAreaSelfQuery(t *testing.T) {
	tests := []struct {
		east, we float64
	}{
		{40, 1},
		{40, 0.1},
		{40, 0.3},
		{50, 10},
	}

	for _, tt := range tests {
		g, err := NewRegular(domain.Area{North: 10, West: 10, South: -10, East: tt.east}, 1, tt.we, domain.Options{})
		require.NoError(t, err)
		data := constant(g.NumberOfPoints(), 1)

		ctx := g.NewContext()
		failures := 0
		for _, p := range g.Points() {
			nbrs, err := g.NearestPoints(ctx, p, data, 4)
			if err != nil {
				failures++
				continue
			}
			assert.NotEmpty(t, nbrs)
		}
		assert.Zero(t, failures, "east %.0f increment %.1f", tt.east, tt.we)
	}
}

func TestFindNorthSouth(t *testing.T) {
	lats := []float64{60, 20, -20, -60}
	tests := []struct {
		lat  float64
		n, s int
	}{
		{0, 1, 2},
		{20, 1, 2},
		{59, 0, 1},
		{75, -1, 0},
		{-60, 3, -1},
		{-80, 3, -1},
	}
	last := 0
	for _, tt := range tests {
		n, s, err := findNorthSouth(tt.lat, &last, lats)
		require.NoError(t, err)
		if n != tt.n || s != tt.s {
			t.Errorf("lat %.1f: expected (%d, %d), got (%d, %d)", tt.lat, tt.n, tt.s, n, s)
		}
	}
}

func TestGenerateLongitudes_EmosPrecision(t *testing.T) {
	lons := generateLongitudes(2500, 0, 360, true, true)
	assert.InDelta(t, 0.144, lons[1], 1e-12)

	lons = generateLongitudes(7, 0, 360, true, true)
	assert.InDelta(t, 51.42857, lons[1], 1e-12)

	lons = generateLongitudes(4, -10, 20, false, false)
	assert.InDelta(t, 350.0, lons[0], 1e-12)
	assert.InDelta(t, 20.0, lons[3], 1e-12)
}

// TestRegular_RingSizes tests that every ring size returns distinct points.
func TestRegular_RingSizes(t *testing.T) {
	g := globalOneDegree(t)
	data := make([]float64, g.NumberOfPoints())
	where := domain.NewPoint(10.5, 0.5)

	for _, howMany := range []int{4, 12, 16, 36, 64} {
		nbrs, err := g.NearestPoints(g.NewContext(), where, data, howMany)
		require.NoError(t, err, "ring %d", howMany)
		require.Len(t, nbrs, howMany)

		seen := make(map[int64]bool)
		for _, n := range nbrs {
			assert.False(t, seen[n.K], "ring %d repeats offset %d", howMany, n.K)
			seen[n.K] = true
		}
	}

	// The first ring member of 36 sits two columns west of the stencil on
	// the row two rows north.
	nbrs, err := g.NearestPoints(g.NewContext(), where, data, 36)
	require.NoError(t, err)
	assert.Equal(t, 13.0, nbrs[16].Latitude)
	assert.InDelta(t, -2.0, nbrs[16].Longitude, 1e-9)
	assert.InDelta(t, 3.0, nbrs[21].Longitude, 1e-9)
}

func TestRegular_RingsNearPole(t *testing.T) {
	g := globalOneDegree(t)
	data := make([]float64, g.NumberOfPoints())
	where := domain.NewPoint(89.5, 10.2)

	nbrs, err := g.NearestPoints(g.NewContext(), where, data, 12)
	require.NoError(t, err)
	assert.Len(t, nbrs, 4)

	_, err = g.NearestPoints(g.NewContext(), where, data, 36)
	assert.True(t, errors.Is(err, domain.ErrOutOfRange))

	_, err = g.NearestPoints(g.NewContext(), where, data, 5)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestRegular_IndexAndScanModes(t *testing.T) {
	g, err := NewRegular(domain.Area{North: 10, West: 0, South: 0, East: 20}, 10, 10, domain.Options{})
	require.NoError(t, err)
	require.Equal(t, []int{3, 3}, g.PointsPerRow())

	k, err := g.Index(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), k)

	sn := g.WithScanMode(ScanWESN)
	k, err = sn.Index(1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), k)

	_, err = g.Index(3, 0)
	assert.True(t, errors.Is(err, domain.ErrOutOfRange))

	_, err = g.WithScanMode(ScanEWNS).Index(0, 0)
	assert.True(t, errors.Is(err, domain.ErrUnimplemented))
}

func TestReOrder(t *testing.T) {
	pl := []int{2, 3}
	expected := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name string
		mode ScanMode
		data []float64
	}{
		{"we/ns", ScanWENS, []float64{1, 2, 3, 4, 5}},
		{"we/sn", ScanWESN, []float64{3, 4, 5, 1, 2}},
		{"ew/ns", ScanEWNS, []float64{2, 1, 5, 4, 3}},
		{"ew/sn", ScanEWSN, []float64{5, 4, 3, 2, 1}},
	}
	for _, tt := range tests {
		got, err := ReOrder(tt.data, pl, tt.mode)
		require.NoError(t, err, tt.name)
		assert.Equal(t, expected, got, tt.name)
	}

	_, err := ReOrder([]float64{1}, pl, ScanWENS)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
	_, err = ReOrder(expected, pl, ScanMode(9))
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestContext_FamilyMismatch(t *testing.T) {
	g := scenarioGrid(t)
	list, err := NewListOfPoints([]domain.Point{domain.NewPoint(0, 0)})
	require.NoError(t, err)

	_, err = g.NearestPoints(list.NewContext(), domain.NewPoint(0, 0), make([]float64, g.NumberOfPoints()), 4)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = g.NearestPoints(nil, domain.NewPoint(0, 0), make([]float64, g.NumberOfPoints()), 4)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	// Same family, different grid.
	other := globalOneDegree(t)
	_, err = g.NearestPoints(other.NewContext(), domain.NewPoint(0, 0), make([]float64, g.NumberOfPoints()), 4)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	ctx := g.NewContext()
	_, err = g.NearestPoints(ctx, domain.NewPoint(0, 0), make([]float64, g.NumberOfPoints()), 4)
	require.NoError(t, err)
	_, err = other.NearestPoints(ctx, domain.NewPoint(0, 0), make([]float64, other.NumberOfPoints()), 4)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

// TestGaussianLatitudes tests symmetry, the known N1 root and the weight sum.
func TestGaussianLatitudes(t *testing.T) {
	lats, weights, err := GaussianLatitudes(1)
	require.NoError(t, err)
	expected := math.Asin(1/math.Sqrt(3)) * 180 / math.Pi
	if math.Abs(lats[0]-expected) > 1e-9 {
		t.Errorf("N1 latitude: expected %.10f, got %.10f", expected, lats[0])
	}

	lats, weights, err = GaussianLatitudes(32)
	require.NoError(t, err)
	require.Len(t, lats, 64)
	var sum float64
	for i := range lats {
		sum += weights[i]
		assert.InDelta(t, lats[i], -lats[len(lats)-1-i], 1e-12)
		if i > 0 {
			assert.Less(t, lats[i], lats[i-1])
		}
	}
	assert.InDelta(t, 2.0, sum, 1e-12)

	_, _, err = GaussianLatitudes(0)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestOctahedral(t *testing.T) {
	g, err := NewOctahedral(4, domain.Options{})
	require.NoError(t, err)
	assert.Equal(t, []int{20, 24, 28, 32, 32, 28, 24, 20}, g.PointsPerRow())
	assert.Equal(t, 4, g.GaussianNumber())
	require.NoError(t, g.Validate())

	w, err := g.QuadratureWeights()
	require.NoError(t, err)
	var sum float64
	for _, v := range w {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestRotation_RoundTrip(t *testing.T) {
	rot := Rotation{SouthPoleLat: -40, SouthPoleLon: 20}

	pole := rot.Unrotate(domain.NewPoint(-90, 0))
	assert.InDelta(t, -40.0, pole.Latitude, 1e-9)
	assert.InDelta(t, 20.0, pole.Longitude, 1e-9)

	for _, p := range []domain.Point{
		domain.NewIndexedPoint(10, 30, 1, 2, 3),
		domain.NewPoint(-45, 200),
		domain.NewPoint(60, 359),
	} {
		back := rot.Rotate(rot.Unrotate(p))
		assert.InDelta(t, p.Latitude, back.Latitude, 1e-9)
		assert.InDelta(t, 0, nearLon(back.Longitude, p.Longitude)-p.Longitude, 1e-9)
		assert.Equal(t, p.K, back.K)
	}
}

func TestRotated_SearchesInItsFrame(t *testing.T) {
	inner, err := NewRegular(domain.Area{North: 20, West: 0, South: -20, East: 40}, 1, 1, domain.Options{})
	require.NoError(t, err)
	g, err := NewRotated(inner, Rotation{SouthPoleLat: -30, SouthPoleLon: 10})
	require.NoError(t, err)
	assert.Equal(t, KindRotatedRegular, g.Kind())

	pts := g.Points()
	require.Len(t, pts, g.NumberOfPoints())

	// A grid point taken back into the frame brackets onto itself.
	p := pts[5*41+7]
	local := g.Localise(p)
	nbrs, err := g.NearestPoints(g.NewContext(), local, make([]float64, g.NumberOfPoints()), 4)
	require.NoError(t, err)
	var found bool
	for _, n := range nbrs {
		found = found || n.K == p.K
	}
	assert.True(t, found)

	_, _, err = g.CellsAreas()
	assert.True(t, errors.Is(err, domain.ErrUnimplemented))
}

func TestListOfPoints_Nearest(t *testing.T) {
	l, err := NewListOfPoints([]domain.Point{
		domain.NewPoint(0, 0),
		domain.NewPoint(0, 10),
		domain.NewPoint(10, 0),
		domain.NewPoint(50, 50),
	})
	require.NoError(t, err)
	data := []float64{1, 2, 3, 4}

	nbrs, err := l.NearestPoints(l.NewContext(), domain.NewPoint(1, 1), data, 3)
	require.NoError(t, err)
	require.Len(t, nbrs, 3)
	assert.Equal(t, int64(0), nbrs[0].K)
	assert.Equal(t, 1.0, nbrs[0].Value)
	for _, n := range nbrs {
		assert.NotEqual(t, int64(3), n.K)
	}

	nbrs, err = l.NearestPoints(l.NewContext(), domain.NewPoint(49, -310), data, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), nbrs[0].K)

	_, err = l.Nearest4(l.NewContext(), domain.NewPoint(0, 0))
	assert.True(t, errors.Is(err, domain.ErrUnimplemented))
	_, err = l.Index(0, 0)
	assert.True(t, errors.Is(err, domain.ErrUnimplemented))
}

func TestNearestIndexed(t *testing.T) {
	g := scenarioGrid(t)
	data := make([]float64, g.NumberOfPoints())
	for i := range data {
		data[i] = float64(i)
	}
	pts := g.Points()

	// Row 0, column 0: nothing north, wraps west.
	nbrs, err := g.NearestIndexed(pts[0], data, domain.MissingValue)
	require.NoError(t, err)
	require.Len(t, nbrs, 4)
	assert.Equal(t, domain.MissingValue, nbrs[0].Value)
	assert.Equal(t, 3.0, nbrs[1].Value)
	assert.Equal(t, 4.0, nbrs[2].Value)
	assert.Equal(t, 1.0, nbrs[3].Value)
}

// TestCells_ConstantFieldIsConserved tests that averaging and flux keep a
// constant field constant.
func TestCells_ConstantFieldIsConserved(t *testing.T) {
	in := globalOneDegree(t)
	out, err := NewRegular(domain.Area{North: 90, West: 0, South: -90, East: 355}, 5, 5, domain.Options{})
	require.NoError(t, err)

	data := constant(in.NumberOfPoints(), 3)
	weights, err := in.QuadratureWeights()
	require.NoError(t, err)
	areas, sizes, err := in.CellsAreas()
	require.NoError(t, err)

	avgCtx, fluxCtx := in.NewContext(), in.NewContext()
	for _, p := range out.Points() {
		v, err := in.AverageWeighted(avgCtx, p, weights, data, domain.MissingValue, out)
		require.NoError(t, err)
		if math.Abs(v-3) > 1e-9 {
			t.Fatalf("average at %s: expected 3, got %.12f", p, v)
		}

		v, err = in.FluxConserving(fluxCtx, p, areas, sizes, data, domain.MissingValue, out)
		require.NoError(t, err)
		if math.Abs(v-3) > 1e-9 {
			t.Fatalf("flux at %s: expected 3, got %.12f", p, v)
		}
	}
}

func TestCells_MissingAndUnsupported(t *testing.T) {
	in := globalOneDegree(t)
	out, err := NewRegular(domain.Area{North: 90, West: 0, South: -90, East: 350}, 10, 10, domain.Options{})
	require.NoError(t, err)

	data := constant(in.NumberOfPoints(), domain.MissingValue)
	weights, err := in.QuadratureWeights()
	require.NoError(t, err)

	p := out.Points()[20]
	v, err := in.AverageWeighted(in.NewContext(), p, weights, data, domain.MissingValue, out)
	require.NoError(t, err)
	assert.Equal(t, domain.MissingValue, v)

	list, err := NewListOfPoints([]domain.Point{domain.NewPoint(0, 0)})
	require.NoError(t, err)
	_, err = in.AverageWeighted(in.NewContext(), list.Points()[0], weights, data, domain.MissingValue, list)
	assert.True(t, errors.Is(err, domain.ErrUnimplemented))
}

func TestCellsAreas_CoverTheSphere(t *testing.T) {
	g, err := NewReducedGaussian(2, []int{8, 12, 12, 8}, domain.Options{})
	require.NoError(t, err)
	_, sizes, err := g.CellsAreas()
	require.NoError(t, err)

	var total float64
	for _, s := range sizes {
		total += s
	}
	sphere := domain.GlobalArea().Size()
	assert.InDelta(t, sphere, total, sphere*1e-9)
}

func TestPoleAverages(t *testing.T) {
	g := scenarioGrid(t)
	data := make([]float64, g.NumberOfPoints())
	for i := range data {
		data[i] = 1
	}
	data[0] = 5
	data[1] = domain.MissingValue
	last := g.NumberOfPoints() - 1
	data[last] = 4

	north, south, err := g.PoleAverages(data, domain.MissingValue)
	require.NoError(t, err)
	assert.InDelta(t, 7.0/3.0, north, 1e-12)
	assert.InDelta(t, 7.0/4.0, south, 1e-12)
}
