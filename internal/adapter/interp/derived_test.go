package interp

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/regrid/internal/adapter/grid"
	"go.ngs.io/regrid/internal/domain"
)

// TestDerivedParameters tests the subgrid parameters on known K, L, M.
func TestDerivedParameters(t *testing.T) {
	tests := []struct {
		name     string
		param    Parameter
		k, l, m  float64
		expected float64
	}{
		{"anisotropy", Anisotropy, 2, 1, 0, math.Sqrt(1.0 / 3.0)},
		{"anisotropy flat", Anisotropy, 0, 0, 0, 1},
		{"anisotropy isotropic", Anisotropy, 1, 0, 0, 1},
		{"orientation", Orientation, 0, 1, 1, math.Pi / 8},
		{"orientation along l", Orientation, 3, 2, 0, 0},
		{"slope", Slope, 2, 1, 0, math.Sqrt(3)},
		{"slope with m", Slope, 1, 0, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.param.Calculate(tt.k, tt.l, tt.m)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("%s(%g, %g, %g): expected %.12f, got %.12f", tt.param, tt.k, tt.l, tt.m, tt.expected, got)
			}
		})
	}
}

func TestDerive_Missing(t *testing.T) {
	assert.Equal(t, mv, Derive(Slope, mv, 1, 0, mv))
	assert.Equal(t, mv, Derive(Anisotropy, 2, mv, 0, mv))
	assert.InDelta(t, math.Sqrt(3), Derive(Slope, 2, 1, 0, mv), 1e-12)

	out, err := DeriveField(Anisotropy, []float64{2, mv}, []float64{1, 0}, []float64{0, 0}, mv)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(1.0/3.0), out[0], 1e-12)
	assert.Equal(t, mv, out[1])

	_, err = DeriveField(Anisotropy, []float64{1}, nil, []float64{0}, mv)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	p, err := ParseParameter("Orientation")
	require.NoError(t, err)
	assert.Equal(t, Orientation, p)
}

func TestStandardDeviation(t *testing.T) {
	assert.InDelta(t, 1.0, StandardDeviation(5, 2, mv), 1e-12)
	assert.Equal(t, 0.0, StandardDeviation(4, 2.0000001, mv))
	assert.Equal(t, mv, StandardDeviation(mv, 2, mv))
}

func TestCheckConservation(t *testing.T) {
	got, err := CheckConservation([]float64{1, mv, 3}, []float64{1, 1, 2}, mv)
	require.NoError(t, err)
	assert.InDelta(t, 1.75, got, 1e-12)

	_, err = CheckConservation([]float64{1}, []float64{1, 2}, mv)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = CheckConservation([]float64{1}, []float64{0}, mv)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestNeighboursNeeded(t *testing.T) {
	tests := []struct {
		nsIn, nsOut float64
		expected    int
	}{
		{1, 0.5, 16},
		{1, 1, 16},
		{1, 2, 36},
		{1, 3.5, 36},
		{1, 4, 64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NeighboursNeeded(tt.nsIn, tt.nsOut), "%g -> %g", tt.nsIn, tt.nsOut)
	}
}

func regional(t *testing.T) *grid.Regular {
	t.Helper()
	g, err := grid.NewRegular(domain.Area{North: 10, West: 0, South: 0, East: 10}, 1, 1, domain.Options{})
	require.NoError(t, err)
	return g
}

func offsetOf(t *testing.T, g grid.Grid, lat, lon float64) int64 {
	t.Helper()
	for _, p := range g.Points() {
		if domain.Same(p.Latitude, lat) && domain.Same(p.Longitude, lon) {
			return p.K
		}
	}
	t.Fatalf("no point at (%g, %g)", lat, lon)
	return -1
}

// TestPartialDerivatives tests centred and one-sided differences on fields
// linear in latitude and in longitude.
func TestPartialDerivatives(t *testing.T) {
	perDegree := 180 / math.Pi / domain.EarthRadius

	t.Run("meridional", func(t *testing.T) {
		g := globalOneDegree(t)
		data := field(g, func(lat, _ float64) float64 { return lat })
		d, err := PartialDerivatives(g, data, mv, domain.Options{})
		require.NoError(t, err)
		for k := range data {
			if math.Abs(d.Meridional[k]-perDegree) > perDegree*1e-9 {
				t.Fatalf("meridional at %d: expected %g, got %g", k, perDegree, d.Meridional[k])
			}
			if math.Abs(d.Zonal[k]) > 1e-15 {
				t.Fatalf("zonal at %d: expected 0, got %g", k, d.Zonal[k])
			}
		}
	})

	t.Run("zonal", func(t *testing.T) {
		g := regional(t)
		data := field(g, func(_, lon float64) float64 { return lon })
		d, err := PartialDerivatives(g, data, mv, domain.Options{})
		require.NoError(t, err)

		expected := perDegree / math.Cos(5*math.Pi/180)
		for _, lon := range []float64{0, 5, 10} {
			k := offsetOf(t, g, 5, lon)
			assert.InDelta(t, expected, d.Zonal[k], expected*1e-9, "lon %g", lon)
			assert.InDelta(t, 0, d.Meridional[k], 1e-15, "lon %g", lon)
		}
	})

	t.Run("missing centre and sides", func(t *testing.T) {
		g := regional(t)
		data := field(g, func(lat, _ float64) float64 { return lat })
		centre := offsetOf(t, g, 5, 5)
		data[centre] = mv
		data[offsetOf(t, g, 10, 0)] = mv
		data[offsetOf(t, g, 8, 0)] = mv
		data[offsetOf(t, g, 10, 3)] = mv

		d, err := PartialDerivatives(g, data, mv, domain.Options{})
		require.NoError(t, err)
		assert.Equal(t, mv, d.Meridional[centre])
		assert.Equal(t, mv, d.Zonal[centre])

		// Both vertical neighbours missing.
		assert.Equal(t, mv, d.Meridional[offsetOf(t, g, 9, 0)])

		// Up is missing: the downward difference alone.
		assert.InDelta(t, perDegree, d.Meridional[offsetOf(t, g, 9, 3)], perDegree*1e-9)
	})
}

func TestPartialDerivatives_LinearPoleDerivative(t *testing.T) {
	g := regional(t)
	data := field(g, func(lat, _ float64) float64 { return lat * lat })
	top := offsetOf(t, g, 10, 5)
	perDegree := 180 / math.Pi / domain.EarthRadius

	d, err := PartialDerivatives(g, data, mv, domain.Options{})
	require.NoError(t, err)
	assert.InDelta(t, 19*perDegree, d.Meridional[top], perDegree*1e-9)

	d, err = PartialDerivatives(g, data, mv, domain.Options{LinearPoleDerivative: true})
	require.NoError(t, err)
	assert.InDelta(t, 20*perDegree, d.Meridional[top], perDegree*1e-9)
}

func TestKLM(t *testing.T) {
	g := regional(t)
	data := field(g, func(lat, lon float64) float64 { return lat + 2*lon })
	data[offsetOf(t, g, 0, 0)] = mv

	k, l, m, err := KLM(g, data, mv, domain.Options{})
	require.NoError(t, err)

	d, err := PartialDerivatives(g, data, mv, domain.Options{})
	require.NoError(t, err)

	i := offsetOf(t, g, 5, 5)
	zon, mer := d.Zonal[i], d.Meridional[i]
	assert.InDelta(t, (zon*zon+mer*mer)/2, k[i], 1e-24)
	assert.InDelta(t, (zon*zon-mer*mer)/2, l[i], 1e-24)
	assert.InDelta(t, zon*mer, m[i], 1e-24)

	missing := offsetOf(t, g, 0, 0)
	assert.Equal(t, []float64{mv, mv, mv}, []float64{k[missing], l[missing], m[missing]})
}

func TestCell(t *testing.T) {
	in := globalOneDegree(t)
	out, err := grid.NewRegular(domain.Area{North: 90, West: 0, South: -90, East: 355}, 5, 5, domain.Options{})
	require.NoError(t, err)
	data := field(in, func(float64, float64) float64 { return 7 })

	for _, kind := range []Kind{KindAverageWeighted, KindFluxConserving} {
		c, err := NewCell(kind, in, out, DefaultConfig())
		require.NoError(t, err)
		ctx := in.NewContext()
		for _, p := range out.Points() {
			v, err := c.Value(ctx, p, data)
			require.NoError(t, err)
			if math.Abs(v-7) > 1e-9 {
				t.Fatalf("%s at %s: expected 7, got %.12f", kind, p, v)
			}
		}
	}

	_, err = NewCell(KindBiLinear, in, out, DefaultConfig())
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = NewCell(KindAverageWeightedLSM, in, out, DefaultConfig())
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	list, err := grid.NewListOfPoints([]domain.Point{domain.NewPoint(0, 0)})
	require.NoError(t, err)
	_, err = NewCell(KindFluxConserving, in, list, DefaultConfig())
	assert.True(t, errors.Is(err, domain.ErrUnimplemented))
}
