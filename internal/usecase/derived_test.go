package usecase

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/regrid/internal/adapter/interp"
	"go.ngs.io/regrid/internal/domain"
)

// TestDerived_FromKLM tests the direct K/L/M path, including a missing point.
func TestDerived_FromKLM(t *testing.T) {
	mv := domain.MissingValue
	uc := NewDerivedUseCase(domain.Options{}, discardLogger())
	resp, err := uc.Execute(DerivedRequest{
		K:            []float64{2, 0, mv},
		L:            []float64{1, 0, 1},
		M:            []float64{0, 0, 1},
		MissingValue: mv,
		Parameters:   []interp.Parameter{interp.Anisotropy, interp.Slope},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Points)

	aniso := resp.Parameters["anisotropy"]
	require.Len(t, aniso, 3)
	if math.Abs(aniso[0]-math.Sqrt(1.0/3.0)) > 1e-12 {
		t.Errorf("anisotropy: expected %.12f, got %.12f", math.Sqrt(1.0/3.0), aniso[0])
	}
	assert.Equal(t, 1.0, aniso[1])
	assert.Equal(t, mv, aniso[2])
	assert.InDelta(t, math.Sqrt(3), resp.Parameters["slope"][0], 1e-12)
}

// TestDerived_FromField tests that a field sloping north to south has a
// meridional-only gradient, giving zero anisotropy.
func TestDerived_FromField(t *testing.T) {
	g := oneDegree(t)
	data := make([]float64, g.NumberOfPoints())
	for _, p := range g.Points() {
		data[p.K] = 1000 * p.Latitude
	}
	uc := NewDerivedUseCase(domain.Options{}, discardLogger())
	resp, err := uc.Execute(DerivedRequest{
		Grid:         g,
		Data:         data,
		MissingValue: domain.MissingValue,
		Parameters:   []interp.Parameter{interp.Anisotropy},
	})
	require.NoError(t, err)

	k, err := g.Index(10, 45)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, resp.Parameters["anisotropy"][k], 1e-9)
}

func TestDerivedRequest_Validate(t *testing.T) {
	g := oneDegree(t)
	tests := []struct {
		name string
		req  DerivedRequest
	}{
		{"nothing", DerivedRequest{Parameters: []interp.Parameter{interp.Slope}}},
		{"both", DerivedRequest{K: []float64{1}, Grid: g, Parameters: []interp.Parameter{interp.Slope}}},
		{"short data", DerivedRequest{Grid: g, Data: []float64{1}, Parameters: []interp.Parameter{interp.Slope}}},
		{"no parameters", DerivedRequest{K: []float64{1}, L: []float64{1}, M: []float64{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDerivedUseCase(domain.Options{}, discardLogger()).Execute(tt.req)
			assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
		})
	}

	_, err := NewDerivedUseCase(domain.Options{}, discardLogger()).Execute(DerivedRequest{
		K: []float64{1, 2}, L: []float64{1}, M: []float64{1, 2},
		Parameters: []interp.Parameter{interp.Slope},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}
