package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/regrid/internal/adapter/grid"
	"go.ngs.io/regrid/internal/adapter/interp"
	"go.ngs.io/regrid/internal/adapter/store"
	"go.ngs.io/regrid/internal/domain"
	"go.ngs.io/regrid/internal/usecase"
)

type fakeFields struct {
	fields map[string]*store.Field
}

func (f *fakeFields) Load(name, variable string) (*store.Field, error) {
	if fld, ok := f.fields[name+"/"+variable]; ok {
		return fld, nil
	}
	return nil, fmt.Errorf("field file %s.nc not found: %w", name, fs.ErrNotExist)
}

type fakePoints struct{}

func (fakePoints) Load(name string) ([]domain.Point, error) {
	if name != "cities" {
		return nil, fmt.Errorf("failed to load point list %s: %w", name, fs.ErrNotExist)
	}
	return []domain.Point{domain.NewPoint(35.5, 139.5), domain.NewPoint(51.5, -0.5)}, nil
}

func (fakePoints) List() ([]string, error) { return []string{"cities"}, nil }

// latitudeField is a 1 degree global field whose value is the latitude.
func latitudeField(t *testing.T) *store.Field {
	t.Helper()
	g, err := grid.NewRegular(domain.GlobalArea(), 1, 1, domain.Options{})
	require.NoError(t, err)
	values := make([]float64, g.NumberOfPoints())
	for _, p := range g.Points() {
		values[p.K] = p.Latitude
	}
	return &store.Field{Name: "lat", Grid: g, Values: values, MissingValue: domain.MissingValue}
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(HandlerConfig{
		RegridUC:      usecase.NewRegridUseCase(domain.Options{}, 2, nil, logger),
		DerivedUC:     usecase.NewDerivedUseCase(domain.Options{}, logger),
		Fields:        &fakeFields{fields: map[string]*store.Field{"era/lat": latitudeField(t)}},
		Points:        fakePoints{},
		DefaultMethod: interp.KindBiLinear,
		Logger:        logger,
	})
	return SetupRouter(h, nil)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return w, out
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t)
	w, body := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestRequestID_ReusesValidHeader(t *testing.T) {
	router := setupTestRouter(t)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", id)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get("X-Request-ID"))
}

func TestGetMethods(t *testing.T) {
	router := setupTestRouter(t)
	w, body := doJSON(t, router, http.MethodGet, "/v1/methods", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(len(interp.Kinds())), body["count"])
	methods := body["methods"].([]any)
	bilinear := methods[1].(map[string]any)
	assert.Equal(t, "bilinear", bilinear["name"])
	assert.Equal(t, true, bilinear["default"])
}

func TestRegrid(t *testing.T) {
	router := setupTestRouter(t)

	values := make([]float64, 7*12)
	for i := range values {
		values[i] = 5
	}
	w, body := doJSON(t, router, http.MethodPost, "/v1/regrid", map[string]any{
		"input":  map[string]any{"type": "regular", "increments": []float64{30, 30}},
		"values": values,
		"output": map[string]any{"type": "regular", "area": []float64{60, 0, -60, 360}, "increments": []float64{60, 60}},
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %v", body)
	assert.Equal(t, "bilinear", body["method"])
	assert.Equal(t, float64(18), body["points"])
	for i, v := range body["values"].([]any) {
		if math.Abs(v.(float64)-5) > 1e-9 {
			t.Fatalf("value %d: expected 5, got %v", i, v)
		}
	}
}

func TestRegrid_Errors(t *testing.T) {
	router := setupTestRouter(t)
	input := map[string]any{"type": "regular", "increments": []float64{30, 30}}
	values := make([]float64, 7*12)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{
			name:   "missing output",
			body:   map[string]any{"input": input, "values": values},
			status: http.StatusBadRequest,
		},
		{
			name: "unknown method",
			body: map[string]any{
				"input": input, "values": values, "method": "spline",
				"output": map[string]any{"type": "octahedral", "n": 2},
			},
			status: http.StatusBadRequest,
		},
		{
			name: "cell method onto points",
			body: map[string]any{
				"input": input, "values": values, "method": "flux_conserving",
				"output": map[string]any{"type": "points", "points": [][2]float64{{0, 0}}},
			},
			status: http.StatusNotImplemented,
		},
		{
			name: "unknown dataset",
			body: map[string]any{
				"dataset": "nope", "variable": "t",
				"output": map[string]any{"type": "octahedral", "n": 2},
			},
			status: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := doJSON(t, router, http.MethodPost, "/v1/regrid", tt.body)
			assert.Equal(t, tt.status, w.Code, "body: %v", body)
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, w.Header().Get("X-Request-ID"), body["request_id"])
		})
	}
}

func TestInterpolate(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("explicit points from a dataset", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/v1/interpolate", map[string]any{
			"dataset":  "era",
			"variable": "lat",
			"points":   [][2]float64{{10.25, 20.5}, {-33.75, 151.25}},
		})
		require.Equal(t, http.StatusOK, w.Code, "body: %v", body)
		pts := body["points"].([]any)
		require.Len(t, pts, 2)
		assert.InDelta(t, 10.25, pts[0].(map[string]any)["value"].(float64), 1e-9)
		assert.InDelta(t, -33.75, pts[1].(map[string]any)["value"].(float64), 1e-9)
	})

	t.Run("stored point list", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/v1/interpolate", map[string]any{
			"dataset":    "era",
			"variable":   "lat",
			"method":     "nearest_neighbour",
			"point_list": "cities",
		})
		require.Equal(t, http.StatusOK, w.Code, "body: %v", body)
		assert.Equal(t, float64(2), body["count"])
	})

	t.Run("no points", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost, "/v1/interpolate", map[string]any{
			"dataset": "era", "variable": "lat",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown point list", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost, "/v1/interpolate", map[string]any{
			"dataset": "era", "variable": "lat", "point_list": "towns",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDerived(t *testing.T) {
	router := setupTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/v1/derived", map[string]any{
		"k":          []float64{2},
		"l":          []float64{1},
		"m":          []float64{0},
		"parameters": []string{"slope", "orientation"},
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %v", body)
	params := body["parameters"].(map[string]any)
	assert.InDelta(t, math.Sqrt(3), params["slope"].([]any)[0].(float64), 1e-12)
	assert.InDelta(t, 0.0, params["orientation"].([]any)[0].(float64), 1e-12)

	w, _ = doJSON(t, router, http.MethodPost, "/v1/derived", map[string]any{
		"k": []float64{2}, "l": []float64{1}, "m": []float64{0},
		"parameters": []string{"roughness"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.InvalidArgument("op", "bad"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", domain.OutOfRange("op", "far")), http.StatusUnprocessableEntity},
		{domain.Unimplemented("op"), http.StatusNotImplemented},
		{fmt.Errorf("missing: %w", fs.ErrNotExist), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusOf(tt.err), "%v", tt.err)
	}
}
