package http

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/regrid/internal/adapter/interp"
	"go.ngs.io/regrid/internal/adapter/store"
	"go.ngs.io/regrid/internal/adapter/store/gridspec"
	"go.ngs.io/regrid/internal/domain"
	"go.ngs.io/regrid/internal/usecase"
)

// Handler handles HTTP requests for regridding.
type Handler struct {
	regridUC      *usecase.RegridUseCase
	derivedUC     *usecase.DerivedUseCase
	fields        store.FieldLoader // Optional.
	points        store.PointLoader // Optional.
	defaultMethod interp.Kind
	opts          domain.Options
	logger        *slog.Logger
}

// HandlerConfig wires the handler dependencies.
type HandlerConfig struct {
	RegridUC      *usecase.RegridUseCase
	DerivedUC     *usecase.DerivedUseCase
	Fields        store.FieldLoader
	Points        store.PointLoader
	DefaultMethod interp.Kind
	Options       domain.Options
	Logger        *slog.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.DefaultMethod == 0 {
		cfg.DefaultMethod = interp.KindBiLinear
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{
		regridUC:      cfg.RegridUC,
		derivedUC:     cfg.DerivedUC,
		fields:        cfg.Fields,
		points:        cfg.Points,
		defaultMethod: cfg.DefaultMethod,
		opts:          cfg.Options,
		logger:        cfg.Logger,
	}
}

// FieldRequest is the input field of a regrid or interpolate request: either
// a grid description with values, or a dataset name and variable resolved
// by the field store.
type FieldRequest struct {
	Input        *gridspec.Spec `json:"input,omitempty"`
	Values       []float64      `json:"values,omitempty"`
	MissingValue *float64       `json:"missing_value,omitempty"`

	Dataset  string `json:"dataset,omitempty"`
	Variable string `json:"variable,omitempty"`
}

// MethodRequest carries the interpolation settings.
type MethodRequest struct {
	Method            string    `json:"method,omitempty"`
	LSMIn             []float64 `json:"lsm_in,omitempty"`
	LSMOut            []float64 `json:"lsm_out,omitempty"`
	Direction         bool      `json:"direction,omitempty"`
	LinearOnPole      bool      `json:"linear_on_pole,omitempty"`
	AverageOnPole     bool      `json:"average_on_pole,omitempty"`
	StandardDeviation bool      `json:"standard_deviation,omitempty"`
}

// RegridBody is the body of POST /v1/regrid.
type RegridBody struct {
	FieldRequest
	MethodRequest
	Output *gridspec.Spec `json:"output"`
}

// InterpolateBody is the body of POST /v1/interpolate. Points are
// [lat, lon] pairs; PointList names a stored list instead.
type InterpolateBody struct {
	FieldRequest
	MethodRequest
	Points    [][2]float64 `json:"points,omitempty"`
	PointList string       `json:"point_list,omitempty"`
}

// DerivedBody is the body of POST /v1/derived.
type DerivedBody struct {
	K            []float64      `json:"k,omitempty"`
	L            []float64      `json:"l,omitempty"`
	M            []float64      `json:"m,omitempty"`
	Grid         *gridspec.Spec `json:"grid,omitempty"`
	Values       []float64      `json:"values,omitempty"`
	MissingValue *float64       `json:"missing_value,omitempty"`
	Parameters   []string       `json:"parameters"`
}

// PointValue is one interpolated point.
type PointValue struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Value float64 `json:"value"`
}

// Regrid handles POST /v1/regrid.
func (h *Handler) Regrid(c *gin.Context) {
	var body RegridBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if body.Output == nil {
		h.badRequest(c, "output grid is required")
		return
	}

	req, err := h.buildRequest(body.FieldRequest, body.MethodRequest)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if req.Output, err = gridspec.Build(*body.Output, h.opts); err != nil {
		h.writeError(c, fmt.Errorf("invalid output grid: %w", err))
		return
	}

	response, err := h.regridUC.Execute(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"method":      response.Method,
		"points":      response.Points,
		"missing":     response.Missing,
		"values":      response.Values,
		"grid":        gridspec.Describe(req.Output),
		"input_mean":  response.InputMean,
		"output_mean": response.OutputMean,
		"elapsed_ms":  response.Elapsed.Milliseconds(),
	})
}

// Interpolate handles POST /v1/interpolate.
func (h *Handler) Interpolate(c *gin.Context) {
	var body InterpolateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	var pts []domain.Point
	switch {
	case len(body.Points) > 0 && body.PointList != "":
		h.badRequest(c, "points and point_list are mutually exclusive")
		return
	case len(body.Points) > 0:
		pts = make([]domain.Point, len(body.Points))
		for i, ll := range body.Points {
			pts[i] = domain.NewPoint(ll[0], ll[1])
		}
	case body.PointList != "":
		if h.points == nil {
			h.badRequest(c, "point lists are not configured")
			return
		}
		var err error
		if pts, err = h.points.Load(body.PointList); err != nil {
			h.writeError(c, err)
			return
		}
	default:
		h.badRequest(c, "either points or point_list must be provided")
		return
	}

	req, err := h.buildRequest(body.FieldRequest, body.MethodRequest)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response, err := h.regridUC.Interpolate(c.Request.Context(), req, pts)
	if err != nil {
		h.writeError(c, err)
		return
	}

	values := make([]PointValue, len(pts))
	for i, p := range pts {
		values[i] = PointValue{Lat: p.Latitude, Lon: p.Longitude, Value: response.Values[i]}
	}
	c.JSON(http.StatusOK, gin.H{
		"method":  response.Method,
		"count":   len(values),
		"missing": response.Missing,
		"points":  values,
	})
}

// Derived handles POST /v1/derived.
func (h *Handler) Derived(c *gin.Context) {
	var body DerivedBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	req := usecase.DerivedRequest{
		K:            body.K,
		L:            body.L,
		M:            body.M,
		Data:         body.Values,
		MissingValue: missingValue(body.MissingValue),
	}
	for _, name := range body.Parameters {
		p, err := interp.ParseParameter(name)
		if err != nil {
			h.writeError(c, err)
			return
		}
		req.Parameters = append(req.Parameters, p)
	}
	if body.Grid != nil {
		g, err := gridspec.Build(*body.Grid, h.opts)
		if err != nil {
			h.writeError(c, fmt.Errorf("invalid grid: %w", err))
			return
		}
		req.Grid = g
	}

	response, err := h.derivedUC.Execute(req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// MethodInfo describes one interpolation method.
type MethodInfo struct {
	Name     string `json:"name"`
	Cell     bool   `json:"cell"`
	NeedsLSM bool   `json:"needs_lsm"`
	Default  bool   `json:"default,omitempty"`
}

// GetMethods handles GET /v1/methods.
func (h *Handler) GetMethods(c *gin.Context) {
	kinds := interp.Kinds()
	methods := make([]MethodInfo, len(kinds))
	for i, k := range kinds {
		methods[i] = MethodInfo{
			Name:     k.String(),
			Cell:     k.IsCell(),
			NeedsLSM: k.NeedsLSM(),
			Default:  k == h.defaultMethod,
		}
	}

	parameters := []string{interp.Anisotropy.String(), interp.Orientation.String(), interp.Slope.String()}
	c.JSON(http.StatusOK, gin.H{
		"methods":            methods,
		"count":              len(methods),
		"derived_parameters": parameters,
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// buildRequest resolves the input field and method of a request.
func (h *Handler) buildRequest(f FieldRequest, m MethodRequest) (usecase.RegridRequest, error) {
	req := usecase.RegridRequest{
		LSMIn:             m.LSMIn,
		LSMOut:            m.LSMOut,
		Direction:         m.Direction,
		LinearOnPole:      m.LinearOnPole,
		AverageOnPole:     m.AverageOnPole,
		StandardDeviation: m.StandardDeviation,
		Method:            h.defaultMethod,
	}
	if m.Method != "" {
		kind, err := interp.ParseKind(m.Method)
		if err != nil {
			return req, err
		}
		req.Method = kind
	}

	switch {
	case f.Dataset != "" && f.Input != nil:
		return req, domain.InvalidArgument("http.Request", "input and dataset are mutually exclusive")
	case f.Dataset != "":
		if h.fields == nil {
			return req, domain.InvalidArgument("http.Request", "datasets are not configured")
		}
		if f.Variable == "" {
			return req, domain.InvalidArgument("http.Request", "dataset %s needs a variable", f.Dataset)
		}
		fld, err := h.fields.Load(f.Dataset, f.Variable)
		if err != nil {
			return req, err
		}
		req.Input, req.Data, req.MissingValue = fld.Grid, fld.Values, fld.MissingValue
	case f.Input != nil:
		g, err := gridspec.Build(*f.Input, h.opts)
		if err != nil {
			return req, fmt.Errorf("invalid input grid: %w", err)
		}
		req.Input, req.Data, req.MissingValue = g, f.Values, missingValue(f.MissingValue)
	default:
		return req, domain.InvalidArgument("http.Request", "either input or dataset must be provided")
	}
	return req, nil
}

func missingValue(mv *float64) float64 {
	if mv == nil {
		return domain.MissingValue
	}
	return *mv
}

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindOutOfRange:
		return http.StatusUnprocessableEntity
	case domain.KindUnimplemented:
		return http.StatusNotImplemented
	}
	if errors.Is(err, fs.ErrNotExist) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		h.logger.Error("request failed",
			"request_id", c.GetString(requestIDKey),
			"path", c.FullPath(),
			"error", err,
		)
	}
	c.JSON(status, gin.H{"error": err.Error(), "request_id": c.GetString(requestIDKey)})
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "request_id": c.GetString(requestIDKey)})
}
