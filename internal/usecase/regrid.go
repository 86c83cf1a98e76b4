package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"go.ngs.io/regrid/internal/adapter/grid"
	"go.ngs.io/regrid/internal/adapter/interp"
	"go.ngs.io/regrid/internal/adapter/store"
	"go.ngs.io/regrid/internal/domain"
)

// RegridRequest encapsulates one regridding pass
type RegridRequest struct {
	// Input field
	Input        grid.Grid
	Data         []float64
	MissingValue float64

	// Target grid
	Output grid.Grid

	// Interpolation method and its settings
	Method        interp.Kind
	LSMIn         []float64 // Optional, loaded from the mask provider when nil
	LSMOut        []float64
	Direction     bool
	LinearOnPole  bool
	AverageOnPole bool

	// StandardDeviation regrids the field and its square, and returns
	// sqrt(mean(x²) - mean(x)²) instead of the mean.
	StandardDeviation bool
}

// RegridResponse contains the regridded field
type RegridResponse struct {
	Method     string        `json:"method"`
	Values     []float64     `json:"values"`
	Points     int           `json:"points"`
	Missing    int           `json:"missing"`
	InputMean  *float64      `json:"input_mean,omitempty"`
	OutputMean *float64      `json:"output_mean,omitempty"`
	Elapsed    time.Duration `json:"-"`
}

// RegridUseCase orchestrates regridding passes
type RegridUseCase struct {
	opts    domain.Options
	workers int
	masks   store.MaskProvider
	logger  *slog.Logger
}

// NewRegridUseCase creates a new regrid use case. masks may be nil, in which
// case the LSM methods need the masks in the request.
func NewRegridUseCase(opts domain.Options, workers int, masks store.MaskProvider, logger *slog.Logger) *RegridUseCase {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RegridUseCase{
		opts:    opts,
		workers: workers,
		masks:   masks,
		logger:  logger,
	}
}

// Validate checks if the request is valid
func (r *RegridRequest) Validate() error {
	const op = "usecase.Regrid"
	if r.Input == nil || r.Output == nil {
		return domain.InvalidArgument(op, "input and output grids must be provided")
	}
	if len(r.Data) != r.Input.NumberOfPoints() {
		return domain.InvalidArgument(op, "data has %d values, input grid has %d points", len(r.Data), r.Input.NumberOfPoints())
	}
	if r.Method < interp.KindLinear || r.Method > interp.KindFluxConserving {
		return domain.InvalidArgument(op, "unknown interpolation method %s", r.Method)
	}
	if r.LSMIn != nil && len(r.LSMIn) != r.Input.NumberOfPoints() {
		return domain.InvalidArgument(op, "input land-sea mask has %d values, grid has %d points", len(r.LSMIn), r.Input.NumberOfPoints())
	}
	if r.LSMOut != nil && len(r.LSMOut) != r.Output.NumberOfPoints() {
		return domain.InvalidArgument(op, "output land-sea mask has %d values, grid has %d points", len(r.LSMOut), r.Output.NumberOfPoints())
	}
	if r.LinearOnPole && r.AverageOnPole {
		return domain.InvalidArgument(op, "linear_on_pole and average_on_pole are mutually exclusive")
	}
	return nil
}

// evaluator computes the output value at one localised target point.
type evaluator func(gctx *grid.Context, where domain.Point, data []float64) (float64, error)

type poleAverager interface {
	PoleAverages(data []float64, mv float64) (north, south float64, err error)
}

// Execute performs the regridding pass
func (uc *RegridUseCase) Execute(ctx context.Context, req RegridRequest) (*RegridResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	start := time.Now()

	if err := uc.loadMasks(&req); err != nil {
		return nil, err
	}

	uc.logger.Info("regrid started",
		"method", req.Method.String(),
		"input", req.Input.Kind().String(),
		"output", req.Output.Kind().String(),
		"input_points", req.Input.NumberOfPoints(),
		"output_points", req.Output.NumberOfPoints(),
		"workers", uc.workers,
	)

	values, err := uc.regrid(ctx, req, req.Data)
	if err != nil {
		return nil, err
	}

	if req.StandardDeviation {
		squares := make([]float64, len(req.Data))
		for i, v := range req.Data {
			if v == req.MissingValue {
				squares[i] = v
				continue
			}
			squares[i] = v * v
		}
		meanSquares, err := uc.regrid(ctx, req, squares)
		if err != nil {
			return nil, err
		}
		for i := range values {
			values[i] = interp.StandardDeviation(meanSquares[i], values[i], req.MissingValue)
		}
	}

	resp := &RegridResponse{
		Method: req.Method.String(),
		Values: values,
		Points: len(values),
	}
	for _, v := range values {
		if v == req.MissingValue {
			resp.Missing++
		}
	}

	if uc.opts.CheckConservation {
		resp.InputMean, resp.OutputMean = uc.conservation(req, values)
	}

	resp.Elapsed = time.Since(start)
	uc.logger.Info("regrid finished",
		"method", resp.Method,
		"points", resp.Points,
		"missing", resp.Missing,
		"elapsed", resp.Elapsed,
	)
	return resp, nil
}

// Interpolate regrids the input field onto a list of points.
func (uc *RegridUseCase) Interpolate(ctx context.Context, req RegridRequest, pts []domain.Point) (*RegridResponse, error) {
	out, err := grid.NewListOfPoints(pts)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	req.Output = out
	return uc.Execute(ctx, req)
}

func (uc *RegridUseCase) loadMasks(req *RegridRequest) error {
	if !req.Method.NeedsLSM() || (req.LSMIn != nil && req.LSMOut != nil) {
		return nil
	}
	if uc.masks == nil {
		return fmt.Errorf("invalid request: %w", domain.InvalidArgument("usecase.Regrid", "%s needs land-sea masks", req.Method))
	}
	var err error
	if req.LSMIn == nil {
		if req.LSMIn, err = uc.masks.MaskFor(req.Input); err != nil {
			return fmt.Errorf("failed to load input land-sea mask: %w", err)
		}
	}
	if req.LSMOut == nil {
		if req.LSMOut, err = uc.masks.MaskFor(req.Output); err != nil {
			return fmt.Errorf("failed to load output land-sea mask: %w", err)
		}
	}
	return nil
}

// regrid runs one pass of data from req.Input to req.Output.
func (uc *RegridUseCase) regrid(ctx context.Context, req RegridRequest, data []float64) ([]float64, error) {
	cfg := interp.Config{
		MissingValue:  req.MissingValue,
		LinearOnPole:  req.LinearOnPole,
		AverageOnPole: req.AverageOnPole,
		Direction:     req.Direction,
		LSMIn:         req.LSMIn,
		LSMOut:        req.LSMOut,
	}
	if req.AverageOnPole {
		pa, ok := req.Input.(poleAverager)
		if !ok {
			return nil, fmt.Errorf("invalid request: %w", domain.Unimplemented(fmt.Sprintf("pole averages on %s grids", req.Input.Kind())))
		}
		var err error
		if cfg.NorthPoleAverage, cfg.SouthPoleAverage, err = pa.PoleAverages(data, req.MissingValue); err != nil {
			return nil, fmt.Errorf("failed to compute pole averages: %w", err)
		}
	}

	eval, err := uc.evaluator(req, cfg)
	if err != nil {
		return nil, err
	}

	targets := req.Output.Points()
	out := make([]float64, len(targets))
	if len(targets) == 0 {
		return out, nil
	}
	chunk := (len(targets) + uc.workers - 1) / uc.workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for from := 0; from < len(targets); from += chunk {
		to := min(from+chunk, len(targets))
		g.Go(func() error {
			return uc.runChunk(gctx, req, eval, targets[from:to], data, out)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to regrid with %s: %w", req.Method, err)
	}
	return out, nil
}

func (uc *RegridUseCase) evaluator(req RegridRequest, cfg interp.Config) (evaluator, error) {
	if req.Method.IsCell() {
		cell, err := interp.NewCell(req.Method, req.Input, req.Output, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare %s: %w", req.Method, err)
		}
		return cell.Value, nil
	}
	kernel, err := interp.New(req.Method, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s: %w", req.Method, err)
	}
	return func(gctx *grid.Context, where domain.Point, data []float64) (float64, error) {
		nbrs, err := req.Input.NearestPoints(gctx, where, data, kernel.Neighbours())
		if err != nil {
			return 0, err
		}
		return kernel.Value(where, nbrs)
	}, nil
}

// runChunk evaluates a contiguous run of output points with its own search
// context.
func (uc *RegridUseCase) runChunk(ctx context.Context, req RegridRequest, eval evaluator, targets []domain.Point, data, out []float64) error {
	start := time.Now()
	gctx := req.Input.NewContext()
	for n, p := range targets {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if p.K < 0 || p.K >= int64(len(out)) {
			return domain.OutOfRange("usecase.Regrid", "output point %d outside %d values", p.K, len(out))
		}
		v, err := eval(gctx, req.Input.Localise(p), data)
		if err != nil {
			return fmt.Errorf("at %s: %w", p, err)
		}
		out[p.K] = v
	}
	if uc.opts.Trace && len(targets) > 0 {
		uc.logger.Debug("chunk done",
			"first", targets[0].K,
			"points", len(targets),
			"elapsed", time.Since(start),
		)
	}
	return nil
}

// conservation returns the weighted means of the input and output fields,
// or nil when a grid has no quadrature weights.
func (uc *RegridUseCase) conservation(req RegridRequest, values []float64) (*float64, *float64) {
	mean := func(g grid.Grid, data []float64) (*float64, error) {
		w, err := g.QuadratureWeights()
		if err != nil {
			return nil, err
		}
		m, err := interp.CheckConservation(data, w, req.MissingValue)
		if err != nil {
			return nil, err
		}
		return &m, nil
	}
	in, err := mean(req.Input, req.Data)
	if err != nil {
		uc.logger.Warn("conservation check skipped", "grid", "input", "error", err)
		return nil, nil
	}
	out, err := mean(req.Output, values)
	if err != nil {
		uc.logger.Warn("conservation check skipped", "grid", "output", "error", err)
		return nil, nil
	}
	uc.logger.Info("conservation check",
		"input_mean", *in,
		"output_mean", *out,
		"difference", *out-*in,
	)
	return in, out
}
