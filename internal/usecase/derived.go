package usecase

import (
	"fmt"
	"log/slog"

	"go.ngs.io/regrid/internal/adapter/grid"
	"go.ngs.io/regrid/internal/adapter/interp"
	"go.ngs.io/regrid/internal/domain"
)

// DerivedRequest asks for subgrid orography parameters. Either the K, L and
// M terms are given directly, or they are computed from an orography field
// on Grid.
type DerivedRequest struct {
	K, L, M []float64

	Grid grid.Grid
	Data []float64

	MissingValue float64
	Parameters   []interp.Parameter
}

// DerivedResponse maps each requested parameter name to its field
type DerivedResponse struct {
	Parameters map[string][]float64 `json:"parameters"`
	Points     int                  `json:"points"`
}

// DerivedUseCase computes derived subgrid parameters
type DerivedUseCase struct {
	opts   domain.Options
	logger *slog.Logger
}

// NewDerivedUseCase creates a new derived parameter use case
func NewDerivedUseCase(opts domain.Options, logger *slog.Logger) *DerivedUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &DerivedUseCase{opts: opts, logger: logger}
}

// Validate checks if the request is valid
func (r *DerivedRequest) Validate() error {
	const op = "usecase.Derived"
	hasKLM := r.K != nil || r.L != nil || r.M != nil
	hasField := r.Grid != nil || r.Data != nil

	if !hasKLM && !hasField {
		return domain.InvalidArgument(op, "either k/l/m or an orography field must be provided")
	}
	if hasKLM && hasField {
		return domain.InvalidArgument(op, "k/l/m and an orography field are mutually exclusive")
	}
	if hasField {
		if r.Grid == nil {
			return domain.InvalidArgument(op, "orography field needs a grid")
		}
		if len(r.Data) != r.Grid.NumberOfPoints() {
			return domain.InvalidArgument(op, "data has %d values, grid has %d points", len(r.Data), r.Grid.NumberOfPoints())
		}
	}
	if len(r.Parameters) == 0 {
		return domain.InvalidArgument(op, "at least one parameter must be requested")
	}
	return nil
}

// Execute computes the requested parameters
func (uc *DerivedUseCase) Execute(req DerivedRequest) (*DerivedResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	k, l, m := req.K, req.L, req.M
	if req.Grid != nil {
		var err error
		if k, l, m, err = interp.KLM(req.Grid, req.Data, req.MissingValue, uc.opts); err != nil {
			return nil, fmt.Errorf("failed to compute gradient terms: %w", err)
		}
	}

	resp := &DerivedResponse{
		Parameters: make(map[string][]float64, len(req.Parameters)),
		Points:     len(k),
	}
	for _, p := range req.Parameters {
		values, err := interp.DeriveField(p, k, l, m, req.MissingValue)
		if err != nil {
			return nil, fmt.Errorf("failed to derive %s: %w", p, err)
		}
		resp.Parameters[p.String()] = values
	}

	uc.logger.Info("derived parameters computed",
		"parameters", len(req.Parameters),
		"points", resp.Points,
		"from_field", req.Grid != nil,
	)
	return resp, nil
}
