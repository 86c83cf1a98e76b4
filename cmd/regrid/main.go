// Package main provides the regrid command line tool: it reads a field from
// NetCDF, regrids it onto a grid described in HJSON or onto a CSV list of
// points, and writes the result back to NetCDF.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/profile"

	"go.ngs.io/regrid/internal/adapter/grid"
	"go.ngs.io/regrid/internal/adapter/interp"
	"go.ngs.io/regrid/internal/adapter/store"
	"go.ngs.io/regrid/internal/adapter/store/csv"
	"go.ngs.io/regrid/internal/adapter/store/field"
	"go.ngs.io/regrid/internal/adapter/store/gridspec"
	"go.ngs.io/regrid/internal/adapter/store/lsm"
	"go.ngs.io/regrid/internal/domain"
	"go.ngs.io/regrid/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Command line flags
	inPath := flag.String("in", "", "Input NetCDF file")
	variable := flag.String("var", "", "Variable to read from the input file")
	outPath := flag.String("out", "", "Output NetCDF file (points are printed as CSV when empty)")
	gridPath := flag.String("grid", "", "HJSON description of the output grid")
	pointsPath := flag.String("points", "", "CSV file of output points (lat,lon)")
	method := flag.String("method", "bilinear", "Interpolation method")
	workers := flag.Int("workers", 0, "Goroutines per pass (0 = GOMAXPROCS)")
	lsmPath := flag.String("lsm", "", "NetCDF land-sea mask for the LSM methods")
	lsmVar := flag.String("lsm-var", "lsm", "Land-sea mask variable")
	derived := flag.String("derived", "", "Comma-separated derived parameters (anisotropy,orientation,slope) computed from the input instead of regridding")
	stddev := flag.Bool("stddev", false, "Regrid the standard deviation instead of the mean")
	direction := flag.Bool("direction", false, "Treat values as directions in degrees")
	linearOnPole := flag.Bool("linear-on-pole", false, "Extrapolate linearly onto the poles")
	averageOnPole := flag.Bool("average-on-pole", false, "Use the input pole row averages on the poles")
	linearPoleDerivative := flag.Bool("linear-pole-derivative", false, "Extrapolate derivatives on the pole rows")
	checkConservation := flag.Bool("check-conservation", false, "Log input and output weighted means")
	emosPrecision := flag.Bool("emos-precision", false, "Floor longitude increments to 5 decimals")
	trace := flag.Bool("trace", false, "Log every worker chunk")
	prof := flag.String("profile", "", "Write a cpu or mem profile to the working directory")
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		fmt.Printf("regrid version %s\n", version)
		return
	}

	switch *prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		log.Fatalf("Unknown profile: %s (use cpu or mem)", *prof)
	}

	if *inPath == "" || *variable == "" {
		log.Fatalf("-in and -var are required (see -help)")
	}

	opts := domain.Options{
		LinearPoleDerivative: *linearPoleDerivative,
		CheckConservation:    *checkConservation,
		EmosPrecisionCompat:  *emosPrecision,
		Trace:                *trace,
	}
	level := slog.LevelInfo
	if *trace {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Read the input field
	in, err := field.Load(*inPath, *variable, field.DefaultConfig(), opts)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	log.Printf("Loaded %s: %s", *variable, in.Grid)

	if *derived != "" {
		if err := runDerived(in, *derived, *outPath, opts, logger); err != nil {
			log.Fatalf("Failed to derive parameters: %v", err)
		}
		return
	}

	kind, err := interp.ParseKind(*method)
	if err != nil {
		log.Fatalf("%v", err)
	}
	out, pts, err := outputGrid(*gridPath, *pointsPath, opts)
	if err != nil {
		log.Fatalf("Failed to read output grid: %v", err)
	}

	var masks store.MaskProvider
	if *lsmPath != "" {
		masks = lsm.NewStore(*lsmPath, *lsmVar, opts)
	}

	uc := usecase.NewRegridUseCase(opts, *workers, masks, logger)
	resp, err := uc.Execute(ctx, usecase.RegridRequest{
		Input:             in.Grid,
		Data:              in.Values,
		MissingValue:      in.MissingValue,
		Output:            out,
		Method:            kind,
		Direction:         *direction,
		LinearOnPole:      *linearOnPole,
		AverageOnPole:     *averageOnPole,
		StandardDeviation: *stddev,
	})
	if err != nil {
		log.Fatalf("Failed to regrid: %v", err)
	}
	log.Printf("Regridded %d points with %s in %s (%d missing)", resp.Points, resp.Method, resp.Elapsed, resp.Missing)

	if *outPath == "" && pts != nil {
		printPoints(pts, resp.Values)
		return
	}
	if *outPath == "" {
		log.Fatalf("-out is required for grid output")
	}
	result := &field.Field{Name: *variable, Grid: out, Values: resp.Values, MissingValue: in.MissingValue}
	if err := field.Save(*outPath, result); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	log.Printf("Wrote %s", *outPath)
}

// outputGrid builds the target from exactly one of -grid and -points.
func outputGrid(gridPath, pointsPath string, opts domain.Options) (grid.Grid, []domain.Point, error) {
	switch {
	case gridPath != "" && pointsPath != "":
		return nil, nil, fmt.Errorf("-grid and -points are mutually exclusive")
	case gridPath != "":
		g, err := gridspec.Load(gridPath, opts)
		return g, nil, err
	case pointsPath != "":
		pts, err := csv.ReadPoints(pointsPath)
		if err != nil {
			return nil, nil, err
		}
		g, err := grid.NewListOfPoints(pts)
		return g, pts, err
	}
	return nil, nil, fmt.Errorf("either -grid or -points is required")
}

func runDerived(in *field.Field, names, outPath string, opts domain.Options, logger *slog.Logger) error {
	if outPath == "" {
		return fmt.Errorf("-out is required with -derived")
	}
	req := usecase.DerivedRequest{Grid: in.Grid, Data: in.Values, MissingValue: in.MissingValue}
	for _, name := range strings.Split(names, ",") {
		p, err := interp.ParseParameter(name)
		if err != nil {
			return err
		}
		req.Parameters = append(req.Parameters, p)
	}

	resp, err := usecase.NewDerivedUseCase(opts, logger).Execute(req)
	if err != nil {
		return err
	}

	// One file per parameter: out.nc becomes out_<parameter>.nc.
	ext := filepath.Ext(outPath)
	base := strings.TrimSuffix(outPath, ext)
	for name, values := range resp.Parameters {
		path := fmt.Sprintf("%s_%s%s", base, name, ext)
		f := &field.Field{Name: name, Grid: in.Grid, Values: values, MissingValue: in.MissingValue}
		if err := field.Save(path, f); err != nil {
			return err
		}
		log.Printf("Wrote %s", path)
	}
	return nil
}

func printPoints(pts []domain.Point, values []float64) {
	fmt.Println("lat,lon,value")
	for i, p := range pts {
		fmt.Printf("%.6f,%.6f,%g\n", p.Latitude, p.Longitude, values[i])
	}
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("regrid v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  regrid -in FILE -var NAME (-grid FILE | -points FILE) [-out FILE] [flags]")
	fmt.Println("  regrid -in FILE -var NAME -derived anisotropy,slope -out FILE")
	fmt.Println()
	fmt.Println("FLAGS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("METHODS:")
	for _, k := range interp.Kinds() {
		fmt.Printf("  %s\n", k)
	}
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Regrid 2m temperature onto an O96 octahedral grid")
	fmt.Println("  echo 'type: octahedral' > o96.hjson; echo 'n: 96' >> o96.hjson")
	fmt.Println("  regrid -in era5.nc -var t2m -grid o96.hjson -out t2m_o96.nc")
	fmt.Println()
	fmt.Println("  # Interpolate at stations, printing CSV")
	fmt.Println("  regrid -in era5.nc -var t2m -points stations.csv -method cubic12pts")
	fmt.Println()
}
