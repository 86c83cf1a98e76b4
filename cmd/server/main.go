// Package main provides the regrid HTTP server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"go.ngs.io/regrid/internal/adapter/store"
	"go.ngs.io/regrid/internal/adapter/store/csv"
	"go.ngs.io/regrid/internal/adapter/store/field"
	"go.ngs.io/regrid/internal/adapter/store/lsm"
	"go.ngs.io/regrid/internal/config"
	httpHandler "go.ngs.io/regrid/internal/http"
	"go.ngs.io/regrid/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("regrid-server version %s\n", version)
		return
	}

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.SlogLevel())
	slog.SetDefault(logger)
	opts := cfg.Options()

	logger.Info("starting regrid server",
		"version", version,
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
		"workers", cfg.Workers,
		"default_method", cfg.Method().String(),
	)

	// Initialize stores.
	fieldStore := field.NewStore(cfg.DataDir, opts)
	pointStore := csv.NewPointStore(cfg.DataDir)

	// Initialize land-sea mask store (optional, for the LSM methods).
	var masks store.MaskProvider
	if path := cfg.LSMPath(); path != "" {
		maskStore := lsm.NewStore(path, cfg.LSMVariable, opts)
		defer func() { _ = maskStore.Close() }()
		masks = maskStore
		logger.Info("land-sea mask store initialized", "path", path, "variable", cfg.LSMVariable)
	} else {
		logger.Info("land-sea mask store disabled (LSM_DIR not set)")
	}

	// Initialize use cases.
	regridUC := usecase.NewRegridUseCase(opts, cfg.Workers, masks, logger)
	derivedUC := usecase.NewDerivedUseCase(opts, logger)

	// Setup router.
	handler := httpHandler.NewHandler(httpHandler.HandlerConfig{
		RegridUC:      regridUC,
		DerivedUC:     derivedUC,
		Fields:        fieldStore,
		Points:        pointStore,
		DefaultMethod: cfg.Method(),
		Options:       opts,
		Logger:        logger,
	})
	router := httpHandler.SetupRouter(handler, cfg.Origins())

	// Start server.
	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("server listening",
		"addr", addr,
		"health", fmt.Sprintf("http://localhost:%s/health", cfg.Port),
	)

	if err := router.Run(addr); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

// newLogger returns a JSON logger writing to stdout.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: false,
	})
	return slog.New(handler)
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Regrid Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  regrid-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES (also read from .env):")
	fmt.Println("  PORT                           Server port (default: 8080)")
	fmt.Println("  LOG_LEVEL                      debug, info, warn or error (default: info)")
	fmt.Println("  DATA_DIR                       NetCDF fields and <name>_points.csv lists (default: ./data)")
	fmt.Println("  LSM_DIR                        Directory of the land-sea mask file (optional)")
	fmt.Println("  LSM_FILE                       Land-sea mask file name (default: lsm.nc)")
	fmt.Println("  LSM_VARIABLE                   Land-sea mask variable (default: lsm)")
	fmt.Println("  CORS_ALLOWED_ORIGINS           Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  REGRID_WORKERS                 Goroutines per regrid pass (default: GOMAXPROCS)")
	fmt.Println("  REGRID_DEFAULT_METHOD          Interpolation method when a request names none (default: bilinear)")
	fmt.Println("  REGRID_LINEAR_POLE_DERIVATIVE  Extrapolate derivatives to the pole rows (default: false)")
	fmt.Println("  REGRID_CHECK_CONSERVATION      Log input and output weighted means (default: false)")
	fmt.Println("  REGRID_EMOS_PRECISION          Floor longitude increments to 5 decimals (default: false)")
	fmt.Println("  REGRID_TRACE                   Log every worker chunk at debug level (default: false)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health                   Health check")
	fmt.Println("  GET  /v1/methods               List interpolation methods")
	fmt.Println("  POST /v1/regrid                Regrid a field onto a grid")
	fmt.Println("  POST /v1/interpolate           Interpolate a field at points")
	fmt.Println("  POST /v1/derived               Derived subgrid orography parameters")
	fmt.Println()
}
