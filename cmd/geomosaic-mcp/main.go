package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Murmeldyret/DUNK/internal/artifact"
	"github.com/Murmeldyret/DUNK/internal/config"
	"github.com/Murmeldyret/DUNK/internal/geostore"
	"github.com/Murmeldyret/DUNK/internal/logger"
	"github.com/Murmeldyret/DUNK/internal/metrics"
	"github.com/Murmeldyret/DUNK/internal/raster"
	"github.com/Murmeldyret/DUNK/internal/raster/gdal"
	"github.com/Murmeldyret/DUNK/internal/raster/memory"
	"github.com/Murmeldyret/DUNK/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("geomosaic-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  GDAL:       %v\n", gdal.Available)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	lg := logger.NewStdErrLogger(cfg.LogLevel, nil)
	lg.Debugf("GeoMosaic MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, lg *logger.StdErrLogger) error {
	backend, err := newBackend(cfg.RasterBackend)
	if err != nil {
		return err
	}

	store, err := geostore.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	lg.Infof("geo store: %s", store.Driver())

	artifacts, err := artifact.Open(ctx, cfg.Artifacts)
	if err != nil {
		return err
	}
	lg.Infof("artifact store: %s", artifacts.Driver())

	if cfg.MetricsAddr != "" {
		go func() {
			lg.Infof("metrics listening on %s", cfg.MetricsAddr)
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				lg.Errorf("metrics server: %v", err)
			}
		}()
	}

	srv := server.New(backend,
		server.WithStore(store),
		server.WithArtifacts(artifacts),
		server.WithLogger(lg),
	)
	defer func() {
		if err := srv.Close(); err != nil {
			lg.Errorf("failed to close mosaics: %v", err)
		}
	}()

	return srv.Run(ctx)
}

func newBackend(name string) (raster.Backend, error) {
	switch name {
	case config.RasterMemory:
		return memory.NewBackend(), nil
	case config.RasterGDAL:
		if !gdal.Available {
			return nil, fmt.Errorf("GDAL backend requested but binary built without cgo: %w", raster.ErrUnavailable)
		}
		return gdal.New(), nil
	default:
		return nil, fmt.Errorf("unknown raster backend %q", name)
	}
}

func printHelp() {
	fmt.Println("geomosaic-mcp - MCP server for geo-referenced raster mosaics")
	fmt.Println()
	fmt.Println("Usage: geomosaic-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  GEOMOSAIC_LOG_LEVEL=debug|info|error")
	fmt.Println("  GEOMOSAIC_RASTER_BACKEND=gdal|memory")
	fmt.Println("  GEOMOSAIC_STORE_DRIVER=sqlite|postgres")
	fmt.Println("  GEOMOSAIC_SQLITE_PATH, GEOMOSAIC_POSTGRES_DSN")
	fmt.Println("  GEOMOSAIC_ARTIFACT_DRIVER=fs|s3, GEOMOSAIC_ARTIFACT_FS_ROOT")
	fmt.Println("  GEOMOSAIC_ARTIFACT_S3_BUCKET, _REGION, _ENDPOINT, _PATH_STYLE")
	fmt.Println("  GEOMOSAIC_METRICS_ADDR=:9090  Serve Prometheus metrics")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
}
