// Package config reads the server configuration from environment variables.
//
//	GEOMOSAIC_LOG_LEVEL             debug|info|error (default info)
//	GEOMOSAIC_RASTER_BACKEND        gdal|memory (default gdal)
//	GEOMOSAIC_STORE_DRIVER          sqlite|postgres, also postgresql or pgx (default sqlite)
//	GEOMOSAIC_SQLITE_PATH           SQLite file (default ./geomosaic.db)
//	GEOMOSAIC_POSTGRES_DSN          PostgreSQL DSN (default postgres://localhost/geomosaic?sslmode=disable)
//	GEOMOSAIC_ARTIFACT_DRIVER       fs|s3 (default fs)
//	GEOMOSAIC_ARTIFACT_FS_ROOT      root directory for the fs driver (default ./artifacts)
//	GEOMOSAIC_ARTIFACT_S3_BUCKET    bucket for the s3 driver (required with s3)
//	GEOMOSAIC_ARTIFACT_S3_REGION    region (default us-east-1)
//	GEOMOSAIC_ARTIFACT_S3_ENDPOINT  custom endpoint, e.g. MinIO
//	GEOMOSAIC_ARTIFACT_S3_PATH_STYLE true|false (default false)
//	GEOMOSAIC_METRICS_ADDR          listen address for /metrics (empty disables)
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Murmeldyret/DUNK/internal/artifact"
	"github.com/Murmeldyret/DUNK/internal/geostore"
	"github.com/Murmeldyret/DUNK/internal/logger"
)

// Raster backend names.
const (
	RasterGDAL   = "gdal"
	RasterMemory = "memory"
)

// Config is the complete server configuration.
type Config struct {
	LogLevel      logger.LogLevel
	RasterBackend string

	StoreDriver string
	StoreDSN    string

	Artifacts artifact.Config

	MetricsAddr string
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup reads the configuration through lookup, which has the shape of
// os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		LogLevel:      logger.ParseLevel(get("GEOMOSAIC_LOG_LEVEL", "info")),
		RasterBackend: strings.ToLower(get("GEOMOSAIC_RASTER_BACKEND", RasterGDAL)),
		MetricsAddr:   get("GEOMOSAIC_METRICS_ADDR", ""),
	}

	switch cfg.RasterBackend {
	case RasterGDAL, RasterMemory:
	default:
		return Config{}, fmt.Errorf("unknown raster backend %q", cfg.RasterBackend)
	}

	driver, err := geostore.ParseDriver(get("GEOMOSAIC_STORE_DRIVER", geostore.DriverSQLite))
	if err != nil {
		return Config{}, err
	}
	cfg.StoreDriver = driver

	switch cfg.StoreDriver {
	case geostore.DriverSQLite:
		cfg.StoreDSN = get("GEOMOSAIC_SQLITE_PATH", geostore.DefaultSQLitePath)
	case geostore.DriverPostgres:
		cfg.StoreDSN = get("GEOMOSAIC_POSTGRES_DSN", geostore.DefaultPostgresDSN)
	}

	cfg.Artifacts = artifact.Config{
		Driver: artifact.Driver(strings.ToLower(get("GEOMOSAIC_ARTIFACT_DRIVER", string(artifact.DriverFilesystem)))),
		FSRoot: get("GEOMOSAIC_ARTIFACT_FS_ROOT", artifact.DefaultFSRoot),
		S3: artifact.S3Config{
			Bucket:    get("GEOMOSAIC_ARTIFACT_S3_BUCKET", ""),
			Region:    get("GEOMOSAIC_ARTIFACT_S3_REGION", "us-east-1"),
			Endpoint:  get("GEOMOSAIC_ARTIFACT_S3_ENDPOINT", ""),
			PathStyle: strings.EqualFold(get("GEOMOSAIC_ARTIFACT_S3_PATH_STYLE", "false"), "true"),
		},
	}
	switch cfg.Artifacts.Driver {
	case artifact.DriverFilesystem:
	case artifact.DriverS3:
		if cfg.Artifacts.S3.Bucket == "" {
			return Config{}, fmt.Errorf("GEOMOSAIC_ARTIFACT_S3_BUCKET required for s3 driver")
		}
	default:
		return Config{}, fmt.Errorf("unknown artifact driver %q", cfg.Artifacts.Driver)
	}

	return cfg, nil
}
