// Package geostore persists geotransforms and elevation samples in a SQL
// database and answers world-coordinate queries from them.
//
// # Schema
//
// Three tables are created on open if missing:
//
//	geotransform(id, dataset_name, c0, c1, c2, c3, c4, c5)
//	elevation(id, height)
//	elevation_properties(id, x_size, y_size)
//
// Geotransforms are stored by name ("dataset" for the base raster,
// "elevation" for the elevation raster) and are append-only; reads return
// the oldest row with the name. Elevation samples are stored one row per
// pixel in row-major order, so the sample at pixel (x, y) has
// id = y*x_size + x + 1. That addressing assumes the elevation table holds
// exactly one ingested raster.
//
// # Drivers
//
// PostgreSQL is reached through github.com/jackc/pgx/v5/stdlib (driver name
// "pgx"), SQLite through modernc.org/sqlite (driver name "sqlite", pure Go).
//
// # Bulk Ingestion
//
// AddElevationData inserts samples in multi-row INSERT statements of at most
// MaxBindParameters rows (lower for SQLite, whose bind limit is smaller).
// The statements are not wrapped in a transaction: a failure returns the
// first error and leaves earlier statements committed. IngestInTransaction
// runs the same statements inside one transaction instead.
package geostore
