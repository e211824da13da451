// Package raster defines the contract between the mosaic pipeline and the
// library that actually reads and writes raster files.
//
// Two backends implement it:
//   - raster/gdal: GDAL through github.com/airbusgeo/godal (requires cgo)
//   - raster/memory: float32 grids held in memory, used by tests and by
//     callers that already hold samples
//
// # Windows and Resampling
//
// Band reads take a source Window in raster pixel space and an output size.
// When the two differ the backend resamples with the requested kernel; the
// mosaic pipeline always asks for Lanczos.
//
// # Error Handling
//
// Every failure coming out of a backend wraps ErrBackend so callers can tell
// structural raster failures apart from their own errors with errors.Is.
package raster
