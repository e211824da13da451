// Package mosaic composes geo-referenced raster tiles into a single mosaic
// and renders windows of it as 8-bit RGBA.
//
// # Lifecycle
//
// A mosaic is created in one of two ways:
//
//   - ImportMosaicDataset opens a raster that was composed earlier.
//   - ImportDatasets opens every tile in a directory, and the resulting
//     RawDataset is composed with ToMosaicDataset (persisted as a
//     cloud-optimized GeoTIFF) or ToVRTDataset (kept in memory).
//
// Band statistics are computed lazily on the first render or
// DatasetsMinMax call and reused for the lifetime of the Mosaic. An
// elevation raster can be attached once with SetElevationDataset; after that
// WorldCoordinates also reports the elevation under a pixel.
//
// # Band Selection
//
// DatasetOptions selects which raster bands feed the red, green and blue
// channels (bands 1, 2 and 3 by default). Statistics and renders use the
// same selection.
//
// # Files Written
//
//   - ToMosaicDataset: <outputDir>/dataset.vrt and <outputDir>/dataset.tif
//   - SetElevationDataset: <outputDir>/elevation.vrt
//
// # Thread Safety
//
// Statistics and elevation state are guarded by a mutex, so concurrent
// renders never compute statistics twice. The underlying raster backend may
// still serialize or reject concurrent reads; callers that share a Mosaic
// across goroutines should expect that.
package mosaic
