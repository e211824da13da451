// Package gdal implements raster.Backend on top of GDAL through
// github.com/airbusgeo/godal.
//
// # Build Requirements
//
// The backend needs cgo and the GDAL shared library (>= 3.2 for the COG
// driver). Builds without cgo compile a stub whose every operation returns
// raster.ErrUnavailable, so the rest of the module still builds and can fall
// back to the in-memory backend.
//
// # No-Data Handling
//
// Samples equal to a band's no-data value are returned as NaN by Band.Read
// and skipped by Band.ComputeMinMax. Bands without a no-data value are read
// verbatim.
//
// # Usage
//
//	backend := gdal.New()
//	ds, err := backend.Open("/data/tiles/a.tif")
//	if err != nil {
//	    return err
//	}
//	defer ds.Close()
//
// Driver registration happens once, on the first call to New.
package gdal
