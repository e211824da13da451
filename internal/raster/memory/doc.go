// Package memory implements raster.Backend over float32 grids held in
// memory.
//
// Rasters are registered under a path and then opened through the backend
// exactly like files, which lets directory-driven code (mosaic imports,
// elevation attachment) run unchanged against synthetic data:
//
//	backend := memory.NewBackend()
//	backend.Register("/tiles/a.tif", memory.NewRaster(4, 4, 3, gt))
//	ds, err := backend.Open("/tiles/a.tif")
//
// BuildVRT composes north-up sources that share a pixel size into one grid
// (later sources win where they have data). Translate copies a dataset. Both
// write a small JSON descriptor when given a destination path so that the
// files a real backend would produce exist on disk.
//
// Resampling uses the Lanczos and linear kernels of
// github.com/disintegration/imaging, applied separably to float samples.
// NaN samples are treated as no-data: they are skipped and the remaining
// weights renormalized; an output sample with no valid contributor is NaN.
//
// # Thread Safety
//
// Backend registration is safe for concurrent use. The call counters are
// atomic. Raster contents must not be mutated while they are being read.
package memory
