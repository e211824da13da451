package mosaic

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Murmeldyret/DUNK/internal/raster"
)

// Names of the files written next to a composed mosaic.
const (
	VRTFileName       = "dataset.vrt"
	COGFileName       = "dataset.tif"
	ElevationFileName = "elevation.vrt"
)

// RawDataset is the set of tiles opened from one directory, waiting to be
// composed.
type RawDataset struct {
	backend  raster.Backend
	paths    []string
	datasets []raster.Dataset
}

// ImportDatasets opens every regular file directly under dir.
//
// Files are opened in lexical filename order, which also fixes the order in
// which overlapping tiles are composed. Sub-directories are skipped.
//
// Parameters:
//   - backend: Raster backend used to open the tiles.
//   - dir: Directory holding the tiles. Not searched recursively.
//
// Returns:
//   - *RawDataset: The opened tiles. Close it once the mosaic is built.
//   - error: Wraps raster.ErrBackend if dir cannot be listed or any file
//     fails to open. Tiles opened before the failure are closed.
func ImportDatasets(backend raster.Backend, dir string) (*RawDataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, raster.Errorf("failed to list %s: %w", dir, err)
	}

	raw := &RawDataset{backend: backend}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		ds, err := backend.Open(path)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("failed to import %s: %w", path, err)
		}
		raw.paths = append(raw.paths, path)
		raw.datasets = append(raw.datasets, ds)
	}
	return raw, nil
}

// Paths returns the tile paths in composition order.
func (r *RawDataset) Paths() []string {
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// Len returns the number of opened tiles.
func (r *RawDataset) Len() int { return len(r.datasets) }

// ToMosaicDataset composes the tiles and persists the result.
//
// The virtual mosaic is written to outputDir/dataset.vrt and translated to a
// cloud-optimized GeoTIFF at outputDir/dataset.tif with raster.COGProfile.
// The returned Mosaic reads the GeoTIFF and uses default options.
func (r *RawDataset) ToMosaicDataset(outputDir string) (*Mosaic, error) {
	vrt, err := r.backend.BuildVRT(filepath.Join(outputDir, VRTFileName), r.paths)
	if err != nil {
		return nil, fmt.Errorf("failed to build virtual mosaic: %w", err)
	}
	defer vrt.Close()

	cog, err := r.backend.Translate(vrt, filepath.Join(outputDir, COGFileName), raster.COGProfile())
	if err != nil {
		return nil, fmt.Errorf("failed to write mosaic: %w", err)
	}
	return NewMosaic(r.backend, cog, DefaultDatasetOptions()), nil
}

// ToVRTDataset composes the tiles into an in-memory virtual mosaic. No files
// are written.
func (r *RawDataset) ToVRTDataset() (*Mosaic, error) {
	vrt, err := r.backend.BuildVRT("", r.paths)
	if err != nil {
		return nil, fmt.Errorf("failed to build virtual mosaic: %w", err)
	}
	return NewMosaic(r.backend, vrt, DefaultDatasetOptions()), nil
}

// Close releases every opened tile.
func (r *RawDataset) Close() error {
	var errs []error
	for _, ds := range r.datasets {
		if err := ds.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.datasets = nil
	return errors.Join(errs...)
}

// ImportMosaicDataset opens a previously composed mosaic with default
// options.
func ImportMosaicDataset(backend raster.Backend, path string) (*Mosaic, error) {
	ds, err := backend.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to import mosaic: %w", err)
	}
	return NewMosaic(backend, ds, DefaultDatasetOptions()), nil
}
