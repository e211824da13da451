//go:build cgo

package gdal

import (
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"

	"github.com/Murmeldyret/DUNK/internal/raster"
)

// writeTile creates a single-band float32 GeoTIFF filled with value.
func writeTile(t *testing.T, path string, gt [6]float64, value float32) {
	t.Helper()

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float32, 4, 4)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	if err := ds.SetGeoTransform(gt); err != nil {
		t.Fatalf("failed to set geotransform: %v", err)
	}
	buf := make([]float32, 16)
	for i := range buf {
		buf[i] = value
	}
	if err := ds.Bands()[0].Write(0, 0, buf, 4, 4); err != nil {
		t.Fatalf("failed to write samples: %v", err)
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("failed to close %s: %v", path, err)
	}
}

func TestBackend_ComposeAndRead(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.tif")
	b := filepath.Join(dir, "b.tif")
	writeTile(t, a, [6]float64{0, 1, 0, 4, 0, -1}, 1)
	writeTile(t, b, [6]float64{4, 1, 0, 4, 0, -1}, 3)

	backend := New()
	vrt, err := backend.BuildVRT(filepath.Join(dir, "dataset.vrt"), []string{a, b})
	if err != nil {
		t.Fatalf("BuildVRT failed: %v", err)
	}
	defer vrt.Close()

	if w, h := vrt.Size(); w != 8 || h != 4 {
		t.Fatalf("Size: got %dx%d, want 8x4", w, h)
	}

	band, err := vrt.Band(1)
	if err != nil {
		t.Fatalf("Band failed: %v", err)
	}
	mm, err := band.ComputeMinMax()
	if err != nil {
		t.Fatalf("ComputeMinMax failed: %v", err)
	}
	if mm.Min != 1 || mm.Max != 3 {
		t.Errorf("MinMax: got %+v, want {1 3}", mm)
	}

	samples, err := band.Read(raster.Window{Width: 8, Height: 4}, 2, 1, raster.Nearest)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if samples[0] != 1 || samples[1] != 3 {
		t.Errorf("Read: got %v, want [1 3]", samples)
	}

	cog, err := backend.Translate(vrt, filepath.Join(dir, "dataset.tif"), raster.COGProfile())
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	defer cog.Close()
	if cog.BandCount() != 1 {
		t.Errorf("BandCount: got %d, want 1", cog.BandCount())
	}
}
