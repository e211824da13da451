package imaging

import (
	"errors"
	"testing"

	"github.com/Murmeldyret/DUNK/internal/geo"
	"github.com/Murmeldyret/DUNK/internal/mosaic"
	"github.com/Murmeldyret/DUNK/internal/raster/memory"
)

func openTestMosaic(t *testing.T, backend *memory.Backend, path string) *mosaic.Mosaic {
	t.Helper()
	backend.Register(path, memory.NewRaster(2, 2, 3, geo.Identity))
	m, err := mosaic.ImportMosaicDataset(backend, path)
	if err != nil {
		t.Fatalf("ImportMosaicDataset failed: %v", err)
	}
	return m
}

func TestMosaicCache(t *testing.T) {
	backend := memory.NewBackend()
	cache := NewMosaicCache()

	if _, err := cache.Get("base"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Get on empty cache: got %v, want ErrNotLoaded", err)
	}

	first := openTestMosaic(t, backend, "a.tif")
	second := openTestMosaic(t, backend, "b.tif")

	if err := cache.Put("base", first); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := cache.Put("base", second); err != nil {
		t.Fatalf("replacing Put failed: %v", err)
	}
	if _, err := first.Dataset().Band(1); err == nil {
		t.Error("replaced mosaic should be closed")
	}

	got, err := cache.Get("base")
	if err != nil || got != second {
		t.Fatalf("Get: got %v, %v", got, err)
	}

	if err := cache.Put("other", openTestMosaic(t, backend, "c.tif")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if names := cache.Names(); len(names) != 2 || names[0] != "base" || names[1] != "other" {
		t.Errorf("Names: got %v", names)
	}

	if err := cache.Evict("base"); err != nil {
		t.Fatalf("Evict failed: %v", err)
	}
	if err := cache.Evict("base"); err != nil {
		t.Errorf("Evict of unknown name: %v", err)
	}
	if _, err := second.Dataset().Band(1); err == nil {
		t.Error("evicted mosaic should be closed")
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if len(cache.Names()) != 0 {
		t.Error("cache should be empty after Clear")
	}
}
