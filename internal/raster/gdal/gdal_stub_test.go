//go:build !cgo

package gdal

import (
	"errors"
	"testing"

	"github.com/Murmeldyret/DUNK/internal/raster"
)

func TestStub_Unavailable(t *testing.T) {
	b := New()
	if _, err := b.Open("a.tif"); !errors.Is(err, raster.ErrUnavailable) {
		t.Errorf("Open: got %v, want ErrUnavailable", err)
	}
	if _, err := b.BuildVRT("", []string{"a.tif"}); !errors.Is(err, raster.ErrBackend) {
		t.Errorf("BuildVRT: got %v, want ErrBackend", err)
	}
}
