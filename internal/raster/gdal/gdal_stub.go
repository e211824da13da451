//go:build !cgo

package gdal

import "github.com/Murmeldyret/DUNK/internal/raster"

// Available reports whether the GDAL backend was compiled in.
const Available = false

var _ raster.Backend = (*Backend)(nil)

// Backend is the placeholder used when cgo is disabled.
type Backend struct{}

// New returns a backend whose every operation fails with
// raster.ErrUnavailable.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) Open(path string) (raster.Dataset, error) {
	return nil, raster.ErrUnavailable
}

func (b *Backend) BuildVRT(dst string, sources []string) (raster.Dataset, error) {
	return nil, raster.ErrUnavailable
}

func (b *Backend) Translate(ds raster.Dataset, dst string, profile raster.CreationProfile) (raster.Dataset, error) {
	return nil, raster.ErrUnavailable
}
