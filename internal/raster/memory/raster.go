package memory

import (
	"math"
	"sync/atomic"

	"github.com/Murmeldyret/DUNK/internal/geo"
	"github.com/Murmeldyret/DUNK/internal/raster"
)

// Raster is an in-memory multi-band float32 grid.
type Raster struct {
	Width     int
	Height    int
	Transform geo.Geotransform

	// Bands holds one row-major slice of Width*Height samples per band.
	Bands [][]float32

	interps []raster.ColorInterp
	stats   *Counters
}

// Counters records how often expensive band operations ran.
type Counters struct {
	MinMax atomic.Int64
	Reads  atomic.Int64
}

// NewRaster creates a width x height raster with the given number of bands,
// every sample initialised to NaN.
func NewRaster(width, height, bands int, gt geo.Geotransform) *Raster {
	r := &Raster{
		Width:     width,
		Height:    height,
		Transform: gt,
		Bands:     make([][]float32, bands),
		interps:   make([]raster.ColorInterp, bands),
		stats:     &Counters{},
	}
	nan := float32(math.NaN())
	for b := range r.Bands {
		samples := make([]float32, width*height)
		for i := range samples {
			samples[i] = nan
		}
		r.Bands[b] = samples
	}
	return r
}

// Set writes one sample of band b (1-based) at pixel (x, y).
func (r *Raster) Set(b, x, y int, v float32) {
	r.Bands[b-1][y*r.Width+x] = v
}

// At reads one sample of band b (1-based) at pixel (x, y).
func (r *Raster) At(b, x, y int) float32 {
	return r.Bands[b-1][y*r.Width+x]
}

// Fill sets every sample of band b (1-based) with fn(x, y).
func (r *Raster) Fill(b int, fn func(x, y int) float32) {
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			r.Set(b, x, y, fn(x, y))
		}
	}
}

// Counters exposes the band operation counters of the raster.
func (r *Raster) Counters() *Counters {
	return r.stats
}

// ColorInterp returns the colour role recorded for band b (1-based).
func (r *Raster) ColorInterp(b int) raster.ColorInterp {
	return r.interps[b-1]
}

func (r *Raster) clone() *Raster {
	c := NewRaster(r.Width, r.Height, len(r.Bands), r.Transform)
	for b := range r.Bands {
		copy(c.Bands[b], r.Bands[b])
	}
	copy(c.interps, r.interps)
	return c
}
