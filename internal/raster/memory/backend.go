package memory

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/Murmeldyret/DUNK/internal/geo"
	"github.com/Murmeldyret/DUNK/internal/raster"
)

// Compile-time contract assertions.
var (
	_ raster.Backend = (*Backend)(nil)
	_ raster.Dataset = (*Dataset)(nil)
	_ raster.Band    = (*Band)(nil)
)

// Backend serves registered in-memory rasters by path.
type Backend struct {
	mu      sync.RWMutex
	rasters map[string]*Raster
}

// NewBackend creates an empty backend.
func NewBackend() *Backend {
	return &Backend{rasters: make(map[string]*Raster)}
}

// Register makes r available under path. The path is cleaned first, so
// "./a.tif" and "a.tif" refer to the same raster.
func (b *Backend) Register(path string, r *Raster) {
	b.mu.Lock()
	b.rasters[filepath.Clean(path)] = r
	b.mu.Unlock()
}

// Lookup returns the raster registered under path.
func (b *Backend) Lookup(path string) (*Raster, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.rasters[filepath.Clean(path)]
	return r, ok
}

// Open returns a dataset over the raster registered under path.
func (b *Backend) Open(path string) (raster.Dataset, error) {
	r, ok := b.Lookup(path)
	if !ok {
		return nil, raster.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return &Dataset{path: path, raster: r}, nil
}

// descriptor is the JSON written for composed or translated rasters.
type descriptor struct {
	Kind      string            `json:"kind"`
	Sources   []string          `json:"sources,omitempty"`
	Driver    string            `json:"driver,omitempty"`
	Options   map[string]string `json:"options,omitempty"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Transform geo.Geotransform  `json:"geotransform"`
}

// BuildVRT mosaics the registered sources into one raster.
//
// Sources must be north-up with identical pixel sizes and band counts. The
// output covers the union of their extents; where sources overlap, the later
// source wins for every sample it has data for.
func (b *Backend) BuildVRT(dst string, sources []string) (raster.Dataset, error) {
	if len(sources) == 0 {
		return nil, raster.Errorf("build vrt: no sources")
	}

	inputs := make([]*Raster, 0, len(sources))
	for _, src := range sources {
		r, ok := b.Lookup(src)
		if !ok {
			return nil, raster.Errorf("build vrt source %s: %w", src, os.ErrNotExist)
		}
		inputs = append(inputs, r)
	}

	first := inputs[0].Transform
	if first[2] != 0 || first[4] != 0 {
		return nil, raster.Errorf("build vrt: rotated geotransforms are not supported")
	}
	bands := len(inputs[0].Bands)

	minX, maxY := math.Inf(1), math.Inf(-1)
	maxX, minY := math.Inf(-1), math.Inf(1)
	for i, r := range inputs {
		gt := r.Transform
		if gt[1] != first[1] || gt[5] != first[5] || gt[2] != 0 || gt[4] != 0 {
			return nil, raster.Errorf("build vrt: source %s has a different pixel size", sources[i])
		}
		if len(r.Bands) != bands {
			return nil, raster.Errorf("build vrt: source %s has %d bands, want %d", sources[i], len(r.Bands), bands)
		}
		x0, y0 := gt.Apply(0, 0)
		x1, y1 := gt.Apply(float64(r.Width), float64(r.Height))
		minX, maxX = math.Min(minX, math.Min(x0, x1)), math.Max(maxX, math.Max(x0, x1))
		minY, maxY = math.Min(minY, math.Min(y0, y1)), math.Max(maxY, math.Max(y0, y1))
	}

	originX, originY := minX, maxY
	if first[5] > 0 {
		originY = minY
	}
	if first[1] < 0 {
		originX = maxX
	}
	gt := geo.Geotransform{originX, first[1], 0, originY, 0, first[5]}
	width := int(math.Round((maxX - minX) / math.Abs(first[1])))
	height := int(math.Round((maxY - minY) / math.Abs(first[5])))

	out := NewRaster(width, height, bands, gt)
	inv, err := gt.Invert()
	if err != nil {
		return nil, raster.Errorf("build vrt: %w", err)
	}
	for _, r := range inputs {
		ox, oy := geo.RoundPixel(inv.Apply(r.Transform.Apply(0, 0)))
		for band := 1; band <= bands; band++ {
			for y := 0; y < r.Height; y++ {
				for x := 0; x < r.Width; x++ {
					v := r.At(band, x, y)
					if math.IsNaN(float64(v)) {
						continue
					}
					out.Set(band, ox+x, oy+y, v)
				}
			}
		}
	}

	if dst != "" {
		if err := writeDescriptor(dst, descriptor{
			Kind: "vrt", Sources: sources, Width: width, Height: height, Transform: gt,
		}); err != nil {
			return nil, err
		}
		b.Register(dst, out)
	}
	return &Dataset{path: dst, raster: out}, nil
}

// Translate copies ds into a new raster registered under dst.
func (b *Backend) Translate(ds raster.Dataset, dst string, profile raster.CreationProfile) (raster.Dataset, error) {
	src, ok := ds.(*Dataset)
	if !ok {
		return nil, raster.Errorf("translate: dataset %T does not belong to the memory backend", ds)
	}
	if dst == "" {
		return nil, raster.Errorf("translate: empty destination")
	}
	out := src.raster.clone()
	if err := writeDescriptor(dst, descriptor{
		Kind: "translate", Sources: []string{src.path}, Driver: profile.Driver, Options: profile.Options,
		Width: out.Width, Height: out.Height, Transform: out.Transform,
	}); err != nil {
		return nil, err
	}
	b.Register(dst, out)
	return &Dataset{path: dst, raster: out}, nil
}

func writeDescriptor(path string, d descriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return raster.Errorf("encode descriptor: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return raster.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Dataset is an open in-memory raster.
type Dataset struct {
	path   string
	raster *Raster
	closed bool
}

// Raster returns the grid behind the dataset.
func (d *Dataset) Raster() *Raster { return d.raster }

func (d *Dataset) Path() string { return d.path }

func (d *Dataset) Size() (int, int) { return d.raster.Width, d.raster.Height }

func (d *Dataset) BandCount() int { return len(d.raster.Bands) }

func (d *Dataset) Band(i int) (raster.Band, error) {
	if d.closed {
		return nil, raster.Errorf("band %d: dataset closed", i)
	}
	if i < 1 || i > len(d.raster.Bands) {
		return nil, raster.Errorf("band %d out of range [1,%d]", i, len(d.raster.Bands))
	}
	return &Band{raster: d.raster, index: i}, nil
}

func (d *Dataset) GeoTransform() (geo.Geotransform, error) {
	return d.raster.Transform, nil
}

func (d *Dataset) Close() error {
	if d.closed {
		return raster.Errorf("close called more than once")
	}
	d.closed = true
	return nil
}

// Band is one band of an in-memory raster.
type Band struct {
	raster *Raster
	index  int
}

func (b *Band) samples() []float32 { return b.raster.Bands[b.index-1] }

func (b *Band) Read(win raster.Window, outWidth, outHeight int, alg raster.Resampling) ([]float32, error) {
	if !win.Valid(b.raster.Width, b.raster.Height) {
		return nil, raster.Errorf("read window %+v outside %dx%d raster", win, b.raster.Width, b.raster.Height)
	}
	if outWidth <= 0 || outHeight <= 0 {
		return nil, raster.Errorf("invalid output size %dx%d", outWidth, outHeight)
	}
	b.raster.stats.Reads.Add(1)
	return resample(b.samples(), b.raster.Width, win, outWidth, outHeight, alg), nil
}

func (b *Band) ReadFloat64(win raster.Window) ([]float64, error) {
	if !win.Valid(b.raster.Width, b.raster.Height) {
		return nil, raster.Errorf("read window %+v outside %dx%d raster", win, b.raster.Width, b.raster.Height)
	}
	b.raster.stats.Reads.Add(1)
	out := make([]float64, 0, win.Width*win.Height)
	for y := win.Y; y < win.Y+win.Height; y++ {
		for x := win.X; x < win.X+win.Width; x++ {
			out = append(out, float64(b.raster.At(b.index, x, y)))
		}
	}
	return out, nil
}

func (b *Band) ComputeMinMax() (raster.MinMax, error) {
	b.raster.stats.MinMax.Add(1)
	mm := raster.MinMax{Min: math.Inf(1), Max: math.Inf(-1)}
	valid := false
	for _, s := range b.samples() {
		if math.IsNaN(float64(s)) {
			continue
		}
		v := float64(s)
		mm.Min = math.Min(mm.Min, v)
		mm.Max = math.Max(mm.Max, v)
		valid = true
	}
	if !valid {
		return raster.MinMax{}, raster.Errorf("band %d has no valid samples", b.index)
	}
	return mm, nil
}

func (b *Band) SetColorInterp(ci raster.ColorInterp) error {
	b.raster.interps[b.index-1] = ci
	return nil
}
