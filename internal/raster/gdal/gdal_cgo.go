//go:build cgo

package gdal

import (
	"math"
	"sync"

	"github.com/airbusgeo/godal"

	"github.com/Murmeldyret/DUNK/internal/geo"
	"github.com/Murmeldyret/DUNK/internal/raster"
)

var registerOnce sync.Once

// Available reports whether the GDAL backend was compiled in.
const Available = true

var (
	_ raster.Backend = (*Backend)(nil)
	_ raster.Dataset = (*Dataset)(nil)
	_ raster.Band    = (*Band)(nil)
)

// Backend opens and composes rasters with GDAL.
type Backend struct{}

// New registers the GDAL drivers (once per process) and returns a backend.
func New() *Backend {
	registerOnce.Do(godal.RegisterAll)
	return &Backend{}
}

// Open opens path read-only.
func (b *Backend) Open(path string) (raster.Dataset, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, raster.Errorf("open %s: %w", path, err)
	}
	return &Dataset{path: path, ds: ds}, nil
}

// BuildVRT runs gdalbuildvrt over sources. An empty dst keeps the VRT in
// memory.
func (b *Backend) BuildVRT(dst string, sources []string) (raster.Dataset, error) {
	if len(sources) == 0 {
		return nil, raster.Errorf("build vrt: no sources")
	}
	ds, err := godal.BuildVRT(dst, sources, nil)
	if err != nil {
		return nil, raster.Errorf("build vrt %s: %w", dst, err)
	}
	return &Dataset{path: dst, ds: ds}, nil
}

// Translate runs gdal_translate with the profile's driver and creation
// options.
func (b *Backend) Translate(ds raster.Dataset, dst string, profile raster.CreationProfile) (raster.Dataset, error) {
	src, ok := ds.(*Dataset)
	if !ok {
		return nil, raster.Errorf("translate: dataset %T does not belong to the gdal backend", ds)
	}

	switches := []string{"-of", profile.Driver}
	out, err := src.ds.Translate(dst, switches, godal.CreationOption(profile.OptionStrings()...))
	if err != nil {
		return nil, raster.Errorf("translate %s to %s: %w", src.path, dst, err)
	}
	return &Dataset{path: dst, ds: out}, nil
}

// Dataset wraps an open godal dataset.
type Dataset struct {
	path string
	ds   *godal.Dataset
}

func (d *Dataset) Path() string { return d.path }

func (d *Dataset) Size() (int, int) {
	st := d.ds.Structure()
	return st.SizeX, st.SizeY
}

func (d *Dataset) BandCount() int { return d.ds.Structure().NBands }

func (d *Dataset) Band(i int) (raster.Band, error) {
	bands := d.ds.Bands()
	if i < 1 || i > len(bands) {
		return nil, raster.Errorf("band %d out of range [1,%d]", i, len(bands))
	}
	return &Band{band: bands[i-1]}, nil
}

func (d *Dataset) GeoTransform() (geo.Geotransform, error) {
	gt, err := d.ds.GeoTransform()
	if err != nil {
		return geo.Geotransform{}, raster.Errorf("geotransform of %s: %w", d.path, err)
	}
	return geo.Geotransform(gt), nil
}

func (d *Dataset) Close() error {
	if err := d.ds.Close(); err != nil {
		return raster.Errorf("close %s: %w", d.path, err)
	}
	return nil
}

// Band wraps one godal band.
type Band struct {
	band godal.Band
}

func resamplingAlg(alg raster.Resampling) godal.ResamplingAlg {
	switch alg {
	case raster.Lanczos:
		return godal.Lanczos
	case raster.Bilinear:
		return godal.Bilinear
	default:
		return godal.Nearest
	}
}

func (b *Band) Read(win raster.Window, outWidth, outHeight int, alg raster.Resampling) ([]float32, error) {
	st := b.band.Structure()
	if !win.Valid(st.SizeX, st.SizeY) {
		return nil, raster.Errorf("read window %+v outside %dx%d raster", win, st.SizeX, st.SizeY)
	}
	if outWidth <= 0 || outHeight <= 0 {
		return nil, raster.Errorf("invalid output size %dx%d", outWidth, outHeight)
	}

	buf := make([]float32, outWidth*outHeight)
	err := b.band.Read(win.X, win.Y, buf, outWidth, outHeight,
		godal.Window(win.Width, win.Height),
		godal.Resampling(resamplingAlg(alg)),
	)
	if err != nil {
		return nil, raster.Errorf("read window %+v: %w", win, err)
	}

	if nd, ok := b.band.NoData(); ok {
		nodata := float32(nd)
		nan := float32(math.NaN())
		for i, v := range buf {
			if v == nodata {
				buf[i] = nan
			}
		}
	}
	return buf, nil
}

func (b *Band) ReadFloat64(win raster.Window) ([]float64, error) {
	st := b.band.Structure()
	if !win.Valid(st.SizeX, st.SizeY) {
		return nil, raster.Errorf("read window %+v outside %dx%d raster", win, st.SizeX, st.SizeY)
	}
	buf := make([]float64, win.Width*win.Height)
	if err := b.band.Read(win.X, win.Y, buf, win.Width, win.Height); err != nil {
		return nil, raster.Errorf("read window %+v: %w", win, err)
	}
	return buf, nil
}

// ComputeMinMax scans the band block by block.
func (b *Band) ComputeMinMax() (raster.MinMax, error) {
	st := b.band.Structure()
	nd, hasNoData := b.band.NoData()

	mm := raster.MinMax{Min: math.Inf(1), Max: math.Inf(-1)}
	valid := false
	buf := make([]float64, st.BlockSizeX*st.BlockSizeY)

	for block, ok := st.FirstBlock(), true; ok; block, ok = block.Next() {
		samples := buf[:block.W*block.H]
		if err := b.band.Read(block.X0, block.Y0, samples, block.W, block.H); err != nil {
			return raster.MinMax{}, raster.Errorf("read block (%d,%d): %w", block.X0, block.Y0, err)
		}
		for _, v := range samples {
			if math.IsNaN(v) || (hasNoData && v == nd) {
				continue
			}
			mm.Min = math.Min(mm.Min, v)
			mm.Max = math.Max(mm.Max, v)
			valid = true
		}
	}

	if !valid {
		return raster.MinMax{}, raster.Errorf("band has no valid samples")
	}
	return mm, nil
}

func (b *Band) SetColorInterp(ci raster.ColorInterp) error {
	var gci godal.ColorInterp
	switch ci {
	case raster.RedBand:
		gci = godal.CIRed
	case raster.GreenBand:
		gci = godal.CIGreen
	case raster.BlueBand:
		gci = godal.CIBlue
	default:
		gci = godal.CIUndefined
	}
	if err := b.band.SetColorInterp(gci); err != nil {
		return raster.Errorf("set color interpretation: %w", err)
	}
	return nil
}
