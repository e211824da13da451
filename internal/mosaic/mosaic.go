package mosaic

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sync"

	"github.com/Murmeldyret/DUNK/internal/geo"
	"github.com/Murmeldyret/DUNK/internal/metrics"
	"github.com/Murmeldyret/DUNK/internal/pixel"
	"github.com/Murmeldyret/DUNK/internal/raster"
)

var (
	// ErrElevationAttached is returned by SetElevationDataset when the
	// mosaic already has an elevation raster.
	ErrElevationAttached = errors.New("elevation dataset already attached")

	// ErrBandLengthMismatch is returned by ToRGB when the backend returns
	// bands of different lengths.
	ErrBandLengthMismatch = pixel.ErrBandLengthMismatch
)

// BandsMinMax holds the value range of the three colour bands.
type BandsMinMax struct {
	Red   raster.MinMax `json:"red"`
	Green raster.MinMax `json:"green"`
	Blue  raster.MinMax `json:"blue"`
}

func (b BandsMinMax) ranges() [3]raster.MinMax {
	return [3]raster.MinMax{b.Red, b.Green, b.Blue}
}

var colorRoles = [3]raster.ColorInterp{raster.RedBand, raster.GreenBand, raster.BlueBand}

// Mosaic is a composed raster together with its render options, its cached
// band statistics and an optional elevation raster.
type Mosaic struct {
	backend raster.Backend
	dataset raster.Dataset
	options DatasetOptions

	mu        sync.Mutex
	minMax    *BandsMinMax
	elevation raster.Dataset
}

// NewMosaic wraps an open dataset. The mosaic takes ownership of ds; backend
// is used to compose an elevation raster later.
func NewMosaic(backend raster.Backend, ds raster.Dataset, opts DatasetOptions) *Mosaic {
	return &Mosaic{backend: backend, dataset: ds, options: opts}
}

// Options returns the render options.
func (m *Mosaic) Options() DatasetOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.options
}

// SetOptions replaces the render options. Cached band statistics are
// dropped when the band indices change.
func (m *Mosaic) SetOptions(opts DatasetOptions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if opts.Bands() != m.options.Bands() {
		m.minMax = nil
	}
	m.options = opts
}

// Dataset returns the base raster.
func (m *Mosaic) Dataset() raster.Dataset { return m.dataset }

// Dimensions returns the raster width and height in pixels.
func (m *Mosaic) Dimensions() (int, int) { return m.dataset.Size() }

// Elevation returns the attached elevation raster, if any.
func (m *Mosaic) Elevation() (raster.Dataset, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elevation, m.elevation != nil
}

// DatasetsMinMax returns the value range of the configured colour bands.
//
// The first successful call scans the bands; later calls return the stored
// value without touching the raster. A failed scan stores nothing, so the
// next call retries.
//
// # Errors
//
//   - Wraps raster.ErrBackend if a band cannot be opened or scanned.
func (m *Mosaic) DatasetsMinMax() (BandsMinMax, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bandsMinMax(m.options.Bands())
}

// bandsMinMax must be called with m.mu held. Statistics are only cached for
// the currently configured bands.
func (m *Mosaic) bandsMinMax(bands [3]int) (BandsMinMax, error) {
	current := bands == m.options.Bands()
	if current && m.minMax != nil {
		return *m.minMax, nil
	}

	var ranges [3]raster.MinMax
	for i, index := range bands {
		band, err := m.dataset.Band(index)
		if err != nil {
			return BandsMinMax{}, fmt.Errorf("failed to open band %d: %w", index, err)
		}
		mm, err := band.ComputeMinMax()
		if err != nil {
			return BandsMinMax{}, fmt.Errorf("failed to compute statistics of band %d: %w", index, err)
		}
		ranges[i] = mm
	}
	metrics.StatisticsPasses.Inc()

	mm := BandsMinMax{Red: ranges[0], Green: ranges[1], Blue: ranges[2]}
	if current {
		m.minMax = &mm
	}
	return mm, nil
}

// ToRGB renders a window of the mosaic as RGBA pixels.
//
// Parameters:
//   - win: Source window in raster pixels.
//   - outWidth, outHeight: Output size. The window is resampled with the
//     Lanczos kernel when the sizes differ.
//
// Returns:
//   - []color.RGBA: outWidth*outHeight pixels, row-major. A channel that
//     cannot be converted is 0; a pixel with no data in any band has
//     alpha 0.
//   - error: Wraps raster.ErrBackend if a band read or the statistics scan
//     fails, or ErrBandLengthMismatch.
func (m *Mosaic) ToRGB(win raster.Window, outWidth, outHeight int) ([]color.RGBA, error) {
	indices := m.Options().Bands()

	var bands [3][]float32
	for i, index := range indices {
		samples, err := m.extractBand(index, colorRoles[i], win, outWidth, outHeight)
		if err != nil {
			return nil, err
		}
		bands[i] = samples
	}

	m.mu.Lock()
	minMax, err := m.bandsMinMax(indices)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	pixels, err := pixel.BandMerger(bands, minMax.ranges())
	if err != nil {
		return nil, fmt.Errorf("failed to merge bands: %w", err)
	}
	metrics.RenderedPixels.Add(float64(len(pixels)))
	return pixels, nil
}

func (m *Mosaic) extractBand(index int, role raster.ColorInterp, win raster.Window, outWidth, outHeight int) ([]float32, error) {
	band, err := m.dataset.Band(index)
	if err != nil {
		return nil, fmt.Errorf("failed to open band %d: %w", index, err)
	}
	if err := band.SetColorInterp(role); err != nil {
		return nil, fmt.Errorf("failed to set colour role of band %d: %w", index, err)
	}
	samples, err := band.Read(win, outWidth, outHeight, raster.Lanczos)
	if err != nil {
		return nil, fmt.Errorf("failed to read band %d: %w", index, err)
	}
	return samples, nil
}

// RenderImage is ToRGB returning an image of outWidth x outHeight.
func (m *Mosaic) RenderImage(win raster.Window, outWidth, outHeight int) (*image.RGBA, error) {
	pixels, err := m.ToRGB(win, outWidth, outHeight)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, outWidth, outHeight))
	for i, px := range pixels {
		img.SetRGBA(i%outWidth, i/outWidth, px)
	}
	return img, nil
}

// SetElevationDataset composes every raster under dir into
// outputDir/elevation.vrt and attaches it to the mosaic.
//
// # Errors
//
//   - ErrElevationAttached if an elevation raster is already attached.
//   - Wraps raster.ErrBackend if dir cannot be imported or composed.
func (m *Mosaic) SetElevationDataset(dir, outputDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.elevation != nil {
		return ErrElevationAttached
	}

	raw, err := ImportDatasets(m.backend, dir)
	if err != nil {
		return fmt.Errorf("failed to import elevation tiles: %w", err)
	}
	defer raw.Close()

	vrt, err := m.backend.BuildVRT(filepath.Join(outputDir, ElevationFileName), raw.paths)
	if err != nil {
		return fmt.Errorf("failed to build elevation mosaic: %w", err)
	}
	m.elevation = vrt
	return nil
}

// WorldCoordinates maps pixel (x, y) of the mosaic to world coordinates and
// the elevation under them. Height is 0 when no elevation raster is
// attached.
//
// Panics if the elevation raster's geotransform is not invertible.
func (m *Mosaic) WorldCoordinates(ctx context.Context, x, y float64) (geo.Coordinate, error) {
	metrics.CoordinateLookups.WithLabelValues("raster").Inc()
	return geo.WorldCoordinates(ctx, rasterSource{m}, x, y)
}

// Close releases the base raster and the elevation raster.
func (m *Mosaic) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	errs := []error{m.dataset.Close()}
	if m.elevation != nil {
		errs = append(errs, m.elevation.Close())
	}
	return errors.Join(errs...)
}

// rasterSource reads the coordinate chain inputs from the mosaic's rasters.
type rasterSource struct {
	m *Mosaic
}

func (s rasterSource) BaseTransform(ctx context.Context) (geo.Geotransform, error) {
	return s.m.dataset.GeoTransform()
}

func (s rasterSource) ElevationTransform(ctx context.Context) (geo.Geotransform, bool, error) {
	elevation, ok := s.m.Elevation()
	if !ok {
		return geo.Geotransform{}, false, nil
	}
	gt, err := elevation.GeoTransform()
	if err != nil {
		return geo.Geotransform{}, false, err
	}
	return gt, true, nil
}

func (s rasterSource) SampleElevation(ctx context.Context, px, py int) (float64, error) {
	elevation, _ := s.m.Elevation()
	band, err := elevation.Band(1)
	if err != nil {
		return 0, err
	}
	samples, err := band.ReadFloat64(raster.Window{X: px, Y: py, Width: 1, Height: 1})
	if err != nil {
		return 0, err
	}
	return samples[0], nil
}
