package geo

import (
	"context"
	"fmt"
	"math"
)

// Coordinate is the result of a world-coordinate lookup.
type Coordinate struct {
	// X is the world easting (or longitude) of the queried pixel.
	X float64 `json:"x"`

	// Y is the world northing (or latitude) of the queried pixel.
	Y float64 `json:"y"`

	// Height is the elevation sample at (X, Y), or 0 when no elevation
	// raster is associated with the base raster.
	Height float64 `json:"height"`
}

// TransformSource supplies the inputs of the coordinate chain.
//
// Implementations decide where transforms and elevation samples come from;
// the transform math lives only in WorldCoordinates.
type TransformSource interface {
	// BaseTransform returns the pixel-to-world transform of the base raster.
	BaseTransform(ctx context.Context) (Geotransform, error)

	// ElevationTransform returns the pixel-to-world transform of the
	// elevation raster. ok is false when no elevation raster exists.
	ElevationTransform(ctx context.Context) (gt Geotransform, ok bool, err error)

	// SampleElevation reads one elevation sample at integer pixel (px, py)
	// of the elevation raster.
	SampleElevation(ctx context.Context, px, py int) (float64, error)
}

// WorldCoordinates maps pixel (x, y) of the base raster to world coordinates
// and, when the source has one, the elevation at that location.
//
// Parameters:
//   - ctx: Passed through to every TransformSource call.
//   - src: Supplies transforms and elevation samples.
//   - x, y: Pixel coordinates in the base raster. Fractional values are kept
//     through the transform; only the elevation pixel is rounded.
//
// Returns:
//   - Coordinate: World X/Y and the elevation sample (0 without elevation).
//   - error: Non-nil if the base transform, the elevation transform lookup or
//     the elevation sample fails.
//
// Panics if the elevation transform is singular.
func WorldCoordinates(ctx context.Context, src TransformSource, x, y float64) (Coordinate, error) {
	base, err := src.BaseTransform(ctx)
	if err != nil {
		return Coordinate{}, fmt.Errorf("failed to read base transform: %w", err)
	}

	wx, wy := base.Apply(x, y)

	elevation, ok, err := src.ElevationTransform(ctx)
	if err != nil {
		return Coordinate{}, fmt.Errorf("failed to read elevation transform: %w", err)
	}
	if !ok {
		return Coordinate{X: wx, Y: wy}, nil
	}

	inverse, err := elevation.Invert()
	if err != nil {
		panic(fmt.Sprintf("elevation geotransform %v: %v", elevation, err))
	}

	ex, ey := inverse.Apply(wx, wy)
	px, py := RoundPixel(ex, ey)

	height, err := src.SampleElevation(ctx, px, py)
	if err != nil {
		return Coordinate{}, fmt.Errorf("failed to sample elevation at (%d,%d): %w", px, py, err)
	}

	return Coordinate{X: wx, Y: wy, Height: height}, nil
}

// RoundPixel rounds fractional pixel coordinates half away from zero.
func RoundPixel(x, y float64) (int, int) {
	return int(math.Round(x)), int(math.Round(y))
}
