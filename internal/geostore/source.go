package geostore

import (
	"context"
	"errors"

	"github.com/Murmeldyret/DUNK/internal/geo"
	"github.com/Murmeldyret/DUNK/internal/metrics"
)

// WorldCoordinates maps pixel (x, y) of the stored base raster to world
// coordinates and the stored elevation under them.
//
// A missing "dataset" transform is an error (ErrNotFound). A missing
// "elevation" transform yields height 0.
func (s *Store) WorldCoordinates(ctx context.Context, x, y float64) (geo.Coordinate, error) {
	metrics.CoordinateLookups.WithLabelValues("store").Inc()
	return geo.WorldCoordinates(ctx, storeSource{s}, x, y)
}

// storeSource reads the coordinate chain inputs from the database.
type storeSource struct {
	s *Store
}

func (src storeSource) BaseTransform(ctx context.Context) (geo.Geotransform, error) {
	return src.s.ReadGeotransform(ctx, DatasetTransformName)
}

func (src storeSource) ElevationTransform(ctx context.Context) (geo.Geotransform, bool, error) {
	gt, err := src.s.ReadGeotransform(ctx, ElevationTransformName)
	if errors.Is(err, ErrNotFound) {
		return geo.Geotransform{}, false, nil
	}
	if err != nil {
		return geo.Geotransform{}, false, err
	}
	return gt, true, nil
}

func (src storeSource) SampleElevation(ctx context.Context, px, py int) (float64, error) {
	return src.s.GetElevation(ctx, float64(px), float64(py))
}
