// Package geo implements the affine geotransform math and the coordinate
// chain that maps a pixel of the base raster to a world coordinate and an
// elevation.
//
// # Geotransforms
//
// A Geotransform holds the six GDAL-style coefficients mapping pixel space
// to world space:
//
//	X = gt[0] + px*gt[1] + py*gt[2]
//	Y = gt[3] + px*gt[4] + py*gt[5]
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner of the
// top-left pixel.
//
// # Coordinate Chain
//
// WorldCoordinates is the single implementation of the lookup. Storage
// specific details live behind the TransformSource interface, which is
// satisfied by the raster-backed mosaic and by the SQL-backed geostore.
//
//	coord, err := geo.WorldCoordinates(ctx, source, 8220.6, 10737.972)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(coord.X, coord.Y, coord.Height)
//
// # Error Handling
//
// A missing elevation transform is not an error: the height falls back to
// 0.0. A missing base transform is always returned to the caller. An elevation
// transform whose linear part is singular panics, because a geo-referenced
// raster can never legitimately carry one.
package geo
