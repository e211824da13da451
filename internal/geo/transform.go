package geo

import (
	"errors"
	"math"
)

// ErrSingularTransform is returned by Invert when the 2x2 linear part of a
// geotransform has a zero determinant.
var ErrSingularTransform = errors.New("geotransform is not invertible")

// Geotransform is a six-coefficient affine pixel-to-world mapping.
type Geotransform [6]float64

// Identity maps every pixel coordinate onto itself.
var Identity = Geotransform{0, 1, 0, 0, 0, 1}

// Apply maps pixel coordinates (px, py) to world coordinates.
func (gt Geotransform) Apply(px, py float64) (float64, float64) {
	x := gt[0] + px*gt[1] + py*gt[2]
	y := gt[3] + px*gt[4] + py*gt[5]
	return x, y
}

// Invert returns the world-to-pixel transform.
//
// The inverse follows GDALInvGeoTransform: the linear part is inverted
// directly and the origin is moved through it. Transforms without rotation
// terms take a shortcut that avoids the determinant rounding.
//
// # Errors
//
//   - ErrSingularTransform if gt[1]*gt[5] - gt[2]*gt[4] is zero
func (gt Geotransform) Invert() (Geotransform, error) {
	if gt[2] == 0 && gt[4] == 0 && gt[1] != 0 && gt[5] != 0 {
		return Geotransform{
			-gt[0] / gt[1],
			1 / gt[1],
			0,
			-gt[3] / gt[5],
			0,
			1 / gt[5],
		}, nil
	}

	det := gt[1]*gt[5] - gt[2]*gt[4]
	if det == 0 || math.IsNaN(det) {
		return Geotransform{}, ErrSingularTransform
	}

	inv := 1 / det
	out := Geotransform{}
	out[1] = gt[5] * inv
	out[4] = -gt[4] * inv
	out[2] = -gt[2] * inv
	out[5] = gt[1] * inv
	out[0] = (gt[2]*gt[3] - gt[0]*gt[5]) * inv
	out[3] = (-gt[1]*gt[3] + gt[0]*gt[4]) * inv
	return out, nil
}
