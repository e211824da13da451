package pixel

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/Murmeldyret/DUNK/internal/raster"
)

// Gamma is the exponent applied by GammaCorrection.
const Gamma float32 = 1.0 / 2.2

// ErrBandLengthMismatch is returned by BandMerger when the three bands do not
// hold the same number of samples.
var ErrBandLengthMismatch = errors.New("band sample counts differ")

// ConversionKind classifies a failed sample conversion.
type ConversionKind int

const (
	// NotANumber marks a no-data (NaN) sample.
	NotANumber ConversionKind = iota + 1
	// GammaOutOfRange marks a normalized value outside [0, 1].
	GammaOutOfRange
)

func (k ConversionKind) String() string {
	switch k {
	case NotANumber:
		return "not a number"
	case GammaOutOfRange:
		return "gamma input out of range"
	default:
		return fmt.Sprintf("conversion kind %d", int(k))
	}
}

// ConversionError reports why a sample could not be converted.
type ConversionError struct {
	Kind  ConversionKind
	Value float32
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("pixel conversion of %v: %s", e.Value, e.Kind)
}

// GammaCorrection raises v to the power Gamma.
//
// # Errors
//
//   - *ConversionError with Kind GammaOutOfRange if v is outside [0, 1]
//     (NaN included).
func GammaCorrection(v float32) (float32, error) {
	if !(v >= 0 && v <= 1) {
		return 0, &ConversionError{Kind: GammaOutOfRange, Value: v}
	}
	return float32(math.Pow(float64(v), float64(Gamma))), nil
}

// F32ToU8 maps sample s into 0..255 using the band range [min, max].
//
// The mapping is non-decreasing in s for fixed min < max.
//
// # Errors
//
//   - *ConversionError with Kind NotANumber if s is NaN.
//   - *ConversionError with Kind GammaOutOfRange if s lies outside
//     [min, max] or the range is degenerate.
func F32ToU8(s, min, max float32) (uint8, error) {
	if math.IsNaN(float64(s)) {
		return 0, &ConversionError{Kind: NotANumber, Value: s}
	}

	normalized := (s - min) / (max - min)

	corrected, err := GammaCorrection(normalized)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(float64(corrected * 255))), nil
}

// BandMerger combines red, green and blue samples into RGBA pixels.
//
// Parameters:
//   - bands: Red, green and blue samples, row-major, all of the same length.
//   - ranges: Per-band statistics in the same order.
//
// Returns:
//   - []color.RGBA: One pixel per sample index. A channel whose conversion
//     fails is 0. Alpha is 0 when all three samples are NaN, else 255.
//   - error: ErrBandLengthMismatch if the bands differ in length.
func BandMerger(bands [3][]float32, ranges [3]raster.MinMax) ([]color.RGBA, error) {
	n := len(bands[0])
	if len(bands[1]) != n || len(bands[2]) != n {
		return nil, fmt.Errorf("%w: %d, %d, %d", ErrBandLengthMismatch, len(bands[0]), len(bands[1]), len(bands[2]))
	}

	out := make([]color.RGBA, n)
	for i := 0; i < n; i++ {
		var channels [3]uint8
		missing := 0
		for b := range bands {
			s := bands[b][i]
			if math.IsNaN(float64(s)) {
				missing++
			}
			// Failed conversions are drawn as 0.
			v, err := F32ToU8(s, float32(ranges[b].Min), float32(ranges[b].Max))
			if err == nil {
				channels[b] = v
			}
		}

		alpha := uint8(255)
		if missing == len(bands) {
			alpha = 0
		}
		out[i] = color.RGBA{R: channels[0], G: channels[1], B: channels[2], A: alpha}
	}
	return out, nil
}
