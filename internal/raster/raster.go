package raster

import (
	"errors"
	"fmt"

	"github.com/Murmeldyret/DUNK/internal/geo"
)

var (
	// ErrBackend marks failures opening, reading or composing rasters.
	ErrBackend = errors.New("raster backend error")

	// ErrUnavailable is returned by backends that were not compiled in.
	ErrUnavailable = fmt.Errorf("%w: backend not available in this build", ErrBackend)
)

// Errorf formats a message and wraps it with ErrBackend, preserving any %w
// operand in the format.
func Errorf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %w", ErrBackend, fmt.Errorf(format, a...))
}

// Resampling selects the kernel used when a read window and its output size
// differ.
type Resampling int

const (
	// Nearest picks the closest source sample.
	Nearest Resampling = iota
	// Bilinear interpolates the four surrounding samples.
	Bilinear
	// Lanczos applies a windowed sinc of support 3.
	Lanczos
)

func (r Resampling) String() string {
	switch r {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	case Lanczos:
		return "lanczos"
	default:
		return fmt.Sprintf("resampling(%d)", int(r))
	}
}

// ColorInterp is the colour role of a band.
type ColorInterp int

const (
	// UndefinedBand has no colour role.
	UndefinedBand ColorInterp = iota
	// RedBand carries the red channel.
	RedBand
	// GreenBand carries the green channel.
	GreenBand
	// BlueBand carries the blue channel.
	BlueBand
)

// Window is a rectangle in raster pixel space.
//
// (X, Y) is the top-left corner (inclusive); Width and Height count pixels.
type Window struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether the window has positive size and lies inside a
// raster of the given dimensions.
func (w Window) Valid(sizeX, sizeY int) bool {
	if w.Width <= 0 || w.Height <= 0 || w.X < 0 || w.Y < 0 {
		return false
	}
	return w.X+w.Width <= sizeX && w.Y+w.Height <= sizeY
}

// MinMax is the range of valid samples in a band.
type MinMax struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Band is one channel of an open raster. Band indices are 1-based.
type Band interface {
	// Read returns outWidth*outHeight float32 samples, row-major, for the
	// source window resampled with alg. No-data samples are NaN.
	Read(win Window, outWidth, outHeight int, alg Resampling) ([]float32, error)

	// ReadFloat64 is Read without resampling at float64 precision.
	ReadFloat64(win Window) ([]float64, error)

	// ComputeMinMax scans the whole band, skipping no-data samples.
	ComputeMinMax() (MinMax, error)

	// SetColorInterp records the colour role of the band.
	SetColorInterp(ci ColorInterp) error
}

// Dataset is an open raster.
type Dataset interface {
	// Path is the name the dataset was opened or created with. In-memory
	// virtual mosaics return an empty path.
	Path() string

	// Size returns the raster width and height in pixels.
	Size() (int, int)

	// BandCount returns the number of bands.
	BandCount() int

	// Band returns band i (1-based).
	Band(i int) (Band, error)

	// GeoTransform returns the pixel-to-world transform.
	GeoTransform() (geo.Geotransform, error)

	// Close releases the dataset.
	Close() error
}

// Backend opens and composes rasters.
type Backend interface {
	// Open opens an existing raster file read-only.
	Open(path string) (Dataset, error)

	// BuildVRT composes sources into a virtual mosaic. An empty dst keeps
	// the mosaic in memory.
	BuildVRT(dst string, sources []string) (Dataset, error)

	// Translate copies ds into a new file at dst using the creation profile.
	Translate(ds Dataset, dst string, profile CreationProfile) (Dataset, error)
}
