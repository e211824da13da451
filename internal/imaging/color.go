package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBAColor represents an RGBA color with 8-bit components.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"` // 0 where the mosaic had no data
}

// HSLColor represents a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // 0-360 degrees
	S int `json:"s"` // 0-100 percent
	L int `json:"l"` // 0-100 percent
}

// ColorResult contains a sampled color in several representations.
type ColorResult struct {
	Hex         string    `json:"hex"`
	RGBA        RGBAColor `json:"rgba"`
	HSL         HSLColor  `json:"hsl"`
	Transparent bool      `json:"transparent"`
}

// Viewport maps output pixels of a rendered window back to mosaic pixels.
type Viewport struct {
	// Origin is the mosaic pixel drawn at output (0,0).
	Origin image.Point

	// ScaleX and ScaleY are mosaic pixels per output pixel.
	ScaleX float64
	ScaleY float64
}

// NewViewport returns the viewport of a window rendered at outW x outH.
func NewViewport(x, y, winW, winH, outW, outH int) Viewport {
	return Viewport{
		Origin: image.Pt(x, y),
		ScaleX: float64(winW) / float64(outW),
		ScaleY: float64(winH) / float64(outH),
	}
}

func (v Viewport) scales() (float64, float64) {
	sx, sy := v.ScaleX, v.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// ToMosaic returns the mosaic pixel at the center of output pixel (x, y).
func (v Viewport) ToMosaic(x, y int) (float64, float64) {
	sx, sy := v.scales()
	return float64(v.Origin.X) + (float64(x)+0.5)*sx - 0.5,
		float64(v.Origin.Y) + (float64(y)+0.5)*sy - 0.5
}

// edge returns the mosaic pixel whose top-left corner is drawn at the
// top-left corner of output pixel (x, y).
func (v Viewport) edge(x, y int) (int, int) {
	sx, sy := v.scales()
	return v.Origin.X + int(math.Round(float64(x)*sx)), v.Origin.Y + int(math.Round(float64(y)*sy))
}

// ColorOf converts c to a ColorResult.
func ColorOf(c color.Color) ColorResult {
	r, g, b, a := c.RGBA()
	rgba := RGBAColor{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}

	// Samples from BandMerger are not premultiplied, so build the colorful
	// value from the raw channels instead of colorful.MakeColor.
	cf := colorful.Color{R: float64(rgba.R) / 255, G: float64(rgba.G) / 255, B: float64(rgba.B) / 255}
	h, s, l := cf.Hsl()
	if math.IsNaN(h) {
		h = 0
	}

	return ColorResult{
		Hex:         cf.Hex(),
		RGBA:        rgba,
		HSL:         HSLColor{H: int(math.Round(h)) % 360, S: int(math.Round(s * 100)), L: int(math.Round(l * 100))},
		Transparent: rgba.A == 0,
	}
}

// SampleColor returns the color of the rendered pixel at (x, y).
//
// # Errors
//
// Returns an error when (x, y) lies outside img.
func SampleColor(img *image.RGBA, x, y int) (*ColorResult, error) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	c := ColorOf(img.RGBAAt(x, y))
	return &c, nil
}

// ColorFrequency is one quantized color and its share of the opaque pixels.
type ColorFrequency struct {
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
}

// DominantColors returns up to count quantized colors of img sorted by
// frequency. Colors are quantized to 16 levels per channel; transparent
// pixels are ignored.
func DominantColors(img *image.RGBA, count int) []ColorFrequency {
	counts := make(map[colorful.Color]int)
	total := 0

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			q := colorful.Color{
				R: float64(c.R/16*16) / 255,
				G: float64(c.G/16*16) / 255,
				B: float64(c.B/16*16) / 255,
			}
			counts[q]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			Percentage: float64(n) / float64(total) * 100,
		})
	}
	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})
	if count >= 0 && len(colors) > count {
		colors = colors[:count]
	}
	return colors
}
