package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultGridColor is used when GridOptions.ColorHex is empty or invalid.
var DefaultGridColor = color.RGBA{255, 0, 0, 255}

// GridOptions configures GridOverlay.
type GridOptions struct {
	// Spacing is the distance between grid lines in output pixels.
	Spacing int

	// ShowCoordinates labels each intersection with its mosaic pixel
	// coordinate.
	ShowCoordinates bool

	// ColorHex is the line color as "#rrggbb".
	ColorHex string
}

// GridOverlay returns a copy of img with grid lines every opts.Spacing output
// pixels. Labels are mosaic pixel coordinates computed through vp.
//
// # Errors
//
// Returns an error when opts.Spacing is not positive.
func GridOverlay(img image.Image, vp Viewport, opts GridOptions) (*image.RGBA, error) {
	if opts.Spacing <= 0 {
		return nil, fmt.Errorf("grid spacing must be positive, got %d", opts.Spacing)
	}

	lineColor := DefaultGridColor
	if c, err := colorful.Hex(opts.ColorHex); err == nil {
		r, g, b := c.RGB255()
		lineColor = color.RGBA{r, g, b, 255}
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	result := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	for x := opts.Spacing; x < width; x += opts.Spacing {
		for y := 0; y < height; y++ {
			result.SetRGBA(x, y, lineColor)
		}
	}
	for y := opts.Spacing; y < height; y += opts.Spacing {
		for x := 0; x < width; x++ {
			result.SetRGBA(x, y, lineColor)
		}
	}

	if opts.ShowCoordinates {
		fg := color.RGBA{255, 255, 255, 255}
		bg := color.RGBA{0, 0, 0, 180}
		for y := opts.Spacing; y < height; y += opts.Spacing {
			for x := opts.Spacing; x < width; x += opts.Spacing {
				mx, my := vp.edge(x, y)
				drawLabel(result, x+2, y+2, fmt.Sprintf("%d,%d", mx, my), fg, bg)
			}
		}
	}

	return result, nil
}

// drawLabel draws text with a 3x5 pixel digit font.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
		'-': {"000", "000", "111", "000", "000"},
	}

	bounds := img.Bounds()
	in := func(px, py int) bool { return image.Pt(px, py).In(bounds) }
	const charWidth, labelHeight = 4, 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < len(text)*charWidth; dx++ {
			if in(x+dx, y+dy) {
				img.SetRGBA(x+dx, y+dy, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, bit := range line {
				if bit == '1' && in(cx+col, y+row) {
					img.SetRGBA(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
