package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func createRGBA(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestSampleColor_KnownColors(t *testing.T) {
	tests := []struct {
		name        string
		c           color.RGBA
		wantHex     string
		wantHSL     HSLColor
		transparent bool
	}{
		{"red", color.RGBA{255, 0, 0, 255}, "#ff0000", HSLColor{0, 100, 50}, false},
		{"green", color.RGBA{0, 255, 0, 255}, "#00ff00", HSLColor{120, 100, 50}, false},
		{"blue", color.RGBA{0, 0, 255, 255}, "#0000ff", HSLColor{240, 100, 50}, false},
		{"white", color.RGBA{255, 255, 255, 255}, "#ffffff", HSLColor{0, 0, 100}, false},
		{"no data", color.RGBA{0, 0, 0, 0}, "#000000", HSLColor{0, 0, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createRGBA(4, 4, tt.c)
			got, err := SampleColor(img, 2, 3)
			if err != nil {
				t.Fatalf("SampleColor failed: %v", err)
			}
			if got.Hex != tt.wantHex {
				t.Errorf("Hex: got %s, want %s", got.Hex, tt.wantHex)
			}
			if got.HSL != tt.wantHSL {
				t.Errorf("HSL: got %+v, want %+v", got.HSL, tt.wantHSL)
			}
			if got.Transparent != tt.transparent {
				t.Errorf("Transparent: got %v, want %v", got.Transparent, tt.transparent)
			}
			if got.RGBA != (RGBAColor{tt.c.R, tt.c.G, tt.c.B, tt.c.A}) {
				t.Errorf("RGBA: got %+v", got.RGBA)
			}
		})
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	img := createRGBA(10, 10, color.RGBA{A: 255})
	for _, p := range []image.Point{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if _, err := SampleColor(img, p.X, p.Y); err == nil {
			t.Errorf("expected error for %v", p)
		}
	}
}

func TestDominantColors(t *testing.T) {
	img := createRGBA(4, 4, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(0, 0, color.RGBA{0, 0, 255, 255})
	img.SetRGBA(1, 0, color.RGBA{0, 0, 250, 255})
	img.SetRGBA(2, 0, color.RGBA{})
	img.SetRGBA(3, 0, color.RGBA{})

	colors := DominantColors(img, 5)
	if len(colors) != 2 {
		t.Fatalf("got %d colors, want 2: %+v", len(colors), colors)
	}
	if colors[0].Hex != "#f00000" {
		t.Errorf("first color: got %s, want #f00000", colors[0].Hex)
	}
	if math.Abs(colors[0].Percentage-100*12.0/14.0) > 1e-9 {
		t.Errorf("first percentage: got %v", colors[0].Percentage)
	}
	if colors[1].Hex != "#0000f0" {
		t.Errorf("second color: got %s, want #0000f0", colors[1].Hex)
	}

	if got := DominantColors(img, 1); len(got) != 1 {
		t.Errorf("count limit: got %d colors", len(got))
	}
	if got := DominantColors(createRGBA(2, 2, color.RGBA{}), 3); len(got) != 0 {
		t.Errorf("transparent image: got %+v", got)
	}
}

func TestViewport(t *testing.T) {
	vp := NewViewport(100, 50, 200, 100, 100, 50)
	if vp.ScaleX != 2 || vp.ScaleY != 2 {
		t.Fatalf("scale: got %v,%v", vp.ScaleX, vp.ScaleY)
	}
	if x, y := vp.ToMosaic(0, 0); x != 100.5 || y != 50.5 {
		t.Errorf("ToMosaic(0,0): got %v,%v", x, y)
	}
	if x, y := vp.edge(10, 5); x != 120 || y != 60 {
		t.Errorf("edge(10,5): got %v,%v", x, y)
	}

	identity := Viewport{Origin: image.Pt(3, 4)}
	if x, y := identity.ToMosaic(1, 1); x != 4 || y != 5 {
		t.Errorf("zero scale treated as 1: got %v,%v", x, y)
	}
}
