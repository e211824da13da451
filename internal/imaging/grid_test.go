package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestGridOverlay_Lines(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	img := createRGBA(30, 30, white)

	tests := []struct {
		name string
		hex  string
		want color.RGBA
	}{
		{"custom color", "#00ff00", color.RGBA{0, 255, 0, 255}},
		{"invalid color", "green", DefaultGridColor},
		{"empty color", "", DefaultGridColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := GridOverlay(img, Viewport{}, GridOptions{Spacing: 10, ColorHex: tt.hex})
			if err != nil {
				t.Fatalf("GridOverlay failed: %v", err)
			}
			if got := out.RGBAAt(10, 5); got != tt.want {
				t.Errorf("vertical line: got %v, want %v", got, tt.want)
			}
			if got := out.RGBAAt(5, 20); got != tt.want {
				t.Errorf("horizontal line: got %v, want %v", got, tt.want)
			}
			if got := out.RGBAAt(5, 5); got != white {
				t.Errorf("cell interior: got %v, want white", got)
			}
		})
	}

	if img.RGBAAt(10, 5) != white {
		t.Error("GridOverlay must not modify its input")
	}
}

func TestGridOverlay_Labels(t *testing.T) {
	img := createRGBA(40, 40, color.RGBA{255, 255, 255, 255})
	vp := Viewport{Origin: image.Pt(100, 200), ScaleX: 1, ScaleY: 1}

	out, err := GridOverlay(img, vp, GridOptions{Spacing: 20, ShowCoordinates: true})
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}
	// Label background starts one pixel up-left of (22,22).
	if got := out.RGBAAt(21, 21); got != (color.RGBA{0, 0, 0, 180}) {
		t.Errorf("label background: got %v", got)
	}
}

func TestGridOverlay_InvalidSpacing(t *testing.T) {
	img := createRGBA(4, 4, color.RGBA{A: 255})
	for _, s := range []int{0, -5} {
		if _, err := GridOverlay(img, Viewport{}, GridOptions{Spacing: s}); err == nil {
			t.Errorf("spacing %d: expected error", s)
		}
	}
}

func TestDrawLabel_ClipsAtBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 5))
	// Must not panic when the label runs off the image.
	drawLabel(img, 3, 3, "1234,-5", color.RGBA{255, 255, 255, 255}, color.RGBA{A: 255})
	drawLabel(img, 0, 0, "", color.RGBA{}, color.RGBA{})
}
