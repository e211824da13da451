package raster

import (
	"errors"
	"reflect"
	"testing"
)

func TestWindow_Valid(t *testing.T) {
	tests := []struct {
		name string
		win  Window
		want bool
	}{
		{"full raster", Window{0, 0, 10, 8}, true},
		{"inner", Window{2, 3, 4, 4}, true},
		{"touches edge", Window{6, 4, 4, 4}, true},
		{"past right edge", Window{7, 0, 4, 4}, false},
		{"past bottom edge", Window{0, 5, 4, 4}, false},
		{"negative origin", Window{-1, 0, 4, 4}, false},
		{"zero width", Window{0, 0, 0, 4}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.win.Valid(10, 8); got != tt.want {
				t.Errorf("Valid: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCOGProfile(t *testing.T) {
	p := COGProfile()
	if p.Driver != "COG" {
		t.Errorf("Driver: got %s, want COG", p.Driver)
	}

	want := []string{"BIGTIFF=YES", "COMPRESS=ZSTD", "NUM_THREADS=ALL_CPUS", "PREDICTOR=YES"}
	if got := p.OptionStrings(); !reflect.DeepEqual(got, want) {
		t.Errorf("OptionStrings: got %v, want %v", got, want)
	}
}

func TestErrorf_WrapsBackend(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Errorf("open %s: %w", "a.tif", cause)

	if !errors.Is(err, ErrBackend) {
		t.Error("Errorf result should wrap ErrBackend")
	}
	if !errors.Is(err, cause) {
		t.Error("Errorf result should wrap the cause")
	}
	if !errors.Is(ErrUnavailable, ErrBackend) {
		t.Error("ErrUnavailable should wrap ErrBackend")
	}
}

func TestResampling_String(t *testing.T) {
	if Lanczos.String() != "lanczos" {
		t.Errorf("Lanczos.String(): got %s", Lanczos.String())
	}
	if Resampling(42).String() != "resampling(42)" {
		t.Errorf("unknown resampling: got %s", Resampling(42).String())
	}
}
