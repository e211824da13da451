package memory

import (
	"math"

	"github.com/disintegration/imaging"

	"github.com/Murmeldyret/DUNK/internal/raster"
)

// weight is one tap of a 1-D resampling filter.
type weight struct {
	index  int
	weight float64
}

// filterFor maps a resampling kernel to the imaging filter with the same
// shape. Nearest is handled without a kernel.
func filterFor(alg raster.Resampling) (imaging.ResampleFilter, bool) {
	switch alg {
	case raster.Lanczos:
		return imaging.Lanczos, true
	case raster.Bilinear:
		return imaging.Linear, true
	default:
		return imaging.ResampleFilter{}, false
	}
}

// precomputeWeights returns, for every destination index, the source taps
// contributing to it. The filter is widened when downsampling so that every
// source sample contributes.
func precomputeWeights(dstSize, srcSize int, filter imaging.ResampleFilter) [][]weight {
	du := float64(srcSize) / float64(dstSize)
	scale := du
	if scale < 1.0 {
		scale = 1.0
	}
	ru := math.Ceil(scale * filter.Support)

	out := make([][]weight, dstSize)
	for v := 0; v < dstSize; v++ {
		fu := (float64(v)+0.5)*du - 0.5

		begin := int(math.Ceil(fu - ru))
		if begin < 0 {
			begin = 0
		}
		end := int(math.Floor(fu + ru))
		if end > srcSize-1 {
			end = srcSize - 1
		}

		taps := make([]weight, 0, end-begin+1)
		for u := begin; u <= end; u++ {
			w := filter.Kernel((float64(u) - fu) / scale)
			if w != 0 {
				taps = append(taps, weight{index: u, weight: w})
			}
		}
		out[v] = taps
	}
	return out
}

// convolve applies taps to one line of samples, skipping NaN samples.
func convolve(line []float64, taps []weight) float64 {
	var sum, total float64
	valid := false
	for _, t := range taps {
		s := line[t.index]
		if math.IsNaN(s) {
			continue
		}
		sum += s * t.weight
		total += t.weight
		valid = true
	}
	if !valid || total == 0 {
		return math.NaN()
	}
	return sum / total
}

// resample reads win out of a row-major band of the given width and scales
// it to outWidth x outHeight.
func resample(samples []float32, width int, win raster.Window, outWidth, outHeight int, alg raster.Resampling) []float32 {
	out := make([]float32, outWidth*outHeight)

	if outWidth == win.Width && outHeight == win.Height {
		for y := 0; y < win.Height; y++ {
			row := (win.Y+y)*width + win.X
			copy(out[y*outWidth:(y+1)*outWidth], samples[row:row+win.Width])
		}
		return out
	}

	filter, ok := filterFor(alg)
	if !ok {
		for y := 0; y < outHeight; y++ {
			sy := win.Y + int((float64(y)+0.5)*float64(win.Height)/float64(outHeight))
			for x := 0; x < outWidth; x++ {
				sx := win.X + int((float64(x)+0.5)*float64(win.Width)/float64(outWidth))
				out[y*outWidth+x] = samples[sy*width+sx]
			}
		}
		return out
	}

	// Horizontal pass: win.Height rows of outWidth samples.
	xTaps := precomputeWeights(outWidth, win.Width, filter)
	horizontal := make([][]float64, win.Height)
	line := make([]float64, win.Width)
	for y := 0; y < win.Height; y++ {
		row := (win.Y+y)*width + win.X
		for x := 0; x < win.Width; x++ {
			line[x] = float64(samples[row+x])
		}
		horizontal[y] = make([]float64, outWidth)
		for x := 0; x < outWidth; x++ {
			horizontal[y][x] = convolve(line, xTaps[x])
		}
	}

	// Vertical pass.
	yTaps := precomputeWeights(outHeight, win.Height, filter)
	column := make([]float64, win.Height)
	for x := 0; x < outWidth; x++ {
		for y := 0; y < win.Height; y++ {
			column[y] = horizontal[y][x]
		}
		for y := 0; y < outHeight; y++ {
			out[y*outWidth+x] = float32(convolve(column, yTaps[y]))
		}
	}
	return out
}
