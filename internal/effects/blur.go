package effects

import (
	"fmt"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/bryanchriswhite/i3lockr/internal/pixbuf"
)

// BlurMethod selects the blur kernel
type BlurMethod string

const (
	// BlurBox is a three-pass separable box blur, a close Gaussian approximation
	BlurBox BlurMethod = "box"
	// BlurGaussian is a true Gaussian kernel
	BlurGaussian BlurMethod = "gaussian"
)

// boxPasses is the number of box iterations per axis
const boxPasses = 3

// ParseBlurMethod validates a blur method name; empty selects the box blur
func ParseBlurMethod(s string) (BlurMethod, error) {
	switch BlurMethod(strings.ToLower(strings.TrimSpace(s))) {
	case "", BlurBox:
		return BlurBox, nil
	case BlurGaussian:
		return BlurGaussian, nil
	default:
		return "", fmt.Errorf("unknown blur method %q (use box or gaussian)", s)
	}
}

// MaxRadius caps the effective blur radius. Anything wider than a screen
// already averages the whole region.
const MaxRadius = 1 << 12

// EffectiveRadius scales the configured radius, rounding to the nearest pixel
// and saturating at MaxRadius. Non-finite scales saturate as well.
func EffectiveRadius(radius uint, scale float64) int {
	if radius == 0 || scale <= 0 {
		return 0
	}
	r := math.Round(float64(radius) * scale)
	if math.IsNaN(r) || r > MaxRadius {
		return MaxRadius
	}
	return int(r)
}

// Blur blurs the color channels of the region in place; alpha is kept.
// Pixels outside the region are neither read nor written; samples past the
// region edge replicate the edge pixel.
func Blur(r pixbuf.Region, radius int, method BlurMethod) {
	if radius <= 0 || r.Empty() {
		return
	}
	if radius > MaxRadius {
		radius = MaxRadius
	}

	switch method {
	case BlurGaussian:
		weights := gaussianKernel(radius)
		separable(r, 1, func(out, in []uint8, count int) {
			gaussianLine(out, in, count, weights)
		})
	default:
		separable(r, boxPasses, func(out, in []uint8, count int) {
			boxLine(out, in, count, radius)
		})
	}
}

// lineFilter writes the filtered first count pixels of in to out
type lineFilter func(out, in []uint8, count int)

// separable runs filter over every row, then every column, passes times each
func separable(r pixbuf.Region, passes int, filter lineFilter) {
	w, h := r.Width(), r.Height()
	pix, base := r.Pix()
	stride := r.Stride()

	longest := w
	if h > longest {
		longest = h
	}
	line := make([]uint8, longest*pixbuf.BytesPerPixel)
	out := make([]uint8, longest*pixbuf.BytesPerPixel)

	// Horizontal
	for y := 0; y < h; y++ {
		row := r.Row(y)
		for pass := 0; pass < passes; pass++ {
			copy(line, row)
			filter(out, line, w)
			copy(row, out[:w*pixbuf.BytesPerPixel])
		}
	}

	// Vertical
	for x := 0; x < w; x++ {
		col := base + x*pixbuf.BytesPerPixel
		for i := 0; i < h; i++ {
			copy(line[i*pixbuf.BytesPerPixel:(i+1)*pixbuf.BytesPerPixel], pix[col+i*stride:])
		}
		for pass := 0; pass < passes; pass++ {
			filter(out, line, h)
			copy(line, out[:h*pixbuf.BytesPerPixel])
		}
		for i := 0; i < h; i++ {
			copy(pix[col+i*stride:col+i*stride+pixbuf.BytesPerPixel], line[i*pixbuf.BytesPerPixel:])
		}
	}
}

// gaussianKernel is bild's 1-D Gaussian kernel for radius, normalized
func gaussianKernel(radius int) []float64 {
	length := 2*radius + 1
	k := convolution.NewKernel(length, 1)
	rad := float64(radius)
	for i := 0; i < length; i++ {
		x := float64(i - radius)
		k.Matrix[i] = math.Exp(-(x * x / 4 / rad))
	}

	norm := k.Normalized()
	weights := make([]float64, length)
	for i := range weights {
		weights[i] = norm.At(i, 0)
	}
	return weights
}

// gaussianLine convolves count pixels of in with weights, rounding to the
// nearest value so a constant line stays constant
func gaussianLine(out, in []uint8, count int, weights []float64) {
	radius := len(weights) / 2
	last := count - 1

	for i := 0; i < count; i++ {
		var acc [3]float64
		for k, wt := range weights {
			j := clamp(i+k-radius, 0, last) * pixbuf.BytesPerPixel
			acc[0] += wt * float64(in[j])
			acc[1] += wt * float64(in[j+1])
			acc[2] += wt * float64(in[j+2])
		}
		o := i * pixbuf.BytesPerPixel
		for c := 0; c < 3; c++ {
			out[o+c] = uint8(clamp(int(math.Round(acc[c])), 0, 255))
		}
		out[o+3] = in[o+3]
	}
}

// boxLine averages count pixels of in over a 2*radius+1 window into out using
// a running sum, so the cost does not grow with the radius.
func boxLine(out, in []uint8, count, radius int) {
	window := 2*radius + 1
	half := window / 2
	last := count - 1

	// Window centred on pixel 0: radius+1 copies of in[0], then in[1..radius]
	// with everything past the end replicating in[last]
	var sum [3]int
	inside := radius
	if inside > last {
		inside = last
	}
	for c := 0; c < 3; c++ {
		sum[c] = int(in[c]) * (radius + 1)
		for k := 1; k <= inside; k++ {
			sum[c] += int(in[k*pixbuf.BytesPerPixel+c])
		}
		sum[c] += int(in[last*pixbuf.BytesPerPixel+c]) * (radius - inside)
	}

	for i := 0; i < count; i++ {
		o := i * pixbuf.BytesPerPixel
		for c := 0; c < 3; c++ {
			out[o+c] = uint8((sum[c] + half) / window)
		}
		out[o+3] = in[o+3]
		add := clamp(i+radius+1, 0, last) * pixbuf.BytesPerPixel
		rem := clamp(i-radius, 0, last) * pixbuf.BytesPerPixel
		for c := 0; c < 3; c++ {
			sum[c] += int(in[add+c]) - int(in[rem+c])
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
