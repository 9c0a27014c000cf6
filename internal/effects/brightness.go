package effects

import "github.com/bryanchriswhite/i3lockr/internal/pixbuf"

// Brightness shifts the RGB channels of every pixel in the region by delta,
// saturating at 0 and 255. Alpha is left alone.
func Brightness(r pixbuf.Region, delta int) {
	if delta == 0 || r.Empty() {
		return
	}

	var lut [256]uint8
	for i := range lut {
		lut[i] = uint8(clamp(i+delta, 0, 255))
	}

	for y := 0; y < r.Height(); y++ {
		row := r.Row(y)
		for i := 0; i < len(row); i += pixbuf.BytesPerPixel {
			row[i] = lut[row[i]]
			row[i+1] = lut[row[i+1]]
			row[i+2] = lut[row[i+2]]
		}
	}
}
