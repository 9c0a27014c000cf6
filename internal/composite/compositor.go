// Package composite overlays an icon on every targeted monitor of the
// filtered screenshot.
package composite

import (
	"image"

	"github.com/bryanchriswhite/i3lockr/internal/layout"
	"github.com/bryanchriswhite/i3lockr/internal/logger"
	"github.com/bryanchriswhite/i3lockr/internal/pixbuf"
)

// maskThreshold is the icon alpha at or below which a pixel is outside the
// stencil in invert mode
const maskThreshold = 3

// Compositor blends one icon onto a list of monitors
type Compositor struct {
	Icon      *Icon
	Positions []Position
}

// Placement is where the icon landed on one monitor
type Placement struct {
	Monitor layout.Monitor
	Origin  image.Point
	Drawn   image.Rectangle
}

// Apply draws the icon on each target monitor in order. Target i uses
// position i (see PositionFor). Whatever falls outside a monitor is clipped.
func (c *Compositor) Apply(buf *pixbuf.Buffer, targets []layout.Monitor) []Placement {
	if c.Icon == nil || c.Icon.Buffer == nil {
		return nil
	}

	log := logger.WithComponent("composite")
	size := c.Icon.Size()
	placements := make([]Placement, 0, len(targets))

	for i, m := range targets {
		if size.X > m.Rect.Dx() || size.Y > m.Rect.Dy() {
			log.Warn().
				Int("monitor", m.Index).
				Str("icon", size.String()).
				Str("monitor_size", m.Rect.Size().String()).
				Msg("Icon is larger than the monitor, it will be clipped")
		}

		pos := PositionFor(c.Positions, i)
		origin := pos.Resolve(m.Rect, size)
		drawn := Draw(buf, m.Rect, c.Icon, origin)

		log.Debug().
			Int("monitor", m.Index).
			Str("position", pos.String()).
			Str("origin", origin.String()).
			Str("drawn", drawn.String()).
			Msg("Icon placed")

		placements = append(placements, Placement{Monitor: m, Origin: origin, Drawn: drawn})
	}

	return placements
}

// Draw blends icon onto buf with its top-left at origin, touching only pixels
// inside clip. It returns the rectangle actually written.
//
// Pixels are alpha-premultiplied (as in image.RGBA), so normal mode is the
// Porter-Duff "over" operator: icon + bg*(255-a)/255.
func Draw(buf *pixbuf.Buffer, clip image.Rectangle, icon *Icon, origin image.Point) image.Rectangle {
	src := icon.Buffer
	area := src.Bounds().Add(origin).Intersect(clip).Intersect(buf.Bounds())
	if area.Empty() {
		return image.Rectangle{}
	}

	for y := area.Min.Y; y < area.Max.Y; y++ {
		d := buf.Offset(area.Min.X, y)
		s := src.Offset(area.Min.X-origin.X, y-origin.Y)
		for x := area.Min.X; x < area.Max.X; x++ {
			a := int(src.Pix[s+3])
			if icon.Invert {
				if a > maskThreshold {
					for c := 0; c < 3; c++ {
						bg := int(buf.Pix[d+c])
						buf.Pix[d+c] = uint8(((255-bg)*a + bg*(255-a) + 127) / 255)
					}
				}
			} else if a > 0 {
				for c := 0; c < 3; c++ {
					fg := int(src.Pix[s+c])
					bg := int(buf.Pix[d+c])
					v := (fg*255 + bg*(255-a) + 127) / 255
					if v > 255 {
						v = 255
					}
					buf.Pix[d+c] = uint8(v)
				}
			}
			d += pixbuf.BytesPerPixel
			s += pixbuf.BytesPerPixel
		}
	}

	return area
}
