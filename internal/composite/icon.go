package composite

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/bryanchriswhite/i3lockr/internal/logger"
	"github.com/bryanchriswhite/i3lockr/internal/pixbuf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Icon is an image overlaid on each monitor. With Invert set the icon is a
// stencil: its alpha selects which screenshot pixels get negated and its
// colour is never drawn.
type Icon struct {
	Buffer *pixbuf.Buffer
	Invert bool
}

// Size returns the icon dimensions
func (i *Icon) Size() image.Point {
	return image.Pt(i.Buffer.Width, i.Buffer.Height)
}

// LoadIcon decodes an icon file (PNG, JPEG, GIF, BMP, TIFF or WebP)
func LoadIcon(path string, invert bool) (*Icon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open icon: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode icon %s: %w", path, err)
	}

	buf := pixbuf.FromImage(img)
	logger.WithComponent("icon").Debug().
		Str("path", path).
		Str("format", format).
		Int("width", buf.Width).
		Int("height", buf.Height).
		Bool("invert", invert).
		Msg("Icon decoded")

	return &Icon{Buffer: buf, Invert: invert}, nil
}
