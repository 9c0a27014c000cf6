// Package pixbuf holds the RGBA raster passed between capture, filters,
// compositing and the locker.
package pixbuf

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// BytesPerPixel is the size of one RGBA8 pixel
const BytesPerPixel = 4

// Buffer is a row-major RGBA8 raster with a top-left origin.
// len(Pix) is always Width*Height*BytesPerPixel.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a zeroed (transparent black) buffer
func New(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*BytesPerPixel),
	}
}

// FromPix wraps existing RGBA bytes without copying
func FromPix(width, height int, pix []uint8) (*Buffer, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid buffer size %dx%d", width, height)
	}
	if len(pix) != width*height*BytesPerPixel {
		return nil, fmt.Errorf("pixel data length %d does not match %dx%d", len(pix), width, height)
	}
	return &Buffer{Width: width, Height: height, Pix: pix}, nil
}

// FromImage converts any image into a buffer whose origin is the image's Min point
func FromImage(img image.Image) *Buffer {
	b := img.Bounds()

	// Tightly packed RGBA can be taken over as is
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == b.Dx()*BytesPerPixel && len(rgba.Pix) == b.Dx()*b.Dy()*BytesPerPixel {
		return &Buffer{Width: b.Dx(), Height: b.Dy(), Pix: rgba.Pix}
	}

	buf := New(b.Dx(), b.Dy())
	draw.Draw(buf.RGBA(), buf.Bounds(), img, b.Min, draw.Src)
	return buf
}

// Bounds returns the buffer rectangle, always anchored at (0,0)
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// Stride is the byte length of one row
func (b *Buffer) Stride() int {
	return b.Width * BytesPerPixel
}

// Offset returns the index of pixel (x, y) in Pix
func (b *Buffer) Offset(x, y int) int {
	return y*b.Stride() + x*BytesPerPixel
}

// RGBA returns an image.RGBA sharing the buffer's pixel storage
func (b *Buffer) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Stride(),
		Rect:   b.Bounds(),
	}
}

// Clone returns a deep copy
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Fill paints every pixel of rect (clipped to the buffer) with one colour
func (b *Buffer) Fill(rect image.Rectangle, r, g, bl, a uint8) {
	rect = rect.Intersect(b.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		i := b.Offset(rect.Min.X, y)
		for x := rect.Min.X; x < rect.Max.X; x++ {
			b.Pix[i] = r
			b.Pix[i+1] = g
			b.Pix[i+2] = bl
			b.Pix[i+3] = a
			i += BytesPerPixel
		}
	}
}

// At returns the RGBA components of pixel (x, y)
func (b *Buffer) At(x, y int) (r, g, bl, a uint8) {
	i := b.Offset(x, y)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}
