package pixbuf

import "image"

// Region is a write-confined view of a rectangle inside a shared Buffer.
// Filters running on disjoint regions of the same buffer never touch each
// other's pixels, so they can run concurrently without locking.
type Region struct {
	buf  *Buffer
	rect image.Rectangle
}

// Region returns a view of rect clipped to the buffer bounds
func (b *Buffer) Region(rect image.Rectangle) Region {
	return Region{buf: b, rect: rect.Intersect(b.Bounds())}
}

// Rect is the region's rectangle in buffer coordinates
func (r Region) Rect() image.Rectangle {
	return r.rect
}

// Empty reports whether the region has no pixels
func (r Region) Empty() bool {
	return r.rect.Empty()
}

// Width of the region in pixels
func (r Region) Width() int {
	return r.rect.Dx()
}

// Height of the region in pixels
func (r Region) Height() int {
	return r.rect.Dy()
}

// Row returns the bytes of region row y (0-based within the region).
// The slice is capped so appends cannot spill into pixels outside the rect.
func (r Region) Row(y int) []uint8 {
	start := r.buf.Offset(r.rect.Min.X, r.rect.Min.Y+y)
	end := start + r.rect.Dx()*BytesPerPixel
	return r.buf.Pix[start:end:end]
}

// Stride is the distance in bytes between vertically adjacent pixels
func (r Region) Stride() int {
	return r.buf.Stride()
}

// Pix exposes the backing storage together with the index of the region's
// first pixel. Callers must restrict writes to the region's rows.
func (r Region) Pix() ([]uint8, int) {
	return r.buf.Pix, r.buf.Offset(r.rect.Min.X, r.rect.Min.Y)
}
