package locker

import (
	"fmt"
	"image/png"
	"io"

	"github.com/bryanchriswhite/i3lockr/internal/pixbuf"
)

// ImageFormat is how the final buffer is handed to the locker
type ImageFormat string

const (
	// FormatRaw streams native-endian 32bpp pixels on stdin (i3lock --raw)
	FormatRaw ImageFormat = "raw"
	// FormatPNG writes a temporary PNG and passes its path
	FormatPNG ImageFormat = "png"
)

// ParseImageFormat validates a format name; empty selects raw
func ParseImageFormat(s string) (ImageFormat, error) {
	switch ImageFormat(s) {
	case "", FormatRaw:
		return FormatRaw, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q (use raw or png)", s)
	}
}

// RawSpec is the value of i3lock's --raw option for the buffer
func RawSpec(buf *pixbuf.Buffer) string {
	return fmt.Sprintf("%dx%d:native", buf.Width, buf.Height)
}

// EncodeBGRX converts RGBA pixels to the little-endian xRGB layout i3lock
// reads for "native" raw images: bytes B, G, R, X per pixel, no row padding.
func EncodeBGRX(buf *pixbuf.Buffer) []byte {
	data := make([]byte, len(buf.Pix))
	for i := 0; i < len(buf.Pix); i += pixbuf.BytesPerPixel {
		data[i] = buf.Pix[i+2]   // B
		data[i+1] = buf.Pix[i+1] // G
		data[i+2] = buf.Pix[i]   // R
		data[i+3] = 0            // X
	}
	return data
}

// WriteRaw streams the BGRX encoding of buf to w
func WriteRaw(w io.Writer, buf *pixbuf.Buffer) error {
	if _, err := w.Write(EncodeBGRX(buf)); err != nil {
		return fmt.Errorf("failed to write raw image: %w", err)
	}
	return nil
}

// WritePNG encodes buf as PNG
func WritePNG(w io.Writer, buf *pixbuf.Buffer) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, buf.RGBA()); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
