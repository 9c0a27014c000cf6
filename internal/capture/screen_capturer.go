package capture

import (
	"context"
	"fmt"
	"image"
	"strconv"

	"github.com/bryanchriswhite/i3lockr/internal/layout"
	"github.com/bryanchriswhite/i3lockr/internal/logger"
	"github.com/bryanchriswhite/i3lockr/internal/pixbuf"
	"github.com/kbinani/screenshot"
)

// ScreenCapturer captures through github.com/kbinani/screenshot. It is the
// fallback when talking to X directly is not possible.
type ScreenCapturer struct{}

// NewScreenCapturer creates a new screenshot-library capturer
func NewScreenCapturer() *ScreenCapturer {
	return &ScreenCapturer{}
}

func (c *ScreenCapturer) Start() error { return nil }

func (c *ScreenCapturer) Stop() error { return nil }

// Name returns the capturer name
func (c *ScreenCapturer) Name() string {
	return "screenshot"
}

// IsAvailable reports whether any display is active
func (c *ScreenCapturer) IsAvailable() bool {
	return screenshot.NumActiveDisplays() > 0
}

// Displays lists active displays in library order
func (c *ScreenCapturer) Displays(ctx context.Context) ([]layout.Display, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := screenshot.NumActiveDisplays()
	displays := make([]layout.Display, 0, n)
	for i := 0; i < n; i++ {
		displays = append(displays, layout.Display{
			Index:  i,
			Name:   "display-" + strconv.Itoa(i),
			Bounds: screenshot.GetDisplayBounds(i),
		})
	}
	return displays, nil
}

// Capture grabs the bounding box of all displays in one shot
func (c *ScreenCapturer) Capture(ctx context.Context) (*Frame, error) {
	displays, err := c.Displays(ctx)
	if err != nil {
		return nil, err
	}
	if len(displays) == 0 {
		return nil, fmt.Errorf("no active displays")
	}

	var union image.Rectangle
	for _, d := range displays {
		union = union.Union(d.Bounds)
	}

	img, err := screenshot.CaptureRect(union)
	if err != nil {
		return nil, fmt.Errorf("failed to capture %v: %w", union, err)
	}

	logger.WithComponent("screen-capturer").Debug().
		Str("bounds", union.String()).
		Int("monitors", len(displays)).
		Msg("Captured virtual screen")

	buf := pixbuf.FromImage(img)
	// Screenshots are opaque regardless of what the platform reports
	for i := 3; i < len(buf.Pix); i += pixbuf.BytesPerPixel {
		buf.Pix[i] = 255
	}

	return &Frame{Image: buf, Origin: union.Min, Displays: displays}, nil
}
