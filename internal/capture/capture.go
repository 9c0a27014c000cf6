package capture

import (
	"context"
	"errors"
	"image"

	"github.com/bryanchriswhite/i3lockr/internal/layout"
	"github.com/bryanchriswhite/i3lockr/internal/pixbuf"
)

// ErrNoBackend is returned when no capture backend can be used
var ErrNoBackend = errors.New("no capture backend available")

// Frame is one screenshot of the whole virtual screen
type Frame struct {
	// Image holds the pixels; its (0,0) is Origin in global coordinates
	Image *pixbuf.Buffer

	// Origin is the global screen coordinate of the image's top-left pixel
	Origin image.Point

	// Displays are the physical outputs in enumeration order
	Displays []layout.Display
}

// Capturer defines the interface for screen capture backends
type Capturer interface {
	// Start initializes the capturer and any required resources
	Start() error

	// Stop releases resources
	Stop() error

	// Capture grabs the full virtual screen and the monitor geometry
	Capture(ctx context.Context) (*Frame, error)

	// Displays lists the physical outputs without capturing pixels
	Displays(ctx context.Context) ([]layout.Display, error)

	// Name returns a human-readable name for this capturer
	Name() string

	// IsAvailable checks if this capturer can be used in the current environment
	IsAvailable() bool
}
