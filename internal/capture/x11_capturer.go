package capture

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/bryanchriswhite/i3lockr/internal/layout"
	"github.com/bryanchriswhite/i3lockr/internal/logger"
	"github.com/bryanchriswhite/i3lockr/internal/pixbuf"
)

// X11Capturer grabs the root window of the default X screen
type X11Capturer struct {
	conn         *xgb.Conn
	root         xproto.Window
	screen       *xproto.ScreenInfo
	randrEnabled bool
	mu           sync.Mutex
}

// NewX11Capturer creates a new X11 capturer
func NewX11Capturer() (*X11Capturer, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	c := &X11Capturer{
		conn:   conn,
		root:   screen.Root,
		screen: screen,
	}

	return c, nil
}

// Start initializes the RandR extension used for monitor discovery
func (c *X11Capturer) Start() error {
	log := logger.WithComponent("x11-capturer")

	if err := randr.Init(c.conn); err != nil {
		log.Warn().
			Err(err).
			Msg("RandR extension not available - treating the screen as a single monitor")
		c.randrEnabled = false
	} else {
		c.randrEnabled = true
		log.Debug().Msg("RandR extension initialized")
	}

	return nil
}

// Stop closes the X11 connection
func (c *X11Capturer) Stop() error {
	c.conn.Close()
	return nil
}

// Name returns the capturer name
func (c *X11Capturer) Name() string {
	return "x11"
}

// IsAvailable checks if X11 capture is available
func (c *X11Capturer) IsAvailable() bool {
	return c.conn != nil
}

// Capture grabs the whole root window
func (c *X11Capturer) Capture(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	displays, err := c.Displays(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	width := int(c.screen.WidthInPixels)
	height := int(c.screen.HeightInPixels)

	reply, err := xproto.GetImage(
		c.conn,
		xproto.ImageFormatZPixmap,
		xproto.Drawable(c.root),
		0, 0,
		uint16(width), uint16(height),
		0xffffffff,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	buf, err := c.convertImageData(reply.Data, width, height)
	if err != nil {
		return nil, err
	}

	logger.WithComponent("x11-capturer").Debug().
		Int("width", width).
		Int("height", height).
		Int("bytes", len(reply.Data)).
		Int("monitors", len(displays)).
		Msg("Captured root window")

	return &Frame{Image: buf, Displays: displays}, nil
}

// Displays lists active CRTCs in RandR enumeration order. Each keeps its
// index among all CRTCs, disabled ones included.
func (c *X11Capturer) Displays(ctx context.Context) ([]layout.Display, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.randrEnabled {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	log := logger.WithComponent("x11-capturer")

	resources, err := randr.GetScreenResources(c.conn, c.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	displays := make([]layout.Display, 0, len(resources.Crtcs))
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			log.Debug().Err(err).Uint32("crtc", uint32(crtc)).Msg("Skipping unreadable CRTC")
			continue
		}
		// Disabled CRTC
		if info.Mode == 0 {
			continue
		}

		name := fmt.Sprintf("crtc-%d", crtc)
		if len(info.Outputs) > 0 {
			out, err := randr.GetOutputInfo(c.conn, info.Outputs[0], resources.ConfigTimestamp).Reply()
			if err == nil && len(out.Name) > 0 {
				name = string(out.Name)
			}
		}

		displays = append(displays, layout.Display{
			Index: i,
			Name:  name,
			Bounds: image.Rect(
				int(info.X), int(info.Y),
				int(info.X)+int(info.Width), int(info.Y)+int(info.Height),
			),
		})
	}

	return displays, nil
}

// convertImageData converts ZPixmap BGRx data into an opaque RGBA buffer
func (c *X11Capturer) convertImageData(data []byte, width, height int) (*pixbuf.Buffer, error) {
	depth := int(c.screen.RootDepth)
	if depth != 24 && depth != 32 {
		return nil, fmt.Errorf("unsupported color depth: %d", depth)
	}
	if len(data) < width*height*pixbuf.BytesPerPixel {
		return nil, fmt.Errorf("short image data: got %d bytes for %dx%d", len(data), width, height)
	}

	buf := pixbuf.New(width, height)
	for i := 0; i < len(buf.Pix); i += pixbuf.BytesPerPixel {
		// BGRA to RGBA
		buf.Pix[i] = data[i+2]
		buf.Pix[i+1] = data[i+1]
		buf.Pix[i+2] = data[i]
		buf.Pix[i+3] = 255
	}

	return buf, nil
}
