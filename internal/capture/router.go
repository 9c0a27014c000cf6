package capture

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bryanchriswhite/i3lockr/internal/layout"
	"github.com/bryanchriswhite/i3lockr/internal/logger"
)

// Backend names accepted by NewRouter
const (
	BackendAuto       = "auto"
	BackendX11        = "x11"
	BackendScreenshot = "screenshot"
)

// ParseBackend validates a backend name; empty selects auto
func ParseBackend(s string) (string, error) {
	switch b := strings.ToLower(strings.TrimSpace(s)); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendX11, BackendScreenshot:
		return b, nil
	default:
		return "", fmt.Errorf("unknown capture backend %q (use auto, x11 or screenshot)", s)
	}
}

// Router picks a capture backend and forwards calls to it
type Router struct {
	backend string
	active  Capturer
	mu      sync.RWMutex
}

// NewRouter creates a new capture router for the named backend
func NewRouter(backend string) (*Router, error) {
	b, err := ParseBackend(backend)
	if err != nil {
		return nil, err
	}
	return &Router{backend: b}, nil
}

// Start initializes the first usable backend. Auto prefers X11.
func (r *Router) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return nil
	}

	log := logger.WithComponent("capture-router")

	if r.backend == BackendAuto || r.backend == BackendX11 {
		x11, err := NewX11Capturer()
		if err != nil {
			log.Warn().Err(err).Msg("X11 capturer not available")
		} else if err := x11.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start X11 capturer")
			x11.Stop()
		} else {
			r.active = x11
			log.Debug().Msg("X11 capturer initialized")
			return nil
		}
	}

	if r.backend == BackendAuto || r.backend == BackendScreenshot {
		sc := NewScreenCapturer()
		if sc.IsAvailable() {
			if err := sc.Start(); err != nil {
				return fmt.Errorf("failed to start screenshot capturer: %w", err)
			}
			r.active = sc
			log.Debug().Msg("Screenshot capturer initialized")
			return nil
		}
		log.Warn().Msg("Screenshot capturer found no active displays")
	}

	return fmt.Errorf("%w (requested %q)", ErrNoBackend, r.backend)
}

// Stop stops the active capturer
func (r *Router) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return nil
	}
	err := r.active.Stop()
	r.active = nil
	return err
}

func (r *Router) current() (Capturer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == nil {
		return nil, ErrNoBackend
	}
	return r.active, nil
}

// Capture captures the screen with the active backend
func (r *Router) Capture(ctx context.Context) (*Frame, error) {
	c, err := r.current()
	if err != nil {
		return nil, err
	}
	return c.Capture(ctx)
}

// Displays lists monitors with the active backend
func (r *Router) Displays(ctx context.Context) ([]layout.Display, error) {
	c, err := r.current()
	if err != nil {
		return nil, err
	}
	return c.Displays(ctx)
}

// Name returns the active backend's name, or the requested one before Start
func (r *Router) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active != nil {
		return r.active.Name()
	}
	return r.backend
}

// IsAvailable returns true once a backend has been started
func (r *Router) IsAvailable() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active != nil
}
