package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/bryanchriswhite/i3lockr/internal/capture"
	"github.com/bryanchriswhite/i3lockr/internal/composite"
	"github.com/bryanchriswhite/i3lockr/internal/effects"
	"github.com/bryanchriswhite/i3lockr/internal/locker"
)

// MaxBlur is the largest accepted blur radius
const MaxBlur = 255

// ValidationError is a configuration problem found before any work is done
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks every option. It returns the first problem found.
func (c *Config) Validate() error {
	if c.Blur > MaxBlur {
		return invalid("blur", "%d is out of range [0, %d]", c.Blur, MaxBlur)
	}
	if math.IsNaN(c.Scale) || math.IsInf(c.Scale, 0) || c.Scale < 1.0 {
		return invalid("scale", "%v must be a finite number of at least 1.0", c.Scale)
	}
	if r := math.Round(float64(c.Blur) * c.Scale); r > effects.MaxRadius {
		return invalid("scale", "blur %d scaled by %v exceeds the maximum radius %d", c.Blur, c.Scale, effects.MaxRadius)
	}
	if _, err := effects.ParseBlurMethod(c.BlurMethod); err != nil {
		return invalid("blur_method", "%v", err)
	}

	if c.Brighten != nil && c.Darken != nil {
		return invalid("brightness", "--brighten and --darken cannot be used together")
	}
	if c.Brighten != nil && (*c.Brighten < 1 || *c.Brighten > 255) {
		return invalid("brighten", "%d is out of range [1, 255]", *c.Brighten)
	}
	if c.Darken != nil && (*c.Darken < 1 || *c.Darken > 255) {
		return invalid("darken", "%d is out of range [1, 255]", *c.Darken)
	}

	for _, i := range c.IgnoreMonitors {
		if i < 0 {
			return invalid("ignore_monitors", "monitor index %d is negative", i)
		}
	}

	if c.Icon == "" {
		if len(c.Positions) > 0 {
			return invalid("position", "has no effect without --icon")
		}
		if c.Invert {
			return invalid("invert", "has no effect without --icon")
		}
	}
	if _, err := c.ParsedPositions(); err != nil {
		return invalid("position", "%v", err)
	}

	if _, err := capture.ParseBackend(c.Backend); err != nil {
		return invalid("backend", "%v", err)
	}
	if _, err := locker.ParseImageFormat(c.Locker.ImageFormat); err != nil {
		return invalid("image_format", "%v", err)
	}

	return nil
}

// ParsedPositions converts the position strings into placements
func (c *Config) ParsedPositions() ([]composite.Position, error) {
	out := make([]composite.Position, 0, len(c.Positions))
	for _, s := range c.Positions {
		p, err := composite.ParsePosition(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
