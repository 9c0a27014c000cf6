package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bryanchriswhite/i3lockr/internal/logger"
	"gopkg.in/yaml.v3"
)

// Config represents the resolved configuration for one run
type Config struct {
	// Blur radius in pixels before scaling; 0 disables blurring
	Blur uint `json:"blur" yaml:"blur"`

	// Scale multiplies the blur radius
	Scale float64 `json:"scale" yaml:"scale"`

	// BlurMethod is "box" or "gaussian"
	BlurMethod string `json:"blur_method" yaml:"blur_method"`

	// Brighten and Darken are mutually exclusive, each 1-255
	Brighten *int `json:"brighten,omitempty" yaml:"brighten,omitempty"`
	Darken   *int `json:"darken,omitempty" yaml:"darken,omitempty"`

	// IgnoreMonitors are monitor indices that get no icon
	IgnoreMonitors []int `json:"ignore_monitors" yaml:"ignore_monitors"`

	Icon      string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	Invert    bool     `json:"invert" yaml:"invert"`
	Positions []string `json:"positions,omitempty" yaml:"positions,omitempty"`

	// Backend selects the capture backend: auto, x11 or screenshot
	Backend string `json:"backend" yaml:"backend"`

	Locker LockerConfig `json:"locker" yaml:"locker"`

	LogLevel string `json:"log_level" yaml:"log_level"`
	Verbose  bool   `json:"verbose" yaml:"verbose"`
}

// LockerConfig describes how the locker is started
type LockerConfig struct {
	Command     string   `json:"command" yaml:"command"`
	ImageFormat string   `json:"image_format" yaml:"image_format"`
	Args        []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		Scale:          1.0,
		BlurMethod:     "box",
		IgnoreMonitors: []int{},
		Backend:        "auto",
		Locker: LockerConfig{
			Command:     "i3lock",
			ImageFormat: "raw",
		},
		LogLevel: "warn",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/i3lockr/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "i3lockr", "config.yaml"), nil
}

// Load reads configuration from path on top of the defaults. With an empty
// path the default location is tried and a missing file is not an error.
// The file is never written.
func Load(path string) (*Config, string, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Defaults(), "", nil
		}
		path = p
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			logger.WithComponent("config").Debug().
				Str("path", path).
				Msg("No config file, using defaults")
			return cfg, "", nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.IgnoreMonitors == nil {
		cfg.IgnoreMonitors = []int{}
	}

	logger.WithComponent("config").Debug().
		Str("path", path).
		Msg("Config loaded")

	return cfg, path, nil
}

// BrightnessDelta collapses brighten/darken into one signed delta.
// Validate must have passed.
func (c *Config) BrightnessDelta() int {
	switch {
	case c.Brighten != nil:
		return *c.Brighten
	case c.Darken != nil:
		return -*c.Darken
	default:
		return 0
	}
}

// IgnoreSet returns the ignored monitor indices as a set
func (c *Config) IgnoreSet() map[int]bool {
	set := make(map[int]bool, len(c.IgnoreMonitors))
	for _, i := range c.IgnoreMonitors {
		set[i] = true
	}
	return set
}

// SortedIgnore returns the ignored indices sorted and de-duplicated
func (c *Config) SortedIgnore() []int {
	set := c.IgnoreSet()
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
