package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/bryanchriswhite/i3lockr/internal/composite"
)

func intPtr(v int) *int { return &v }

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"blur at max", func(c *Config) { c.Blur = MaxBlur }, ""},
		{"blur too large", func(c *Config) { c.Blur = MaxBlur + 1 }, "blur"},
		{"scale below one", func(c *Config) { c.Scale = 0.5 }, "scale"},
		{"scale NaN", func(c *Config) { c.Blur = 10; c.Scale = math.NaN() }, "scale"},
		{"scale infinite", func(c *Config) { c.Blur = 10; c.Scale = math.Inf(1) }, "scale"},
		{"scale overflows radius", func(c *Config) { c.Blur = 10; c.Scale = 1e18 }, "scale"},
		{"scaled radius at max", func(c *Config) { c.Blur = 128; c.Scale = 32 }, ""},
		{"huge scale without blur", func(c *Config) { c.Scale = 1e18 }, ""},
		{"unknown blur method", func(c *Config) { c.BlurMethod = "motion" }, "blur_method"},
		{"brighten and darken", func(c *Config) { c.Brighten = intPtr(10); c.Darken = intPtr(10) }, "brightness"},
		{"brighten zero", func(c *Config) { c.Brighten = intPtr(0) }, "brighten"},
		{"brighten too large", func(c *Config) { c.Brighten = intPtr(256) }, "brighten"},
		{"darken negative", func(c *Config) { c.Darken = intPtr(-3) }, "darken"},
		{"darken ok", func(c *Config) { c.Darken = intPtr(255) }, ""},
		{"negative ignore", func(c *Config) { c.IgnoreMonitors = []int{-1} }, "ignore_monitors"},
		{"position without icon", func(c *Config) { c.Positions = []string{"10,10"} }, "position"},
		{"invert without icon", func(c *Config) { c.Invert = true }, "invert"},
		{"bad position", func(c *Config) { c.Icon = "lock.png"; c.Positions = []string{"10"} }, "position"},
		{"icon with positions", func(c *Config) { c.Icon = "lock.png"; c.Positions = []string{"10,10", "-20,-20"} }, ""},
		{"bad backend", func(c *Config) { c.Backend = "wayland" }, "backend"},
		{"bad image format", func(c *Config) { c.Locker.ImageFormat = "gif" }, "image_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %s error", tt.field)
			}
			v, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("error %T is not a ValidationError", err)
			}
			if v.Field != tt.field {
				t.Fatalf("field = %q, want %q (%v)", v.Field, tt.field, err)
			}
			if !IsValidationError(err) {
				t.Fatal("IsValidationError returned false")
			}
		})
	}
}

func TestBrightnessDelta(t *testing.T) {
	cfg := Defaults()
	if cfg.BrightnessDelta() != 0 {
		t.Fatal("default delta should be 0")
	}
	cfg.Brighten = intPtr(15)
	if cfg.BrightnessDelta() != 15 {
		t.Fatalf("brighten delta = %d", cfg.BrightnessDelta())
	}
	cfg.Brighten = nil
	cfg.Darken = intPtr(40)
	if cfg.BrightnessDelta() != -40 {
		t.Fatalf("darken delta = %d", cfg.BrightnessDelta())
	}
}

func TestIgnoreSet(t *testing.T) {
	cfg := Defaults()
	cfg.IgnoreMonitors = []int{2, 0, 2}
	set := cfg.IgnoreSet()
	if !set[0] || !set[2] || set[1] {
		t.Fatalf("set = %v", set)
	}
	if got := cfg.SortedIgnore(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("sorted = %v", got)
	}
}

func TestParsedPositions(t *testing.T) {
	cfg := Defaults()
	cfg.Icon = "x.png"
	cfg.Positions = []string{"945,-20", "-0,-0"}

	got, err := cfg.ParsedPositions()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got[0].(composite.Mixed); !ok {
		t.Fatalf("first position = %#v", got[0])
	}
	if got[1] != (composite.Relative{}) {
		t.Fatalf("second position = %#v", got[1])
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`blur: 8
scale: 2.5
darken: 30
ignore_monitors: [1]
icon: /tmp/lock.png
invert: true
positions: ["20,-20"]
locker:
  command: i3lock-color
  args: ["--nofork"]
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, used, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if used != path {
		t.Fatalf("used path = %q", used)
	}
	if cfg.Blur != 8 || cfg.Scale != 2.5 || cfg.Darken == nil || *cfg.Darken != 30 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Locker.Command != "i3lock-color" || cfg.Locker.ImageFormat != "raw" {
		t.Fatalf("locker = %+v (defaults should survive)", cfg.Locker)
	}
	if cfg.BlurMethod != "box" || cfg.Backend != "auto" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("explicit missing file should fail")
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, used, err := Load("")
	if err != nil {
		t.Fatalf("default missing file should not fail: %v", err)
	}
	if used != "" || cfg.Scale != 1.0 {
		t.Fatalf("used=%q cfg=%+v", used, cfg)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("blur: [not a number"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
