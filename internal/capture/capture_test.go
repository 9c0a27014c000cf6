package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]string{"": BackendAuto, "AUTO": BackendAuto, "x11": BackendX11, " screenshot ": BackendScreenshot} {
		got, err := ParseBackend(in)
		if err != nil {
			t.Fatalf("ParseBackend(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseBackend(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseBackend("pipewire"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestRouterBeforeStart(t *testing.T) {
	r, err := NewRouter("x11")
	if err != nil {
		t.Fatal(err)
	}
	if r.IsAvailable() {
		t.Fatal("router should not be available before Start")
	}
	if r.Name() != BackendX11 {
		t.Fatalf("Name() = %q", r.Name())
	}
	if _, err := r.Capture(context.Background()); !errors.Is(err, ErrNoBackend) {
		t.Fatalf("Capture() error = %v, want ErrNoBackend", err)
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() on idle router: %v", err)
	}
}

func TestConvertImageData(t *testing.T) {
	c := &X11Capturer{screen: &xproto.ScreenInfo{RootDepth: 24}}
	data := []byte{
		1, 2, 3, 0, // B G R x
		10, 20, 30, 99,
	}

	buf, err := c.convertImageData(data, 2, 1)
	if err != nil {
		t.Fatalf("convertImageData: %v", err)
	}
	want := []byte{3, 2, 1, 255, 30, 20, 10, 255}
	for i := range want {
		if buf.Pix[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d", i, buf.Pix[i], want[i])
		}
	}

	if _, err := c.convertImageData(data[:4], 2, 1); err == nil {
		t.Fatal("expected error for short data")
	}

	c.screen.RootDepth = 16
	if _, err := c.convertImageData(data, 2, 1); err == nil {
		t.Fatal("expected error for unsupported depth")
	}
}
