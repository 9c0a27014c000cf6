package locker

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bryanchriswhite/i3lockr/internal/pixbuf"
)

func TestNoFork(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"-n", "--insidecolor=542095ff", "--ringcolor=ffffffff", "--line-uses-inside"}, true},
		{[]string{"--insidecolor=542095ff", "--ringcolor=ffffffff", "--line-uses-inside"}, false},
		{[]string{"--insidecolor=542095ff", "--ringcolor=ffffffff", "-en", "--line-uses-inside"}, true},
		{[]string{"--ringcolor=ffffffff", "-e", "--insidecolor=542095ff", "--line-uses-inside"}, false},
		{[]string{"--nofork"}, true},
		{nil, false},
	}

	for _, tt := range tests {
		if got := NoFork(tt.args); got != tt.want {
			t.Errorf("NoFork(%q) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestEncodeBGRX(t *testing.T) {
	buf, err := pixbuf.FromPix(2, 1, []uint8{1, 2, 3, 255, 40, 50, 60, 128})
	if err != nil {
		t.Fatal(err)
	}

	got := EncodeBGRX(buf)
	want := []byte{3, 2, 1, 0, 60, 50, 40, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeBGRX = %v, want %v", got, want)
	}
	if RawSpec(buf) != "2x1:native" {
		t.Fatalf("RawSpec = %q", RawSpec(buf))
	}
}

func TestParseImageFormat(t *testing.T) {
	if f, err := ParseImageFormat(""); err != nil || f != FormatRaw {
		t.Fatalf("empty format = %q, %v", f, err)
	}
	if f, err := ParseImageFormat("png"); err != nil || f != FormatPNG {
		t.Fatalf("png format = %q, %v", f, err)
	}
	if _, err := ParseImageFormat("jpeg"); err == nil {
		t.Fatal("expected error for jpeg")
	}
}

// fakeLocker writes a shell script that records its arguments, then runs the
// body built for the script's directory
func fakeLocker(t *testing.T, body func(dir string) string) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-i3lock")
	content := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + filepath.Join(dir, "args") + "\n" + body(dir) + "\n"
	if err := os.WriteFile(script, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}
	return script, dir
}

func TestLockRawStreamsPixels(t *testing.T) {
	script, dir := fakeLocker(t, func(dir string) string {
		return "cat > " + filepath.Join(dir, "pixels")
	})

	buf := pixbuf.New(3, 2)
	buf.Fill(buf.Bounds(), 10, 20, 30, 255)

	l := NewI3Lock(script, "", []string{"-n", "--color=000000"})
	if err := l.Lock(context.Background(), buf); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	args, err := os.ReadFile(filepath.Join(dir, "args"))
	if err != nil {
		t.Fatal(err)
	}
	want := "-i\n/dev/stdin\n--raw=3x2:native\n-n\n--color=000000\n"
	if string(args) != want {
		t.Fatalf("args = %q, want %q", args, want)
	}

	pixels, err := os.ReadFile(filepath.Join(dir, "pixels"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pixels, EncodeBGRX(buf)) {
		t.Fatalf("locker received %d bytes, want %d", len(pixels), len(buf.Pix))
	}
}

func TestLockPNGPassesPath(t *testing.T) {
	script, dir := fakeLocker(t, func(dir string) string {
		return "cp \"$2\" " + filepath.Join(dir, "copy.png")
	})

	buf := pixbuf.New(4, 4)
	buf.Fill(buf.Bounds(), 200, 0, 0, 255)

	l := NewI3Lock(script, FormatPNG, nil)
	if err := l.Lock(context.Background(), buf); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	args, _ := os.ReadFile(filepath.Join(dir, "args"))
	lines := strings.Split(strings.TrimSpace(string(args)), "\n")
	if len(lines) != 2 || lines[0] != "-i" {
		t.Fatalf("args = %q", lines)
	}
	if _, err := os.Stat(lines[1]); !os.IsNotExist(err) {
		t.Fatalf("temporary image %s was not removed", lines[1])
	}

	f, err := os.Open(filepath.Join(dir, "copy.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r, _, _, _ := img.At(2, 2).RGBA(); r>>8 != 200 {
		t.Fatalf("red = %d", r>>8)
	}
}

func TestLockReportsExitStatus(t *testing.T) {
	script, _ := fakeLocker(t, func(string) string {
		return "cat > /dev/null\nexit 3"
	})

	err := NewI3Lock(script, FormatRaw, nil).Lock(context.Background(), pixbuf.New(1, 1))

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitErr.Code != 3 {
		t.Fatalf("code = %d, want 3", exitErr.Code)
	}
}

func TestLockRejectsEmptyBuffer(t *testing.T) {
	err := NewI3Lock("does-not-matter", FormatRaw, nil).Lock(context.Background(), pixbuf.New(0, 0))
	if !errors.Is(err, ErrEmptyBuffer) {
		t.Fatalf("error = %v, want ErrEmptyBuffer", err)
	}
}

func TestLockMissingBinary(t *testing.T) {
	err := NewI3Lock(filepath.Join(t.TempDir(), "nope"), FormatRaw, nil).Lock(context.Background(), pixbuf.New(1, 1))
	if err == nil {
		t.Fatal("expected error for missing locker binary")
	}
}
