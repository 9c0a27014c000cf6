// Package locker hands the finished image to the external screen locker.
package locker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/bryanchriswhite/i3lockr/internal/logger"
	"github.com/bryanchriswhite/i3lockr/internal/pixbuf"
)

// ErrEmptyBuffer is returned when asked to lock with an image that has no pixels
var ErrEmptyBuffer = errors.New("refusing to lock with an empty image")

// DefaultCommand is the locker binary used when none is configured
const DefaultCommand = "i3lock"

// Locker displays a buffer as the lock screen
type Locker interface {
	Lock(ctx context.Context, buf *pixbuf.Buffer) error
}

// I3Lock runs i3lock (or a compatible fork) with the image
type I3Lock struct {
	Command string
	Args    []string
	Format  ImageFormat
}

// NewI3Lock creates an i3lock invoker; args are passed through unchanged
func NewI3Lock(command string, format ImageFormat, args []string) *I3Lock {
	if command == "" {
		command = DefaultCommand
	}
	if format == "" {
		format = FormatRaw
	}
	return &I3Lock{Command: command, Args: args, Format: format}
}

// Lock starts the locker and feeds it the image. It waits for the process
// to exit: with --nofork that is when the screen is unlocked, otherwise
// i3lock's parent exits as soon as the lock is up.
func (l *I3Lock) Lock(ctx context.Context, buf *pixbuf.Buffer) error {
	if buf == nil || buf.Width == 0 || buf.Height == 0 {
		return ErrEmptyBuffer
	}

	switch l.Format {
	case FormatPNG:
		return l.lockPNG(ctx, buf)
	default:
		return l.lockRaw(ctx, buf)
	}
}

func (l *I3Lock) lockRaw(ctx context.Context, buf *pixbuf.Buffer) error {
	log := logger.WithComponent("locker")

	args := append([]string{"-i", "/dev/stdin", "--raw=" + RawSpec(buf)}, l.Args...)
	cmd := exec.CommandContext(ctx, l.Command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open locker stdin: %w", err)
	}

	log.Debug().
		Str("command", l.Command).
		Strs("args", args).
		Bool("nofork", NoFork(l.Args)).
		Msg("Starting locker")

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.Command, err)
	}

	writeErr := WriteRaw(stdin, buf)
	closeErr := stdin.Close()

	if err := wait(cmd); err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close locker stdin: %w", closeErr)
	}
	return nil
}

func (l *I3Lock) lockPNG(ctx context.Context, buf *pixbuf.Buffer) error {
	log := logger.WithComponent("locker")

	f, err := os.CreateTemp("", "i3lockr-*.png")
	if err != nil {
		return fmt.Errorf("failed to create temporary image: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if err := WritePNG(f, buf); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write temporary image: %w", err)
	}

	args := append([]string{"-i", path}, l.Args...)
	cmd := exec.CommandContext(ctx, l.Command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.Debug().
		Str("command", l.Command).
		Strs("args", args).
		Msg("Starting locker")

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.Command, err)
	}
	return wait(cmd)
}

// ExitError reports a locker that did not exit cleanly
type ExitError struct {
	Command string
	Code    int
	Signal  syscall.Signal
}

func (e *ExitError) Error() string {
	if e.Code < 0 {
		return fmt.Sprintf("%s killed by signal: %v", e.Command, e.Signal)
	}
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

func wait(cmd *exec.Cmd) error {
	err := cmd.Wait()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("failed to wait for %s: %w", cmd.Path, err)
	}

	out := &ExitError{Command: cmd.Path, Code: exitErr.ExitCode()}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		out.Code = -1
		out.Signal = ws.Signal()
	}
	return out
}

// NoFork reports whether the locker arguments keep i3lock in the foreground:
// either --nofork or a short option cluster containing n (e.g. -n, -en).
func NoFork(args []string) bool {
	for _, a := range args {
		if a == "--nofork" {
			return true
		}
		if strings.HasPrefix(a, "-") && !strings.HasPrefix(a, "--") && strings.ContainsRune(a, 'n') {
			return true
		}
	}
	return false
}
