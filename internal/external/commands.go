// internal/external/commands.go
//
// Thin wrappers around the programs garfutils drives: an image viewer, a
// process killer, a terminal editor and the window manager. Nothing here
// parses program output; only exit status matters.

package external

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Programs names the executables to run. Killer is a whole command line
// such as "pkill --full"; the window class is appended as its last argument.
type Programs struct {
	Viewer        string
	Editor        string
	Killer        string
	WindowManager string
	// ViewerDelay is slept after spawning a viewer window before the window
	// manager is told to move it. The viewer may not have mapped its window
	// by then; nothing waits for it.
	ViewerDelay time.Duration
}

// ErrEditorFailed is returned when the editor exits non-zero.
var ErrEditorFailed = errors.New("external: editor did not exit successfully")

// Runner executes external programs.
type Runner struct {
	programs Programs
	start    func(*exec.Cmd) error
	run      func(*exec.Cmd) error
	sleep    func(time.Duration)
	trace    io.Writer
}

// Option customizes a Runner.
type Option func(*Runner)

// WithExecutor replaces how commands are started (not awaited) and run
// (awaited). Tests use it to record invocations.
func WithExecutor(start, run func(*exec.Cmd) error) Option {
	return func(r *Runner) {
		if start != nil {
			r.start = start
		}
		if run != nil {
			r.run = run
		}
	}
}

// WithSleep overrides the delay function.
func WithSleep(sleep func(time.Duration)) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// WithTrace echoes every command line to w before it runs.
func WithTrace(w io.Writer) Option {
	return func(r *Runner) {
		r.trace = w
	}
}

// NewRunner builds a runner for the given programs.
func NewRunner(programs Programs, opts ...Option) *Runner {
	r := &Runner{
		programs: programs,
		start:    startDetached,
		run:      func(cmd *exec.Cmd) error { return cmd.Run() },
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// SpawnViewer opens paths in the image viewer without waiting for it. class
// names the window so KillViewer can find it again.
func (r *Runner) SpawnViewer(paths []string, class string, fullscreen bool) error {
	var args []string
	if fullscreen {
		args = append(args, "-f", "-s", "f") // fullscreen, scale to fit
	}
	args = append(args, "-N", class, "-B", "#000000")
	args = append(args, paths...)
	cmd := r.command(r.programs.Viewer, args...)
	if err := r.start(cmd); err != nil {
		return fmt.Errorf("external: spawn image viewer: %w", err)
	}
	return nil
}

// KillViewer kills every process whose command line mentions class. A
// non-zero exit only means nothing matched and is not an error.
func (r *Runner) KillViewer(class string) error {
	fields := strings.Fields(r.programs.Killer)
	if len(fields) == 0 {
		return errors.New("external: no killer command configured")
	}
	cmd := r.command(fields[0], append(fields[1:], class)...)
	if err := r.run(cmd); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return fmt.Errorf("external: kill image viewer: %w", err)
	}
	return nil
}

// OpenEditor blocks until the editor exits. The editor inherits the terminal.
func (r *Runner) OpenEditor(path string) error {
	cmd := r.command(r.programs.Editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := r.run(cmd); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %v", ErrEditorFailed, exitErr)
		}
		return fmt.Errorf("external: open editor: %w", err)
	}
	return nil
}

// SetupViewerWindow opens a side-by-side viewer for paths and arranges it
// to the left of the terminal, then gives focus back to the terminal.
func (r *Runner) SetupViewerWindow(paths []string, class string) error {
	if err := r.SpawnViewer(paths, class, false); err != nil {
		return err
	}
	r.sleep(r.programs.ViewerDelay)
	layout := [][]string{
		{"moveoutofgroup"},
		{"swapwindow", "l"},
		{"resizeactive", "-200", "0"},
		{"movefocus", "r"},
	}
	for _, args := range layout {
		if err := r.dispatch(args...); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) dispatch(args ...string) error {
	var output bytes.Buffer
	cmd := r.command(r.programs.WindowManager, append([]string{"dispatch"}, args...)...)
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := r.run(cmd); err != nil {
		msg := strings.TrimSpace(output.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("external: %s dispatch %s failed: %s", r.programs.WindowManager, strings.Join(args, " "), msg)
	}
	return nil
}

func (r *Runner) command(name string, args ...string) *exec.Cmd {
	if r.trace != nil {
		fmt.Fprintf(r.trace, "$ %s %s\n", name, strings.Join(args, " "))
	}
	return exec.Command(name, args...)
}
