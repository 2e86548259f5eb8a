// internal/prompt/prompt.go
//
// Human checkpoints in the workflow: "press enter to continue" questions and
// waiting for something outside garfutils to happen on disk. On a terminal
// these run as small bubbletea programs; otherwise they fall back to plain
// line reading so the tool still works with redirected input.

package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// ErrAborted is returned when the user declines a confirmation or interrupts
// a wait.
var ErrAborted = errors.New("prompt: aborted by user")

// CheckFunc reports whether the awaited condition holds.
type CheckFunc func() (bool, error)

// UI asks the user for confirmation and waits on conditions.
type UI interface {
	Confirm(question string) error
	WaitFor(ctx context.Context, label string, interval time.Duration, done CheckFunc) error
}

// New picks the terminal UI when both stdin and stdout are terminals.
func New() UI {
	if isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()) {
		return NewTerminal(os.Stdin, os.Stdout)
	}
	return NewPlain(os.Stdin, os.Stdout)
}

// Plain reads whole lines and prints without styling.
type Plain struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPlain builds a line-based UI.
func NewPlain(in io.Reader, out io.Writer) *Plain {
	return &Plain{in: bufio.NewReader(in), out: out}
}

// Confirm prints question and waits for a newline. Any answer continues; end
// of input aborts.
func (p *Plain) Confirm(question string) error {
	fmt.Fprintf(p.out, "%s ", question)
	if _, err := p.in.ReadString('\n'); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrAborted
		}
		return fmt.Errorf("prompt: read answer: %w", err)
	}
	return nil
}

// WaitFor prints label and polls done until it reports true.
func (p *Plain) WaitFor(ctx context.Context, label string, interval time.Duration, done CheckFunc) error {
	fmt.Fprintf(p.out, "(%s)\n", label)
	return Poll(ctx, interval, done)
}

// Poll calls done immediately and then every interval until it returns true,
// returns an error, or ctx is cancelled. There is no timeout.
func Poll(ctx context.Context, interval time.Duration, done CheckFunc) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		complete, err := done()
		if err != nil {
			return err
		}
		if complete {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
