// internal/post/lifecycle.go
//
// The operations that move a post through its states:
//
//   none --make--> generated --(promoted by hand)--> completed
//   completed --revise--> archived (old/) + generated again
//   completed --transcribe--> transcript written
//
// None of these roll back on failure. A make that dies halfway leaves a
// partial directory under generated/ for the user to inspect.

package post

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kingrea/garfutils/internal/config"
	"github.com/kingrea/garfutils/internal/daterange"
	"github.com/kingrea/garfutils/internal/logbook"
	"github.com/kingrea/garfutils/internal/prompt"
	"github.com/kingrea/garfutils/internal/random"
	"github.com/kingrea/garfutils/internal/recent"
	"github.com/kingrea/garfutils/internal/selection"
)

const defaultPollInterval = 500 * time.Millisecond

// Converter renders the derivative image for a post.
type Converter interface {
	ConvertFile(sourcePath, iconPath, watermark, outputPath string) error
}

// Commands runs the external viewer and editor.
type Commands interface {
	SpawnViewer(paths []string, class string, fullscreen bool) error
	KillViewer(class string) error
	SetupViewerWindow(paths []string, class string) error
	OpenEditor(path string) error
}

// Lifecycle performs post operations against one location.
type Lifecycle struct {
	loc          *config.Location
	rng          *random.Source
	converter    Converter
	commands     Commands
	ui           prompt.UI
	scanner      selection.Scanner
	logbook      *logbook.Logbook
	out          io.Writer
	pollInterval time.Duration
}

// Option customizes a Lifecycle.
type Option func(*Lifecycle)

// WithScanner replaces the directory scanner.
func WithScanner(scanner selection.Scanner) Option {
	return func(l *Lifecycle) {
		if scanner != nil {
			l.scanner = scanner
		}
	}
}

// WithLogbook records every transition to book.
func WithLogbook(book *logbook.Logbook) Option {
	return func(l *Lifecycle) { l.logbook = book }
}

// WithOutput redirects progress messages.
func WithOutput(w io.Writer) Option {
	return func(l *Lifecycle) {
		if w != nil {
			l.out = w
		}
	}
}

// WithPollInterval sets how often revise checks for the promoted post.
func WithPollInterval(d time.Duration) Option {
	return func(l *Lifecycle) {
		if d > 0 {
			l.pollInterval = d
		}
	}
}

// NewLifecycle wires the collaborators used by every operation.
func NewLifecycle(loc *config.Location, rng *random.Source, converter Converter, commands Commands, ui prompt.UI, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		loc:          loc,
		rng:          rng,
		converter:    converter,
		commands:     commands,
		ui:           ui,
		scanner:      selection.DirScanner{},
		out:          os.Stdout,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Show displays a source comic fullscreen and records its date in the
// recent file. With no date, a random comic matching r (and Sundays only if
// sundayOnly) is chosen.
func (l *Lifecycle) Show(date *time.Time, r daterange.DateRange, sundayOnly bool) (time.Time, error) {
	var (
		shown time.Time
		path  string
	)
	if date != nil {
		shown = *date
		path = selection.SourcePath(l.loc.SourceDir(), shown)
		if !fileExists(path) {
			return time.Time{}, ErrNoSource
		}
	} else {
		picked, ok, err := selection.PickRandomSource(l.scanner, l.loc.SourceDir(), selection.MatchesDateRangeAndWeekday(r, sundayOnly), l.rng)
		if err != nil {
			return time.Time{}, fmt.Errorf("post: read comics directory: %w", err)
		}
		if !ok {
			return time.Time{}, ErrNoComics
		}
		// The predicate only passes parseable names.
		shown, _ = selection.DateFromPath(picked)
		path = picked
	}

	fmt.Fprintln(l.out, shown.Format(selection.DateLayout))

	if err := recent.Append(l.loc.RecentFile(), shown); err != nil {
		return time.Time{}, fmt.Errorf("post: append to recent file: %w", err)
	}
	if err := l.commands.KillViewer(ViewerClassShow); err != nil {
		return time.Time{}, err
	}
	if err := l.commands.SpawnViewer([]string{path}, ViewerClassShow, true); err != nil {
		return time.Time{}, err
	}
	return shown, nil
}

// Make creates generated/<id> for date. Unless skipPostCheck is set, no
// completed post may already use the date; no generated post may use it in
// any case.
func (l *Lifecycle) Make(date time.Time, id string, skipPostCheck bool) error {
	sourcePath := selection.SourcePath(l.loc.SourceDir(), date)
	outputDir := filepath.Join(l.loc.GeneratedDir(), id)

	if !fileExists(sourcePath) {
		return ErrNoSource
	}
	generated, err := ExistsWithDate(l.scanner, l.loc.GeneratedDir(), date)
	if err != nil {
		return fmt.Errorf("post: check generated posts: %w", err)
	}
	if generated {
		return ErrDuplicateGenerated
	}
	completed, err := ExistsWithDate(l.scanner, l.loc.PostsDir(), date)
	if err != nil {
		return fmt.Errorf("post: check completed posts: %w", err)
	}
	if completed && !skipPostCheck {
		return ErrDuplicateCompleted
	}

	watermark, err := l.RandomWatermark()
	if err != nil {
		return err
	}

	// generated/ itself is validated by the location.
	if err := os.Mkdir(outputDir, 0o755); err != nil {
		return fmt.Errorf("post: create generated post directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, FileDate), []byte(date.Format(selection.DateLayout)), 0o644); err != nil {
		return fmt.Errorf("post: write date file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, FileTitle), nil, 0o644); err != nil {
		return fmt.Errorf("post: create title file: %w", err)
	}
	primary := filepath.Join(outputDir, FilePrimary)
	if err := l.converter.ConvertFile(sourcePath, l.loc.IconFile(), watermark, primary); err != nil {
		return fmt.Errorf("post: generate image: %w", err)
	}
	if err := copyFile(primary, filepath.Join(outputDir, FileDuplicate)); err != nil {
		return fmt.Errorf("post: copy generated image: %w", err)
	}

	fmt.Fprintf(l.out, "Created %s\n", id)
	l.logbook.Info("make", "created %s for %s", id, date.Format(selection.DateLayout))
	return nil
}

// NewName generates a post id for date.
func (l *Lifecycle) NewName(date time.Time) string {
	return GenerateName(date, l.rng)
}

// carriedFiles are copied from the old post into its revision. Date and
// images are produced by Make.
var carriedFiles = []struct {
	name     string
	required bool
}{
	{FileTitle, true},
	{FileTranscript, false},
	{FileProps, false},
	{FileSpecial, false},
	{FileVector, false},
}

// Revise regenerates a completed post, archives the old one under old/, and
// blocks until the new version has been promoted back into posts/.
func (l *Lifecycle) Revise(ctx context.Context, id string) error {
	postDir := filepath.Join(l.loc.PostsDir(), id)
	if !dirExists(postDir) {
		return fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}
	date, err := ReadDate(postDir)
	if err != nil {
		return err
	}

	if err := l.Make(date, id, true); err != nil {
		return fmt.Errorf("post: make revision: %w", err)
	}

	generatedDir := filepath.Join(l.loc.GeneratedDir(), id)
	for _, file := range carriedFiles {
		oldPath := filepath.Join(postDir, file.name)
		if !fileExists(oldPath) {
			if !file.required {
				continue
			}
			return fmt.Errorf("%w: `%s`", ErrMissingPostFile, file.name)
		}
		if err := copyFile(oldPath, filepath.Join(generatedDir, file.name)); err != nil {
			return fmt.Errorf("post: copy `%s` file: %w", file.name, err)
		}
	}

	if err := l.ui.Confirm("Move old post to old directory?"); err != nil {
		return err
	}

	archived := filepath.Join(l.loc.OldDir(), id)
	if fileExists(archived) {
		// TODO: keep every superseded version, e.g. old/<id>.<n>, instead of refusing.
		l.logbook.Warn("revise", "%s already has an archived version", id)
		return fmt.Errorf("%w: %s", ErrAlreadyRevised, id)
	}
	if err := os.Rename(postDir, archived); err != nil {
		return fmt.Errorf("post: move post to `old` directory: %w", err)
	}
	fmt.Fprintf(l.out, "Moved %s to old directory\n", id)
	l.logbook.Info("revise", "archived %s, waiting for promotion", id)

	err = l.ui.WaitFor(ctx, "waiting until done...", l.pollInterval, func() (bool, error) {
		return fileExists(postDir), nil
	})
	if err != nil {
		return err
	}
	l.logbook.Info("revise", "%s promoted", id)
	return nil
}

// TranscriptTemplate is the starting text for a post with no transcript:
// one "---" line per panel group, six for Sunday comics and two otherwise.
func TranscriptTemplate(id string) (string, error) {
	sunday, err := IsIDSunday(id)
	if err != nil {
		return "", err
	}
	lines := 2
	if sunday {
		lines = 6
	}
	return strings.TrimSuffix(strings.Repeat("---\n", lines), "\n"), nil
}

// Transcribe opens the post's images beside an editor holding its transcript
// (or a template) and saves the result if the user changed anything.
func (l *Lifecycle) Transcribe(id string) error {
	postDir := filepath.Join(l.loc.PostsDir(), id)
	if !dirExists(postDir) {
		return fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}
	if err := os.MkdirAll(l.loc.TempDir(), 0o755); err != nil {
		return fmt.Errorf("post: create temp directory for transcript file: %w", err)
	}
	workingPath := filepath.Join(l.loc.TempDir(), "transcript."+id)
	transcriptPath := filepath.Join(postDir, FileTranscript)

	var template []byte
	existing, err := os.ReadFile(transcriptPath)
	switch {
	case err == nil:
		fmt.Fprintln(l.out, "(transcript file already exists)")
		template = existing
	case errors.Is(err, fs.ErrNotExist):
		text, err := TranscriptTemplate(id)
		if err != nil {
			return err
		}
		template = []byte(text)
	default:
		return fmt.Errorf("post: read existing transcript file: %w", err)
	}

	if err := l.commands.KillViewer(ViewerClassTranscribe); err != nil {
		return err
	}
	images := []string{filepath.Join(postDir, FilePrimary), filepath.Join(postDir, FileDuplicate)}
	if err := l.commands.SetupViewerWindow(images, ViewerClassTranscribe); err != nil {
		return err
	}

	if err := os.WriteFile(workingPath, template, 0o644); err != nil {
		return fmt.Errorf("post: write template transcript file: %w", err)
	}
	if err := l.commands.OpenEditor(workingPath); err != nil {
		return err
	}
	if err := l.commands.KillViewer(ViewerClassTranscribe); err != nil {
		return err
	}

	edited, err := os.ReadFile(workingPath)
	if err != nil {
		return fmt.Errorf("post: compare transcript file against previous version: %w", err)
	}
	if bytes.Equal(edited, template) {
		fmt.Fprintln(l.out, "No changes made.")
		return nil
	}

	if err := l.ui.Confirm("Save transcript file?"); err != nil {
		return err
	}
	if err := os.Rename(workingPath, transcriptPath); err != nil {
		return fmt.Errorf("post: move temporary file to save transcript: %w", err)
	}
	fmt.Fprintln(l.out, "Saved transcript file.")
	l.logbook.Info("transcribe", "saved transcript for %s", id)
	return nil
}

// RandomWatermark picks one non-blank line of the watermarks file.
func (l *Lifecycle) RandomWatermark() (string, error) {
	data, err := os.ReadFile(l.loc.WatermarksFile())
	if err != nil {
		return "", fmt.Errorf("post: read watermarks file: %w", err)
	}
	var candidates []string
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			candidates = append(candidates, trimmed)
		}
	}
	if len(candidates) == 0 {
		return "", ErrNoWatermarks
	}
	return candidates[l.rng.IntN(len(candidates))], nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
