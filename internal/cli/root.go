// internal/cli/root.go
//
// The garfutils command tree. Every subcommand resolves the location and
// settings itself so that flag parsing errors surface before any directory
// is touched.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingrea/garfutils/internal/config"
	"github.com/kingrea/garfutils/internal/convert"
	"github.com/kingrea/garfutils/internal/external"
	"github.com/kingrea/garfutils/internal/logbook"
	"github.com/kingrea/garfutils/internal/post"
	"github.com/kingrea/garfutils/internal/prompt"
	"github.com/kingrea/garfutils/internal/random"
	"github.com/kingrea/garfutils/internal/selection"
)

// options holds the persistent flags plus hooks tests use to avoid
// touching the terminal.
type options struct {
	location string
	verbose  bool

	ui       prompt.UI
	commands post.Commands
}

// session is everything one command invocation needs.
type session struct {
	loc      *config.Location
	settings config.Settings
	book     *logbook.Logbook
	ui       prompt.UI
	life     *post.Lifecycle
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(version, &options{})
}

func newRootCommand(version string, opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "garfutils",
		Short: "Utilities for translating comic strips",
		Long: `garfutils walks comics through a posting workflow:

  show        display an original comic
  make        create a post from a comic
  transcribe  write the transcript of a post
  revise      regenerate a post and archive the old version`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.location, "location", "l", "", "Base directory (defaults to $GARFUTILS_LOCATION or the user data directory)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print external commands as they run")

	root.AddCommand(newShowCmd(opts))
	root.AddCommand(newMakeCmd(opts))
	root.AddCommand(newTranscribeCmd(opts))
	root.AddCommand(newReviseCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newLogCmd(opts))
	return root
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCommand(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		return err
	}
	return nil
}

func (o *options) open(cmd *cobra.Command) (*session, error) {
	override, err := config.LocationOverride(o.location)
	if err != nil {
		return nil, err
	}
	loc, err := config.ResolveLocation(override)
	if err != nil {
		return nil, fmt.Errorf("failed to verify location: %w", err)
	}
	if o.verbose {
		fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render("Location: "+loc.BaseDir()))
	}
	settings, err := config.LoadSettings(loc)
	if err != nil {
		return nil, err
	}
	book, err := logbook.New(loc.LogPath())
	if err != nil {
		return nil, err
	}

	ui := o.ui
	if ui == nil {
		ui = prompt.New()
	}
	commands := o.commands
	if commands == nil {
		var runnerOpts []external.Option
		if o.verbose {
			runnerOpts = append(runnerOpts, external.WithTrace(cmd.ErrOrStderr()))
		}
		commands = external.NewRunner(external.Programs{
			Viewer:        settings.Viewer,
			Editor:        settings.Editor,
			Killer:        settings.Killer,
			WindowManager: settings.WindowManager,
			ViewerDelay:   settings.ViewerDelay,
		}, runnerOpts...)
	}

	life := post.NewLifecycle(loc, random.NewFromTime(), convert.PNGConverter{}, commands, ui,
		post.WithLogbook(book),
		post.WithOutput(cmd.OutOrStdout()),
		post.WithPollInterval(settings.PollInterval),
	)
	return &session{loc: loc, settings: settings, book: book, ui: ui, life: life}, nil
}

// fail records err in the logbook and hands it back.
func (s *session) fail(op string, err error) error {
	if err != nil {
		s.book.Error(op, "%v", err)
	}
	return err
}

// parseDate reads a YYYY-MM-DD argument.
func parseDate(text string) (time.Time, error) {
	date, err := time.Parse(selection.DateLayout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", text)
	}
	return date, nil
}
