package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingrea/garfutils/internal/post"
)

func newMakeCmd(opts *options) *cobra.Command {
	var (
		useRecent bool
		name      string
		skipCheck bool
	)
	cmd := &cobra.Command{
		Use:     "make [DATE]",
		Aliases: []string{"m"},
		Short:   "Create a new post, given a date",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == useRecent {
				return post.ErrDateChoice
			}
			var date *time.Time
			if len(args) == 1 {
				parsed, err := parseDate(args[0])
				if err != nil {
					return err
				}
				date = &parsed
			}

			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			resolved, err := s.life.ResolveDate(date, useRecent)
			if err != nil {
				return s.fail("make", fmt.Errorf("failed to get date: %w", err))
			}
			id := name
			if id == "" {
				id = s.life.NewName(resolved)
			}
			if err := s.life.Make(resolved, id, skipCheck); err != nil {
				return s.fail("make", fmt.Errorf("failed to make post: %w", err))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&useRecent, "recent", "r", false, "Use the most recently shown comic instead of a date")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the post directory (defaults to a unique name)")
	cmd.Flags().BoolVarP(&skipCheck, "skip-check", "s", false, "Skip the check that no completed post has this date")
	return cmd
}
