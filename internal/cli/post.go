package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTranscribeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "transcribe [ID]",
		Aliases: []string{"t"},
		Short:   "Transcribe an existing post (defaults to the next illustrated one)",
		Long: `Displays the post beside an editor holding its transcript.

Without an id, the first illustrated post with no transcript is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			id, err := s.life.ResolveTranscribeID(firstArg(args))
			if err != nil {
				return s.fail("transcribe", err)
			}
			if err := s.life.Transcribe(id); err != nil {
				return s.fail("transcribe", fmt.Errorf("failed to transcribe post: %w", err))
			}
			return nil
		},
	}
}

func newReviseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "revise [ID]",
		Aliases: []string{"r"},
		Short:   "Recreate an existing post, then transcribe it",
		Long: `Regenerates a completed post into the generated directory, archives the
old version and waits until the new one is moved back into posts.

Without an id, approved posts that are not illustrated come first, then any
post that is not illustrated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			id, err := s.life.ResolveReviseID(firstArg(args))
			if err != nil {
				return s.fail("revise", err)
			}
			if err := s.life.Revise(cmd.Context(), id); err != nil {
				return s.fail("revise", fmt.Errorf("failed to revise post: %w", err))
			}
			if err := s.ui.Confirm("Transcribe now?"); err != nil {
				return err
			}
			if err := s.life.Transcribe(id); err != nil {
				return s.fail("transcribe", fmt.Errorf("failed to transcribe post: %w", err))
			}
			return nil
		},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
