package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID",
		Short: "Show how far a post has progressed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			state, err := s.life.StateOf(args[0])
			if err != nil {
				return err
			}
			style, ok := stateStyles[string(state)]
			if !ok {
				style = dimStyle
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", labelStyle.Render(args[0]), style.Render(string(state)))
			return nil
		},
	}
}

func newLogCmd(opts *options) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lines <= 0 {
				return fmt.Errorf("--lines must be positive, got %d", lines)
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			entries, err := s.book.Tail(lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, dimStyle.Render("No activity recorded yet in "+s.book.Path()))
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintln(out, entry)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of entries to show")
	return cmd
}
