package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingrea/garfutils/internal/daterange"
)

var errShowDateWithFilter = errors.New("a date cannot be combined with --range or --sunday")

func newShowCmd(opts *options) *cobra.Command {
	var (
		dates  daterange.Value
		sunday bool
	)
	cmd := &cobra.Command{
		Use:     "show [DATE]",
		Aliases: []string{"s"},
		Short:   "Display an original comic, given a date (defaults to a random one)",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var date *time.Time
			if len(args) == 1 {
				if dates.IsSet() || sunday {
					return errShowDateWithFilter
				}
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
			_, err = s.life.Show(date, dates.Range(), sunday)
			return s.fail("show", err)
		},
	}
	cmd.Flags().VarP(&dates, "range", "r", "Only pick comics within this month-day range")
	cmd.Flags().BoolVarP(&sunday, "sunday", "S", false, "Only pick Sunday comics")
	return cmd
}
