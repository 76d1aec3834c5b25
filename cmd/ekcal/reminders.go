package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spachava753/ekcal/eventkit"
)

func newRemindersCommand(opts *rootOptions) *cobra.Command {
	var (
		completed  bool
		incomplete bool
		startFlag  string
		endFlag    string
		calendars  []string
	)
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "List reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			if completed && incomplete {
				return fmt.Errorf("--completed and --incomplete are mutually exclusive")
			}

			var start, end *time.Time
			if startFlag != "" {
				t, err := parseTime(startFlag)
				if err != nil {
					return err
				}
				start = &t
			}
			if endFlag != "" {
				t, err := parseTime(endFlag)
				if err != nil {
					return err
				}
				end = &t
			}

			session, done, err := opts.openSession()
			if err != nil {
				return err
			}
			defer done()
			if _, err := session.RequestFullAccessToReminders(cmd.Context()); err != nil {
				return err
			}

			var scope []string
			if len(calendars) > 0 {
				scope = calendars
			}
			var p eventkit.Predicate
			switch {
			case completed:
				p, err = session.CompletedReminderPredicate(start, end, scope)
			case incomplete:
				p, err = session.IncompleteReminderPredicate(start, end, scope)
			default:
				p, err = session.ReminderPredicate(scope)
			}
			if err != nil {
				return err
			}
			reminders, err := session.Reminders(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printJSON(reminders)
		},
	}
	cmd.Flags().BoolVar(&completed, "completed", false, "only completed reminders")
	cmd.Flags().BoolVar(&incomplete, "incomplete", false, "only incomplete reminders")
	cmd.Flags().StringVar(&startFlag, "start", "", "due/completion range start")
	cmd.Flags().StringVar(&endFlag, "end", "", "due/completion range end")
	cmd.Flags().StringArrayVarP(&calendars, "calendar", "c", nil, "calendar id to search (repeatable; default all)")
	return cmd
}
