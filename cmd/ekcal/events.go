package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newEventsCommand(opts *rootOptions) *cobra.Command {
	var (
		startFlag string
		endFlag   string
		calendars []string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events in a time range",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			end := start.AddDate(0, 0, 7)
			if startFlag != "" {
				t, err := parseTime(startFlag)
				if err != nil {
					return err
				}
				start = t
			}
			if endFlag != "" {
				t, err := parseTime(endFlag)
				if err != nil {
					return err
				}
				end = t
			}

			session, done, err := opts.openSession()
			if err != nil {
				return err
			}
			defer done()
			if _, err := session.RequestFullAccessToEvents(cmd.Context()); err != nil {
				return err
			}

			var scope []string
			if len(calendars) > 0 {
				scope = calendars
			}
			p, err := session.EventPredicate(start, end, scope)
			if err != nil {
				return err
			}
			events, err := session.Events(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printJSON(events)
		},
	}
	cmd.Flags().StringVar(&startFlag, "start", "", "range start (default now)")
	cmd.Flags().StringVar(&endFlag, "end", "", "range end (default start+7d)")
	cmd.Flags().StringArrayVarP(&calendars, "calendar", "c", nil, "calendar id to search (repeatable; default all)")
	return cmd
}
