package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spachava753/ekcal/eventkit"
)

func newSourcesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List account sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, done, err := opts.openSession()
			if err != nil {
				return err
			}
			defer done()
			if _, err := session.RequestFullAccessToEvents(cmd.Context()); err != nil {
				return err
			}
			return printJSON(session.Sources())
		},
	}
}

func newCalendarsCommand(opts *rootOptions) *cobra.Command {
	var entity string
	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "List calendars for an entity type",
		RunE: func(cmd *cobra.Command, args []string) error {
			if entity != string(eventkit.EntityTypeEvent) && entity != string(eventkit.EntityTypeReminder) {
				return fmt.Errorf("invalid entity %q: must be event or reminder", entity)
			}
			session, done, err := opts.openSession()
			if err != nil {
				return err
			}
			defer done()
			if entity == string(eventkit.EntityTypeReminder) {
				_, err = session.RequestFullAccessToReminders(cmd.Context())
			} else {
				_, err = session.RequestFullAccessToEvents(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printJSON(session.Calendars(eventkit.EntityType(entity)))
		},
	}
	cmd.Flags().StringVarP(&entity, "entity", "e", "event", "entity type (event|reminder)")
	return cmd
}
