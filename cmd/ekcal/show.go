package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCommand(opts *rootOptions) *cobra.Command {
	var external bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item by identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, done, err := opts.openSession()
			if err != nil {
				return err
			}
			defer done()
			if _, err := session.RequestFullAccessToEvents(cmd.Context()); err != nil {
				return err
			}
			if _, err := session.RequestFullAccessToReminders(cmd.Context()); err != nil {
				return err
			}

			if external {
				items := session.CalendarItemsWithExternalIdentifier(args[0])
				if len(items) == 0 {
					return fmt.Errorf("no items with external identifier %q", args[0])
				}
				return printJSON(items)
			}
			item, ok := session.CalendarItem(args[0])
			if !ok {
				return fmt.Errorf("item %q not found", args[0])
			}
			return printJSON(item)
		},
	}
	cmd.Flags().BoolVarP(&external, "external", "x", false, "treat the id as an external identifier")
	return cmd
}
