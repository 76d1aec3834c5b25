package eventkit_test

import (
	"context"
	"time"

	"github.com/spachava753/ekcal/eventkit"
	"github.com/spachava753/ekcal/memstore"
)

func composeListWeekEvents(ctx context.Context) ([]eventkit.Event, error) {
	session := eventkit.Open(memstore.New())
	defer session.Close()

	granted, err := session.RequestFullAccessToEvents(ctx)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, nil
	}

	start := time.Now()
	pred, err := session.EventPredicate(start, start.AddDate(0, 0, 7), nil)
	if err != nil {
		return nil, err
	}
	return session.Events(ctx, pred)
}

func composeBatchCalendarAndReminder(session *eventkit.Session) error {
	calID, err := session.SaveCalendar(eventkit.CalendarData{
		Title:      "Projects",
		EntityType: eventkit.EntityTypeReminder,
		Color:      &eventkit.ColorData{Hex: "#FF0000FF"},
	}, false)
	if err != nil {
		return err
	}

	_, err = session.SaveReminder(eventkit.ReminderData{
		Title:      "File the report",
		CalendarID: calID,
	}, false)
	if err != nil {
		session.Reset()
		return err
	}

	return session.Commit()
}

func composeCompleteFirstReminder(ctx context.Context, session *eventkit.Session) error {
	pred, err := session.IncompleteReminderPredicate(nil, nil, nil)
	if err != nil {
		return err
	}
	reminders, err := session.Reminders(ctx, pred)
	if err != nil || len(reminders) == 0 {
		return err
	}

	completed := true
	_, err = session.SaveReminder(eventkit.ReminderData{
		ID:        reminders[0].ID,
		Completed: &completed,
	}, true)
	return err
}
