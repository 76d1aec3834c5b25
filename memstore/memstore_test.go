package memstore

import (
	"testing"
	"time"

	"github.com/nalgeon/be"

	"github.com/spachava753/ekcal/eventkit"
)

func grantAll(t *testing.T, s *Store) {
	t.Helper()
	done := make(chan struct{})
	s.RequestAccess(eventkit.EntityTypeEvent, eventkit.AccessLevelFull, func(granted bool, err error) {
		be.Err(t, err, nil)
		be.True(t, granted)
		close(done)
	})
	<-done
}

func seedCalendar(t *testing.T, s *Store, title string, entity eventkit.EntityType) string {
	t.Helper()
	id, err := s.SaveCalendar(eventkit.CalendarDraft{Title: title, Entity: entity}, true)
	be.Err(t, err, nil)
	return id
}

func TestRequestAccessDeliversOnAnotherGoroutine(t *testing.T) {
	s := New()
	grantAll(t, s)
	be.Equal(t, s.AuthorizationStatus(eventkit.EntityTypeEvent), eventkit.RawAuthorizationFullAccess)
	be.Equal(t, s.AuthorizationStatus(eventkit.EntityTypeReminder), eventkit.RawAuthorizationNotDetermined)
}

func TestCalendarTypeFollowsSource(t *testing.T) {
	s := New(WithSources(
		eventkit.NativeSource{ID: "dav", Title: "Fastmail", Type: eventkit.RawSourceTypeCalDAV},
		eventkit.NativeSource{ID: "exch", Title: "Work", Type: eventkit.RawSourceTypeExchange},
	))

	id, err := s.SaveCalendar(eventkit.CalendarDraft{Title: "A", Entity: eventkit.EntityTypeEvent}, true)
	be.Err(t, err, nil)
	cal, ok := s.Calendar(id)
	be.True(t, ok)
	be.Equal(t, cal.Type, eventkit.RawCalendarTypeCalDAV)
	be.Equal(t, cal.SourceTitle, "Fastmail")

	id, err = s.SaveCalendar(eventkit.CalendarDraft{Title: "B", Entity: eventkit.EntityTypeEvent, SourceID: "exch"}, true)
	be.Err(t, err, nil)
	cal, _ = s.Calendar(id)
	be.Equal(t, cal.Type, eventkit.RawCalendarTypeExchange)
}

func TestStagedCreatesInvisibleUntilCommit(t *testing.T) {
	s := New()
	calID := seedCalendar(t, s, "Cal", eventkit.EntityTypeEvent)
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	first, err := s.SaveEvent(eventkit.EventDraft{
		Title: "v1", CalendarID: calID, StartDate: start, EndDate: start.Add(time.Hour),
	}, eventkit.SpanThisEvent, false)
	be.Err(t, err, nil)

	second, err := s.SaveEvent(eventkit.EventDraft{
		Title: "v2", CalendarID: calID, StartDate: start, EndDate: start.Add(2 * time.Hour),
	}, eventkit.SpanThisEvent, false)
	be.Err(t, err, nil)
	be.True(t, first != second)

	_, ok := s.Event(first)
	be.Equal(t, ok, false)
	_, ok = s.Event(second)
	be.Equal(t, ok, false)

	be.Err(t, s.Commit(), nil)
	ev, ok := s.Event(first)
	be.True(t, ok)
	be.Equal(t, *ev.Title, "v1")
	ev, ok = s.Event(second)
	be.True(t, ok)
	be.Equal(t, *ev.Title, "v2")
}

func TestEventOverlapBoundaries(t *testing.T) {
	s := New()
	calID := seedCalendar(t, s, "Cal", eventkit.EntityTypeEvent)
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	save := func(startHour, endHour int) {
		_, err := s.SaveEvent(eventkit.EventDraft{
			CalendarID: calID,
			StartDate:  day.Add(time.Duration(startHour) * time.Hour),
			EndDate:    day.Add(time.Duration(endHour) * time.Hour),
		}, eventkit.SpanThisEvent, true)
		be.Err(t, err, nil)
	}
	save(8, 9)   // ends exactly at range start: excluded
	save(9, 10)  // inside
	save(11, 13) // straddles range end
	save(12, 14) // starts exactly at range end: excluded

	p := s.EventPredicate(day.Add(9*time.Hour), day.Add(12*time.Hour), nil)
	events, err := s.EventsMatching(p)
	be.Err(t, err, nil)
	be.Equal(t, len(events), 2)
	be.True(t, events[0].StartDate.Before(events[1].StartDate))
}

func TestReminderComponentRange(t *testing.T) {
	// padded range so the wall-clock components resolve inside it in any
	// test timezone
	start := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 4)
	inside := eventkit.ComponentsOf(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC), time.UTC)
	outside := eventkit.ComponentsOf(start.AddDate(0, 0, 10), time.UTC)

	be.True(t, inComponentRange(&inside, &start, &end))
	be.Equal(t, inComponentRange(&outside, &start, &end), false)
	be.Equal(t, inComponentRange(nil, &start, &end), false)
	be.True(t, inComponentRange(nil, nil, nil))
}

func TestRemoveCalendarCascadesToItems(t *testing.T) {
	s := New()
	calID := seedCalendar(t, s, "Cal", eventkit.EntityTypeReminder)

	remID, err := s.SaveReminder(eventkit.ReminderDraft{Title: "r", CalendarID: calID}, true)
	be.Err(t, err, nil)

	be.Err(t, s.RemoveCalendar(calID, true), nil)
	_, ok := s.CalendarItem(remID)
	be.Equal(t, ok, false)
}

func TestExternalIDsAssignedAtCreate(t *testing.T) {
	s := New()
	calID := seedCalendar(t, s, "Cal", eventkit.EntityTypeEvent)
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	id, err := s.SaveEvent(eventkit.EventDraft{
		Title: "a", CalendarID: calID, StartDate: start, EndDate: start.Add(time.Hour),
	}, eventkit.SpanThisEvent, true)
	be.Err(t, err, nil)

	ev, ok := s.Event(id)
	be.True(t, ok)
	be.True(t, ev.ExternalID != nil)
	ext := *ev.ExternalID

	// updates preserve the external identifier
	_, err = s.SaveEvent(eventkit.EventDraft{
		ID: id, Title: "b", CalendarID: calID, StartDate: start, EndDate: start.Add(time.Hour),
	}, eventkit.SpanThisEvent, true)
	be.Err(t, err, nil)
	ev, _ = s.Event(id)
	be.Equal(t, *ev.ExternalID, ext)

	items := s.CalendarItems(ext)
	be.Equal(t, len(items), 1)
}

func TestRemindersMatchingDelivery(t *testing.T) {
	s := New()
	calID := seedCalendar(t, s, "Cal", eventkit.EntityTypeReminder)
	_, err := s.SaveReminder(eventkit.ReminderDraft{Title: "r", CalendarID: calID}, true)
	be.Err(t, err, nil)

	done := make(chan []eventkit.NativeReminder, 1)
	s.RemindersMatching(s.ReminderPredicate(nil), func(items []eventkit.NativeReminder, err error) {
		be.Err(t, err, nil)
		done <- items
	})
	items := <-done
	be.Equal(t, len(items), 1)

	// a foreign predicate delivers an empty result instead of panicking
	s.RemindersMatching(struct{}{}, func(items []eventkit.NativeReminder, err error) {
		be.Err(t, err, nil)
		done <- items
	})
	be.Equal(t, len(<-done), 0)
}
