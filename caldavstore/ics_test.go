package caldavstore

import (
	"testing"
	"time"

	"github.com/emersion/go-webdav/caldav"
	"github.com/nalgeon/be"

	"github.com/spachava753/ekcal/eventkit"
)

var testCalendar = eventkit.NativeCalendar{
	ID:    "/calendars/u/home/",
	Title: "Home",
}

func TestEventCodecRoundTrip(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	draft := eventkit.EventDraft{
		Title:        "Planning",
		Notes:        strPtr("quarterly review"),
		StartDate:    start,
		EndDate:      start.Add(time.Hour),
		CalendarID:   testCalendar.ID,
		Location:     strPtr("Room 4"),
		URL:          strPtr("https://example.org/agenda"),
		Availability: eventkit.RawAvailabilityFree,
	}

	obj := caldav.CalendarObject{
		Path: "/calendars/u/home/abc.ics",
		Data: encodeEvent(draft, "uid-1"),
	}
	ev, ok := eventFromObject(obj, testCalendar)
	be.True(t, ok)
	be.Equal(t, ev.ID, obj.Path)
	be.Equal(t, ev.CalendarID, testCalendar.ID)
	be.Equal(t, ev.CalendarTitle, "Home")
	be.Equal(t, *ev.ExternalID, "uid-1")
	be.Equal(t, *ev.Title, "Planning")
	be.Equal(t, *ev.Notes, "quarterly review")
	be.Equal(t, *ev.Location, "Room 4")
	be.Equal(t, *ev.URL, "https://example.org/agenda")
	be.True(t, ev.StartDate.Equal(start))
	be.True(t, ev.EndDate.Equal(start.Add(time.Hour)))
	be.Equal(t, ev.IsAllDay, false)
	be.Equal(t, ev.Availability, eventkit.RawAvailabilityFree)
	be.Equal(t, ev.HasAlarms, false)
}

func TestEventCodecAllDay(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	draft := eventkit.EventDraft{
		Title:        "Offsite",
		StartDate:    day,
		EndDate:      day.AddDate(0, 0, 1),
		IsAllDay:     true,
		CalendarID:   testCalendar.ID,
		Availability: eventkit.RawAvailabilityNotSupported,
	}

	obj := caldav.CalendarObject{
		Path: "/calendars/u/home/offsite.ics",
		Data: encodeEvent(draft, "uid-2"),
	}
	ev, ok := eventFromObject(obj, testCalendar)
	be.True(t, ok)
	be.True(t, ev.IsAllDay)
	be.Equal(t, ev.StartDate.Year(), 2026)
	be.Equal(t, int(ev.StartDate.Month()), 9)
	be.Equal(t, ev.StartDate.Day(), 1)
	// no TRANSP written when the availability is not supported
	be.Equal(t, ev.Availability, eventkit.RawAvailabilityNotSupported)
}

func TestTodoCodecRoundTrip(t *testing.T) {
	due := eventkit.DateComponents{Year: 2026, Month: 9, Day: 2, Hour: 17, HasTime: true}
	completedAt := time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC)
	draft := eventkit.ReminderDraft{
		Title:          "File the report",
		Notes:          strPtr("include appendix"),
		CalendarID:     testCalendar.ID,
		Completed:      true,
		CompletionDate: &completedAt,
		DueDate:        &due,
		Priority:       5,
	}

	obj := caldav.CalendarObject{
		Path: "/calendars/u/home/todo.ics",
		Data: encodeTodo(draft, "uid-3"),
	}
	rem, ok := todoFromObject(obj, testCalendar)
	be.True(t, ok)
	be.Equal(t, *rem.ExternalID, "uid-3")
	be.Equal(t, *rem.Title, "File the report")
	be.Equal(t, *rem.Notes, "include appendix")
	be.True(t, rem.Completed)
	be.True(t, rem.CompletionDate.Equal(completedAt))
	be.Equal(t, rem.Priority, 5)
	be.True(t, rem.DueDate != nil)
	be.Equal(t, *rem.DueDate, due)
}

func TestTodoCodecDateOnlyDue(t *testing.T) {
	due := eventkit.DateComponents{Year: 2026, Month: 9, Day: 2}
	draft := eventkit.ReminderDraft{
		Title:      "Water plants",
		CalendarID: testCalendar.ID,
		DueDate:    &due,
	}

	obj := caldav.CalendarObject{
		Path: "/calendars/u/home/plants.ics",
		Data: encodeTodo(draft, "uid-4"),
	}
	rem, ok := todoFromObject(obj, testCalendar)
	be.True(t, ok)
	be.Equal(t, rem.Completed, false)
	be.True(t, rem.DueDate != nil)
	be.Equal(t, rem.DueDate.HasTime, false)
	be.Equal(t, rem.DueDate.Year, 2026)
	be.Equal(t, rem.DueDate.Month, 9)
	be.Equal(t, rem.DueDate.Day, 2)
	be.Equal(t, rem.DueDate.Hour, 0)
}

func TestAvailabilityTransparency(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		in   eventkit.RawAvailability
		want eventkit.RawAvailability
	}{
		{eventkit.RawAvailabilityFree, eventkit.RawAvailabilityFree},
		{eventkit.RawAvailabilityBusy, eventkit.RawAvailabilityBusy},
		// tentative collapses to busy: TRANSP only has two states
		{eventkit.RawAvailabilityTentative, eventkit.RawAvailabilityBusy},
		{eventkit.RawAvailabilityNotSupported, eventkit.RawAvailabilityNotSupported},
	} {
		draft := eventkit.EventDraft{
			Title:        "X",
			StartDate:    start,
			EndDate:      start.Add(time.Hour),
			CalendarID:   testCalendar.ID,
			Availability: tc.in,
		}
		obj := caldav.CalendarObject{
			Path: "/calendars/u/home/x.ics",
			Data: encodeEvent(draft, "uid-5"),
		}
		ev, ok := eventFromObject(obj, testCalendar)
		be.True(t, ok)
		be.Equal(t, ev.Availability, tc.want)
	}
}

func TestObjectPathHelpers(t *testing.T) {
	be.Equal(t, objectPath("/calendars/u/home/", "abc"), "/calendars/u/home/abc.ics")
	be.Equal(t, objectPath("/calendars/u/home", "abc"), "/calendars/u/home/abc.ics")
	be.Equal(t, collectionOf("/calendars/u/home/abc.ics"), "/calendars/u/home/")
	be.Equal(t, uidFromPath("/calendars/u/home/abc.ics"), "abc")
}

func TestReminderScopeMatching(t *testing.T) {
	// the range is padded by a day on each side so the wall-clock due date
	// lands inside it in any test timezone
	start := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 4)
	due := eventkit.ComponentsOf(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC), time.UTC)

	open := eventkit.NativeReminder{ID: "a", DueDate: &due}
	noDue := eventkit.NativeReminder{ID: "b"}
	done := eventkit.NativeReminder{ID: "c", Completed: true, CompletionDate: &start}

	bounded := &reminderPredicate{scope: reminderScopeIncomplete, start: &start, end: &end}
	be.True(t, matchesScope(open, bounded))
	be.Equal(t, matchesScope(noDue, bounded), false)
	be.Equal(t, matchesScope(done, bounded), false)

	unbounded := &reminderPredicate{scope: reminderScopeIncomplete}
	be.True(t, matchesScope(noDue, unbounded))

	completed := &reminderPredicate{scope: reminderScopeCompleted}
	be.True(t, matchesScope(done, completed))
	be.Equal(t, matchesScope(open, completed), false)
}

func strPtr(s string) *string { return &s }
