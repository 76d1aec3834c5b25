package eventkit

import "time"

// Predicate is an opaque compiled query filter tagged with its query family.
// Predicates are built by the Session's predicate constructors and consumed
// by the query function matching their type: event predicates by
// Session.Events, the three reminder variants by Session.Reminders. The
// backend handle never crosses the API boundary.
type Predicate struct {
	Type   PredicateType `json:"type"`
	handle NativePredicate
}

func (p Predicate) reminderFamily() bool {
	switch p.Type {
	case PredicateTypeReminder, PredicateTypeIncompleteReminder, PredicateTypeCompletedReminder:
		return true
	default:
		return false
	}
}

// EventPredicate builds a predicate matching events overlapping the
// [start, end) range. Both bounds are required. A nil calendarIDs matches
// every calendar; otherwise ids that do not resolve are silently dropped, a
// stale id being a common non-fatal case.
func (s *Session) EventPredicate(start, end time.Time, calendarIDs []string) (Predicate, error) {
	if start.IsZero() || end.IsZero() {
		return Predicate{}, validationErr("event predicate requires both start and end dates")
	}
	if end.Before(start) {
		return Predicate{}, validationErr("event predicate end date precedes start date")
	}
	calendars := s.resolveCalendars(calendarIDs)
	return Predicate{
		Type:   PredicateTypeEvent,
		handle: s.backend.EventPredicate(start, end, calendars),
	}, nil
}

// ReminderPredicate builds a predicate matching all reminders in the given
// calendars (all calendars when calendarIDs is nil).
func (s *Session) ReminderPredicate(calendarIDs []string) (Predicate, error) {
	calendars := s.resolveCalendars(calendarIDs)
	return Predicate{
		Type:   PredicateTypeReminder,
		handle: s.backend.ReminderPredicate(calendars),
	}, nil
}

// IncompleteReminderPredicate builds a predicate matching incomplete
// reminders with due dates in the given range. A nil bound leaves that side
// unbounded.
func (s *Session) IncompleteReminderPredicate(start, end *time.Time, calendarIDs []string) (Predicate, error) {
	if err := orderedBounds(start, end); err != nil {
		return Predicate{}, err
	}
	calendars := s.resolveCalendars(calendarIDs)
	return Predicate{
		Type:   PredicateTypeIncompleteReminder,
		handle: s.backend.IncompleteReminderPredicate(start, end, calendars),
	}, nil
}

// CompletedReminderPredicate builds a predicate matching completed reminders
// with completion dates in the given range. A nil bound leaves that side
// unbounded.
func (s *Session) CompletedReminderPredicate(start, end *time.Time, calendarIDs []string) (Predicate, error) {
	if err := orderedBounds(start, end); err != nil {
		return Predicate{}, err
	}
	calendars := s.resolveCalendars(calendarIDs)
	return Predicate{
		Type:   PredicateTypeCompletedReminder,
		handle: s.backend.CompletedReminderPredicate(start, end, calendars),
	}, nil
}

func orderedBounds(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return validationErr("reminder predicate end date precedes start date")
	}
	return nil
}

// resolveCalendars maps calendar ids to backend handles. nil stays nil (all
// calendars); unresolved ids are dropped without error, so a non-nil input
// may resolve to an empty scope that matches nothing.
func (s *Session) resolveCalendars(ids []string) []NativeCalendar {
	if ids == nil {
		return nil
	}
	calendars := make([]NativeCalendar, 0, len(ids))
	for _, id := range ids {
		cal, ok := s.backend.Calendar(id)
		if !ok {
			s.log.Debug().Str("calendar_id", id).Msg("dropping unresolved calendar id from predicate")
			continue
		}
		calendars = append(calendars, cal)
	}
	return calendars
}
