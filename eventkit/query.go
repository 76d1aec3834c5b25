package eventkit

import (
	"context"
	"sync"
)

// Calendars lists calendars supporting the entity type. An empty entity
// defaults to events.
func (s *Session) Calendars(entity EntityType) []Calendar {
	if entity == "" {
		entity = EntityTypeEvent
	}
	natives := s.backend.Calendars(entity)
	calendars := make([]Calendar, 0, len(natives))
	for _, n := range natives {
		calendars = append(calendars, mapCalendar(n))
	}
	return calendars
}

// Calendar looks up a calendar by id. Missing ids report false, never an
// error.
func (s *Session) Calendar(id string) (Calendar, bool) {
	n, ok := s.backend.Calendar(id)
	if !ok {
		return Calendar{}, false
	}
	return mapCalendar(n), true
}

// DefaultCalendarForNewEvents returns the calendar new events land in when
// no calendar is specified, or false when the backend has none.
func (s *Session) DefaultCalendarForNewEvents() (Calendar, bool) {
	n, ok := s.backend.DefaultCalendar(EntityTypeEvent)
	if !ok {
		return Calendar{}, false
	}
	return mapCalendar(n), true
}

// DefaultCalendarForNewReminders returns the calendar new reminders land in
// when no calendar is specified, or false when the backend has none.
func (s *Session) DefaultCalendarForNewReminders() (Calendar, bool) {
	n, ok := s.backend.DefaultCalendar(EntityTypeReminder)
	if !ok {
		return Calendar{}, false
	}
	return mapCalendar(n), true
}

// Sources lists the accounts/providers owning calendars.
func (s *Session) Sources() []Source {
	return mapSources(s.backend.Sources())
}

// DelegateSources lists sources shared by other accounts. Backends without
// delegate-source support degrade to an empty list.
func (s *Session) DelegateSources() []Source {
	if !s.backend.Capabilities().DelegateSources {
		return []Source{}
	}
	return mapSources(s.backend.DelegateSources())
}

// Source looks up a source by id. Missing ids report false, never an error.
func (s *Session) Source(id string) (Source, bool) {
	n, ok := s.backend.Source(id)
	if !ok {
		return Source{}, false
	}
	return mapSource(n), true
}

// Event looks up an event by id. Missing ids report false, never an error.
func (s *Session) Event(id string) (Event, bool) {
	n, ok := s.backend.Event(id)
	if !ok {
		return Event{}, false
	}
	return mapEvent(n), true
}

// CalendarItem looks up an event or reminder by item id, disambiguating the
// kind at the mapping boundary. Unknown item kinds report false.
func (s *Session) CalendarItem(id string) (CalendarItem, bool) {
	native, ok := s.backend.CalendarItem(id)
	if !ok {
		return CalendarItem{}, false
	}
	return s.mapItem(native)
}

// CalendarItemsWithExternalIdentifier returns every item sharing the
// external identifier, events and reminders mixed. Recurring families share
// one external identifier, so multiple results are common.
func (s *Session) CalendarItemsWithExternalIdentifier(externalID string) []CalendarItem {
	natives := s.backend.CalendarItems(externalID)
	items := make([]CalendarItem, 0, len(natives))
	for _, native := range natives {
		if item, ok := s.mapItem(native); ok {
			items = append(items, item)
		}
	}
	return items
}

func (s *Session) mapItem(native any) (CalendarItem, bool) {
	switch n := native.(type) {
	case NativeEvent:
		ev := mapEvent(n)
		return CalendarItem{Kind: EntityTypeEvent, Event: &ev}, true
	case NativeReminder:
		rem := mapReminder(n, s.loc)
		return CalendarItem{Kind: EntityTypeReminder, Reminder: &rem}, true
	default:
		return CalendarItem{}, false
	}
}

// Events runs an event predicate and returns the mapped matches. The
// predicate must come from EventPredicate; any other family is a validation
// error raised before the backend is touched.
func (s *Session) Events(ctx context.Context, p Predicate) ([]Event, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}
	if p.Type != PredicateTypeEvent {
		return nil, validationErr("predicate type %q cannot be used for event queries", p.Type)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	natives, err := s.backend.EventsMatching(p.handle)
	if err != nil {
		return nil, backendErr(err)
	}
	events := make([]Event, 0, len(natives))
	for _, n := range natives {
		events = append(events, mapEvent(n))
	}
	return events, nil
}

// Reminders runs a reminder-family predicate and returns the mapped matches.
// The backend fetch is asynchronous; the call suspends until the completion
// callback fires. The pending fetch holds its own reference to the predicate
// and checks session liveness before resolving, so cancelling the context
// abandons the wait but never leaves a dangling callback.
func (s *Session) Reminders(ctx context.Context, p Predicate) ([]Reminder, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}
	if !p.reminderFamily() {
		return nil, validationErr("predicate type %q cannot be used for reminder queries", p.Type)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type outcome struct {
		items []NativeReminder
		err   error
	}
	ch := make(chan outcome, 1)
	var once sync.Once
	pred := p // kept alive by the delivery closure until it fires
	s.backend.RemindersMatching(pred.handle, func(items []NativeReminder, err error) {
		once.Do(func() {
			if s.isClosed() {
				return
			}
			ch <- outcome{items: items, err: err}
		})
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.closed:
		return nil, ErrSessionClosed
	case out := <-ch:
		if out.err != nil {
			return nil, backendErr(out.err)
		}
		reminders := make([]Reminder, 0, len(out.items))
		for _, n := range out.items {
			reminders = append(reminders, mapReminder(n, s.loc))
		}
		return reminders, nil
	}
}

func mapSources(natives []NativeSource) []Source {
	sources := make([]Source, 0, len(natives))
	for _, n := range natives {
		sources = append(sources, mapSource(n))
	}
	return sources
}
