package caldavstore

import (
	"context"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	"github.com/spachava753/ekcal/eventkit"
)

func notFound(msg string) error {
	return &eventkit.Error{Code: eventkit.ErrorCodeNotFound, Message: msg}
}

// queryObjects runs a REPORT for one component kind against a collection,
// optionally bounded by a time range.
func (s *Store) queryObjects(calPath, comp string, start, end *time.Time) ([]caldav.CalendarObject, error) {
	inner := caldav.CompFilter{Name: comp}
	if start != nil {
		inner.Start = *start
	}
	if end != nil {
		inner.End = *end
	}
	query := &caldav.CalendarQuery{
		CompFilter: caldav.CompFilter{
			Name:  ical.CompCalendar,
			Comps: []caldav.CompFilter{inner},
		},
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.QueryCalendar(ctx, calPath, query)
}

// Event implements eventkit.Backend. The id is an object path; the parent
// collection is queried and matched by path.
func (s *Store) Event(id string) (eventkit.NativeEvent, bool) {
	cal, ok := s.Calendar(collectionOf(id))
	if !ok {
		return eventkit.NativeEvent{}, false
	}
	objs, err := s.queryObjects(cal.ID, ical.CompEvent, nil, nil)
	if err != nil {
		s.log.Debug().Err(err).Str("path", id).Msg("event lookup failed")
		return eventkit.NativeEvent{}, false
	}
	for _, obj := range objs {
		if obj.Path != id {
			continue
		}
		if ev, ok := eventFromObject(obj, cal); ok {
			return ev, true
		}
	}
	return eventkit.NativeEvent{}, false
}

func (s *Store) todo(id string) (eventkit.NativeReminder, bool) {
	cal, ok := s.Calendar(collectionOf(id))
	if !ok {
		return eventkit.NativeReminder{}, false
	}
	objs, err := s.queryObjects(cal.ID, ical.CompToDo, nil, nil)
	if err != nil {
		s.log.Debug().Err(err).Str("path", id).Msg("reminder lookup failed")
		return eventkit.NativeReminder{}, false
	}
	for _, obj := range objs {
		if obj.Path != id {
			continue
		}
		if rem, ok := todoFromObject(obj, cal); ok {
			return rem, true
		}
	}
	return eventkit.NativeReminder{}, false
}

// CalendarItem implements eventkit.Backend.
func (s *Store) CalendarItem(id string) (any, bool) {
	if ev, ok := s.Event(id); ok {
		return ev, true
	}
	if rem, ok := s.todo(id); ok {
		return rem, true
	}
	return nil, false
}

// CalendarItems implements eventkit.Backend. External identifiers are iCal
// UIDs, so every collection is searched for both component kinds.
func (s *Store) CalendarItems(externalID string) []any {
	if externalID == "" {
		return nil
	}
	cals, err := s.discover()
	if err != nil {
		s.log.Debug().Err(err).Msg("calendar discovery failed")
		return nil
	}
	var items []any
	for _, raw := range cals {
		cal := s.nativeCalendar(raw)
		if cal.AllowedEntities.Has(eventkit.EntityMaskEvent) {
			objs, err := s.queryObjects(cal.ID, ical.CompEvent, nil, nil)
			if err == nil {
				for _, obj := range objs {
					if ev, ok := eventFromObject(obj, cal); ok && ev.ExternalID != nil && *ev.ExternalID == externalID {
						items = append(items, ev)
					}
				}
			}
		}
		if cal.AllowedEntities.Has(eventkit.EntityMaskReminder) {
			objs, err := s.queryObjects(cal.ID, ical.CompToDo, nil, nil)
			if err == nil {
				for _, obj := range objs {
					if rem, ok := todoFromObject(obj, cal); ok && rem.ExternalID != nil && *rem.ExternalID == externalID {
						items = append(items, rem)
					}
				}
			}
		}
	}
	return items
}

// predicate descriptors

type eventPredicate struct {
	start, end time.Time
	paths      []string
	all        bool
}

type reminderScope int

const (
	reminderScopeAll reminderScope = iota
	reminderScopeIncomplete
	reminderScopeCompleted
)

type reminderPredicate struct {
	scope      reminderScope
	start, end *time.Time
	paths      []string
	all        bool
}

func scopePaths(calendars []eventkit.NativeCalendar) (paths []string, all bool) {
	if calendars == nil {
		return nil, true
	}
	paths = make([]string, 0, len(calendars))
	for _, cal := range calendars {
		paths = append(paths, cal.ID)
	}
	return paths, false
}

// EventPredicate implements eventkit.Backend.
func (s *Store) EventPredicate(start, end time.Time, calendars []eventkit.NativeCalendar) eventkit.NativePredicate {
	paths, all := scopePaths(calendars)
	return &eventPredicate{start: start, end: end, paths: paths, all: all}
}

// ReminderPredicate implements eventkit.Backend.
func (s *Store) ReminderPredicate(calendars []eventkit.NativeCalendar) eventkit.NativePredicate {
	paths, all := scopePaths(calendars)
	return &reminderPredicate{scope: reminderScopeAll, paths: paths, all: all}
}

// IncompleteReminderPredicate implements eventkit.Backend.
func (s *Store) IncompleteReminderPredicate(start, end *time.Time, calendars []eventkit.NativeCalendar) eventkit.NativePredicate {
	paths, all := scopePaths(calendars)
	return &reminderPredicate{scope: reminderScopeIncomplete, start: start, end: end, paths: paths, all: all}
}

// CompletedReminderPredicate implements eventkit.Backend.
func (s *Store) CompletedReminderPredicate(start, end *time.Time, calendars []eventkit.NativeCalendar) eventkit.NativePredicate {
	paths, all := scopePaths(calendars)
	return &reminderPredicate{scope: reminderScopeCompleted, start: start, end: end, paths: paths, all: all}
}

func (s *Store) scopedCalendars(paths []string, all bool, mask eventkit.EntityMask) ([]eventkit.NativeCalendar, error) {
	raw, err := s.discover()
	if err != nil {
		return nil, err
	}
	var out []eventkit.NativeCalendar
	for _, rc := range raw {
		cal := s.nativeCalendar(rc)
		if !cal.AllowedEntities.Has(mask) {
			continue
		}
		if !all && !containsString(paths, cal.ID) {
			continue
		}
		out = append(out, cal)
	}
	return out, nil
}

// EventsMatching implements eventkit.Backend with a server-side time-range
// REPORT per scoped collection.
func (s *Store) EventsMatching(p eventkit.NativePredicate) ([]eventkit.NativeEvent, error) {
	pred, ok := p.(*eventPredicate)
	if !ok {
		return nil, nil
	}
	cals, err := s.scopedCalendars(pred.paths, pred.all, eventkit.EntityMaskEvent)
	if err != nil {
		return nil, err
	}
	var out []eventkit.NativeEvent
	for _, cal := range cals {
		objs, err := s.queryObjects(cal.ID, ical.CompEvent, &pred.start, &pred.end)
		if err != nil {
			return nil, err
		}
		for _, obj := range objs {
			if ev, ok := eventFromObject(obj, cal); ok {
				out = append(out, ev)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// RemindersMatching implements eventkit.Backend. The fetch runs on a
// separate goroutine; completion/due filtering happens client-side since
// CalDAV time-range filters do not cover the completed/incomplete split.
func (s *Store) RemindersMatching(p eventkit.NativePredicate, deliver func(items []eventkit.NativeReminder, err error)) {
	pred, ok := p.(*reminderPredicate)
	if !ok {
		go deliver(nil, nil)
		return
	}
	go func() {
		cals, err := s.scopedCalendars(pred.paths, pred.all, eventkit.EntityMaskReminder)
		if err != nil {
			deliver(nil, err)
			return
		}
		var out []eventkit.NativeReminder
		for _, cal := range cals {
			objs, err := s.queryObjects(cal.ID, ical.CompToDo, nil, nil)
			if err != nil {
				deliver(nil, err)
				return
			}
			for _, obj := range objs {
				rem, ok := todoFromObject(obj, cal)
				if ok && matchesScope(rem, pred) {
					out = append(out, rem)
				}
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		deliver(out, nil)
	}()
}

func matchesScope(rem eventkit.NativeReminder, pred *reminderPredicate) bool {
	switch pred.scope {
	case reminderScopeIncomplete:
		if rem.Completed {
			return false
		}
		return componentsInRange(rem.DueDate, pred.start, pred.end)
	case reminderScopeCompleted:
		if !rem.Completed {
			return false
		}
		return timeInRange(rem.CompletionDate, pred.start, pred.end)
	default:
		return true
	}
}

func componentsInRange(dc *eventkit.DateComponents, start, end *time.Time) bool {
	if start == nil && end == nil {
		return true
	}
	if dc == nil {
		return false
	}
	due, ok := dc.Resolve(nil)
	if !ok {
		return false
	}
	return timeInRange(&due, start, end)
}

func timeInRange(t *time.Time, start, end *time.Time) bool {
	if start == nil && end == nil {
		return true
	}
	if t == nil {
		return false
	}
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(*end) {
		return false
	}
	return true
}

// SaveEvent implements eventkit.Backend. Updates PUT over the existing
// object path; creates mint a fresh UID-named object in the calendar
// collection.
func (s *Store) SaveEvent(draft eventkit.EventDraft, span eventkit.Span, commit bool) (string, error) {
	_ = span
	cal, ok := s.Calendar(draft.CalendarID)
	if !ok {
		return "", notFound("calendar " + draft.CalendarID + " not found")
	}

	var uid, objPath string
	if draft.ID == "" {
		uid = uuid.NewString()
		objPath = objectPath(cal.ID, uid)
	} else {
		objPath = draft.ID
		uid = uidFromPath(objPath)
	}

	ics := encodeEvent(draft, uid)
	if err := s.stage(commit, func(ctx context.Context) error {
		_, err := s.client.PutCalendarObject(ctx, objPath, ics)
		return err
	}); err != nil {
		return "", err
	}
	return objPath, nil
}

// RemoveEvent implements eventkit.Backend.
func (s *Store) RemoveEvent(id string, span eventkit.Span, commit bool) error {
	_ = span
	if _, ok := s.Event(id); !ok {
		return notFound("event " + id + " not found")
	}
	return s.stage(commit, func(ctx context.Context) error {
		return s.client.RemoveAll(ctx, id)
	})
}

// SaveReminder implements eventkit.Backend.
func (s *Store) SaveReminder(draft eventkit.ReminderDraft, commit bool) (string, error) {
	cal, ok := s.Calendar(draft.CalendarID)
	if !ok {
		return "", notFound("calendar " + draft.CalendarID + " not found")
	}

	var uid, objPath string
	if draft.ID == "" {
		uid = uuid.NewString()
		objPath = objectPath(cal.ID, uid)
	} else {
		objPath = draft.ID
		uid = uidFromPath(objPath)
	}

	ics := encodeTodo(draft, uid)
	if err := s.stage(commit, func(ctx context.Context) error {
		_, err := s.client.PutCalendarObject(ctx, objPath, ics)
		return err
	}); err != nil {
		return "", err
	}
	return objPath, nil
}

// RemoveReminder implements eventkit.Backend.
func (s *Store) RemoveReminder(id string, commit bool) error {
	if _, ok := s.todo(id); !ok {
		return notFound("reminder " + id + " not found")
	}
	return s.stage(commit, func(ctx context.Context) error {
		return s.client.RemoveAll(ctx, id)
	})
}

func objectPath(calPath, uid string) string {
	if !strings.HasSuffix(calPath, "/") {
		calPath += "/"
	}
	return calPath + uid + ".ics"
}

func collectionOf(objPath string) string {
	dir := path.Dir(objPath)
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir
}

func uidFromPath(objPath string) string {
	return strings.TrimSuffix(path.Base(objPath), ".ics")
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
