package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spachava753/ekcal/eventkit"
)

// Store is an in-memory eventkit.Backend with real deferred-commit
// semantics: saves and removes issued with commit=false are buffered and
// stay invisible to every read until Commit applies them in order; Reset
// discards them. Identifiers are assigned at save time, before commit, the
// way the platform store does. One exception mirrors the platform as well:
// a calendar created with commit=false resolves by direct id lookup so that
// buffered item writes can target it, while listings only show committed
// calendars.
//
// Store keeps single occurrences only; spans are accepted on event writes
// but there is no recurrence expansion, so thisEvent and futureEvents
// behave identically.
type Store struct {
	mu sync.Mutex

	granular  bool
	delegates []eventkit.NativeSource
	policy    func(entity eventkit.EntityType, level eventkit.AccessLevel) bool
	status    map[eventkit.EntityType]eventkit.RawAuthorization

	sources       []eventkit.NativeSource
	calendars     map[string]eventkit.NativeCalendar
	calendarOrder []string
	events        map[string]eventkit.NativeEvent
	reminders     map[string]eventkit.NativeReminder

	// pendingCalendars holds calendars created with commit=false. They are
	// resolvable by direct id lookup so buffered writes can target them, but
	// they stay out of listings until Commit.
	pendingCalendars map[string]eventkit.NativeCalendar

	staged     []func()
	commitHook func() error

	refreshCount int
}

var _ eventkit.Backend = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithSources replaces the seeded source list. The first source becomes the
// default source for new calendars.
func WithSources(sources ...eventkit.NativeSource) Option {
	return func(s *Store) { s.sources = sources }
}

// WithDelegateSources seeds delegate sources and advertises the capability.
func WithDelegateSources(sources ...eventkit.NativeSource) Option {
	return func(s *Store) { s.delegates = sources }
}

// WithAccessPolicy decides access requests. The default grants everything.
func WithAccessPolicy(policy func(entity eventkit.EntityType, level eventkit.AccessLevel) bool) Option {
	return func(s *Store) { s.policy = policy }
}

// WithGranularAccessStatus controls whether the store reports fullAccess and
// writeOnly statuses (true, the default) or a plain authorized grant, as
// older platform versions do.
func WithGranularAccessStatus(granular bool) Option {
	return func(s *Store) { s.granular = granular }
}

// WithCommitHook installs a hook run before buffered changes are applied.
// A hook error fails the commit and leaves the buffer in place.
func WithCommitHook(hook func() error) Option {
	return func(s *Store) { s.commitHook = hook }
}

// New builds an empty store with one seeded local source.
func New(opts ...Option) *Store {
	s := &Store{
		granular: true,
		sources: []eventkit.NativeSource{
			{ID: "local-source", Title: "Local", Type: eventkit.RawSourceTypeLocal},
		},
		status: map[eventkit.EntityType]eventkit.RawAuthorization{
			eventkit.EntityTypeEvent:    eventkit.RawAuthorizationNotDetermined,
			eventkit.EntityTypeReminder: eventkit.RawAuthorizationNotDetermined,
		},
		calendars:        map[string]eventkit.NativeCalendar{},
		pendingCalendars: map[string]eventkit.NativeCalendar{},
		events:           map[string]eventkit.NativeEvent{},
		reminders:        map[string]eventkit.NativeReminder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// defaultCalendarColor is assigned to calendars created without a color.
var defaultCalendarColor = eventkit.NativeColor{
	Components: []float64{0, 0.478, 1, 1},
	Space:      eventkit.RawColorSpaceRGB,
}

// Capabilities implements eventkit.Backend.
func (s *Store) Capabilities() eventkit.Capabilities {
	return eventkit.Capabilities{
		GranularAccessStatus: s.granular,
		DelegateSources:      len(s.delegates) > 0,
	}
}

// RequestAccess implements eventkit.Backend. The grant callback fires on a
// separate goroutine, mimicking the platform completion callback.
func (s *Store) RequestAccess(entity eventkit.EntityType, level eventkit.AccessLevel, grant func(granted bool, err error)) {
	s.mu.Lock()
	granted := true
	if s.policy != nil {
		granted = s.policy(entity, level)
	}
	if granted {
		if entity == eventkit.EntityTypeEvent && level == eventkit.AccessLevelWriteOnly {
			s.status[entity] = eventkit.RawAuthorizationWriteOnly
		} else {
			s.status[entity] = eventkit.RawAuthorizationFullAccess
		}
	} else {
		s.status[entity] = eventkit.RawAuthorizationDenied
	}
	s.mu.Unlock()
	go grant(granted, nil)
}

// AuthorizationStatus implements eventkit.Backend.
func (s *Store) AuthorizationStatus(entity eventkit.EntityType) eventkit.RawAuthorization {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status[entity]
}

// Sources implements eventkit.Backend.
func (s *Store) Sources() []eventkit.NativeSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]eventkit.NativeSource, len(s.sources))
	copy(out, s.sources)
	return out
}

// DelegateSources implements eventkit.Backend.
func (s *Store) DelegateSources() []eventkit.NativeSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]eventkit.NativeSource, len(s.delegates))
	copy(out, s.delegates)
	return out
}

// Source implements eventkit.Backend.
func (s *Store) Source(id string) (eventkit.NativeSource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findSource(id)
}

func (s *Store) findSource(id string) (eventkit.NativeSource, bool) {
	for _, src := range s.sources {
		if src.ID == id {
			return src, true
		}
	}
	for _, src := range s.delegates {
		if src.ID == id {
			return src, true
		}
	}
	return eventkit.NativeSource{}, false
}

// RefreshSources implements eventkit.Backend. The store has no external
// reality to resync with; it only counts invocations so tests can observe
// the fire-and-forget call.
func (s *Store) RefreshSources() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCount++
}

// RefreshCount reports how many times RefreshSources ran.
func (s *Store) RefreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCount
}

// Calendars implements eventkit.Backend.
func (s *Store) Calendars(entity eventkit.EntityType) []eventkit.NativeCalendar {
	mask := maskOf(entity)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]eventkit.NativeCalendar, 0, len(s.calendarOrder))
	for _, id := range s.calendarOrder {
		cal, ok := s.calendars[id]
		if ok && cal.AllowedEntities.Has(mask) {
			out = append(out, cal)
		}
	}
	return out
}

// Calendar implements eventkit.Backend. Direct lookups also resolve
// calendars created with commit=false so buffered writes can target them.
func (s *Store) Calendar(id string) (eventkit.NativeCalendar, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCalendar(id)
}

func (s *Store) findCalendar(id string) (eventkit.NativeCalendar, bool) {
	if cal, ok := s.calendars[id]; ok {
		return cal, true
	}
	cal, ok := s.pendingCalendars[id]
	return cal, ok
}

// DefaultCalendar implements eventkit.Backend. The oldest calendar allowing
// the entity type is the default.
func (s *Store) DefaultCalendar(entity eventkit.EntityType) (eventkit.NativeCalendar, bool) {
	mask := maskOf(entity)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.calendarOrder {
		cal, ok := s.calendars[id]
		if ok && cal.AllowedEntities.Has(mask) {
			return cal, true
		}
	}
	return eventkit.NativeCalendar{}, false
}

// Event implements eventkit.Backend.
func (s *Store) Event(id string) (eventkit.NativeEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	return ev, ok
}

// CalendarItem implements eventkit.Backend.
func (s *Store) CalendarItem(id string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev, ok := s.events[id]; ok {
		return ev, true
	}
	if rem, ok := s.reminders[id]; ok {
		return rem, true
	}
	return nil, false
}

// CalendarItems implements eventkit.Backend.
func (s *Store) CalendarItems(externalID string) []any {
	if externalID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []any
	for _, ev := range s.events {
		if ev.ExternalID != nil && *ev.ExternalID == externalID {
			items = append(items, ev)
		}
	}
	for _, rem := range s.reminders {
		if rem.ExternalID != nil && *rem.ExternalID == externalID {
			items = append(items, rem)
		}
	}
	return items
}

// SaveCalendar implements eventkit.Backend.
func (s *Store) SaveCalendar(draft eventkit.CalendarDraft, commit bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal := eventkit.NativeCalendar{
		Title:               draft.Title,
		AllowsModifications: true,
		Type:                eventkit.RawCalendarTypeLocal,
		Color:               defaultCalendarColor,
		AllowedEntities:     maskOf(draft.Entity),
	}

	if draft.ID == "" {
		cal.ID = uuid.NewString()
	} else {
		existing, ok := s.findCalendar(draft.ID)
		if !ok {
			return "", notFound("calendar " + draft.ID + " not found")
		}
		cal = existing
		cal.Title = draft.Title
	}

	srcID := draft.SourceID
	if srcID == "" && len(s.sources) > 0 {
		srcID = s.sources[0].ID
	}
	if src, ok := s.findSource(srcID); ok && draft.ID == "" {
		cal.SourceID = src.ID
		cal.SourceTitle = src.Title
		cal.Type = calendarTypeForSource(src.Type)
	}
	if draft.Color != nil {
		cal.Color = *draft.Color
	}

	id := cal.ID
	create := draft.ID == ""
	if !commit {
		s.pendingCalendars[id] = cal
	}
	s.stage(commit, func() {
		if _, exists := s.calendars[id]; !exists && !create {
			return // removed while buffered
		}
		if create && !containsID(s.calendarOrder, id) {
			s.calendarOrder = append(s.calendarOrder, id)
		}
		s.calendars[id] = cal
	})
	return id, nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// RemoveCalendar implements eventkit.Backend. Contained events and reminders
// are removed with the calendar.
func (s *Store) RemoveCalendar(id string, commit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.calendars[id]; !ok {
		return notFound("calendar " + id + " not found")
	}
	s.stage(commit, func() {
		delete(s.calendars, id)
		for i, cid := range s.calendarOrder {
			if cid == id {
				s.calendarOrder = append(s.calendarOrder[:i], s.calendarOrder[i+1:]...)
				break
			}
		}
		for eid, ev := range s.events {
			if ev.CalendarID == id {
				delete(s.events, eid)
			}
		}
		for rid, rem := range s.reminders {
			if rem.CalendarID == id {
				delete(s.reminders, rid)
			}
		}
	})
	return nil
}

// SaveEvent implements eventkit.Backend.
func (s *Store) SaveEvent(draft eventkit.EventDraft, span eventkit.Span, commit bool) (string, error) {
	_ = span
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, ok := s.findCalendar(draft.CalendarID)
	if !ok {
		return "", notFound("calendar " + draft.CalendarID + " not found")
	}

	ev := eventkit.NativeEvent{
		ID:            draft.ID,
		Notes:         draft.Notes,
		StartDate:     draft.StartDate,
		EndDate:       draft.EndDate,
		IsAllDay:      draft.IsAllDay,
		CalendarID:    cal.ID,
		CalendarTitle: cal.Title,
		Location:      draft.Location,
		URL:           draft.URL,
		Availability:  draft.Availability,
	}
	if draft.Title != "" {
		title := draft.Title
		ev.Title = &title
	}
	if draft.ID == "" {
		ev.ID = uuid.NewString()
		ext := uuid.NewString()
		ev.ExternalID = &ext
	} else {
		existing, ok := s.events[draft.ID]
		if !ok {
			return "", notFound("event " + draft.ID + " not found")
		}
		ev.ExternalID = existing.ExternalID
		ev.HasAlarms = existing.HasAlarms
	}

	id := ev.ID
	s.stage(commit, func() { s.events[id] = ev })
	return id, nil
}

// RemoveEvent implements eventkit.Backend.
func (s *Store) RemoveEvent(id string, span eventkit.Span, commit bool) error {
	_ = span
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return notFound("event " + id + " not found")
	}
	s.stage(commit, func() { delete(s.events, id) })
	return nil
}

// SaveReminder implements eventkit.Backend.
func (s *Store) SaveReminder(draft eventkit.ReminderDraft, commit bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, ok := s.findCalendar(draft.CalendarID)
	if !ok {
		return "", notFound("calendar " + draft.CalendarID + " not found")
	}

	rem := eventkit.NativeReminder{
		ID:             draft.ID,
		Notes:          draft.Notes,
		CalendarID:     cal.ID,
		CalendarTitle:  cal.Title,
		Completed:      draft.Completed,
		CompletionDate: draft.CompletionDate,
		DueDate:        draft.DueDate,
		StartDate:      draft.StartDate,
		Priority:       draft.Priority,
	}
	if draft.Title != "" {
		title := draft.Title
		rem.Title = &title
	}
	if draft.ID == "" {
		rem.ID = uuid.NewString()
		ext := uuid.NewString()
		rem.ExternalID = &ext
	} else {
		existing, ok := s.reminders[draft.ID]
		if !ok {
			return "", notFound("reminder " + draft.ID + " not found")
		}
		rem.ExternalID = existing.ExternalID
		rem.HasAlarms = existing.HasAlarms
	}

	id := rem.ID
	s.stage(commit, func() { s.reminders[id] = rem })
	return id, nil
}

// RemoveReminder implements eventkit.Backend.
func (s *Store) RemoveReminder(id string, commit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reminders[id]; !ok {
		return notFound("reminder " + id + " not found")
	}
	s.stage(commit, func() { delete(s.reminders, id) })
	return nil
}

// Commit implements eventkit.Backend. Buffered changes apply in the order
// they were staged. A commit hook error leaves the buffer untouched.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitHook != nil {
		if err := s.commitHook(); err != nil {
			return &eventkit.Error{Code: eventkit.ErrorCodeStore, Message: err.Error()}
		}
	}
	for _, apply := range s.staged {
		apply()
	}
	s.staged = nil
	s.pendingCalendars = map[string]eventkit.NativeCalendar{}
	return nil
}

// Reset implements eventkit.Backend.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
	s.pendingCalendars = map[string]eventkit.NativeCalendar{}
}

func (s *Store) stage(commit bool, apply func()) {
	if commit {
		apply()
		return
	}
	s.staged = append(s.staged, apply)
}

func notFound(msg string) error {
	return &eventkit.Error{Code: eventkit.ErrorCodeNotFound, Message: msg}
}

func maskOf(entity eventkit.EntityType) eventkit.EntityMask {
	if entity == eventkit.EntityTypeReminder {
		return eventkit.EntityMaskReminder
	}
	return eventkit.EntityMaskEvent
}

func calendarTypeForSource(src eventkit.RawSourceType) eventkit.RawCalendarType {
	switch src {
	case eventkit.RawSourceTypeCalDAV, eventkit.RawSourceTypeMobileMe:
		return eventkit.RawCalendarTypeCalDAV
	case eventkit.RawSourceTypeExchange:
		return eventkit.RawCalendarTypeExchange
	case eventkit.RawSourceTypeSubscribed:
		return eventkit.RawCalendarTypeSubscription
	case eventkit.RawSourceTypeBirthdays:
		return eventkit.RawCalendarTypeBirthday
	default:
		return eventkit.RawCalendarTypeLocal
	}
}

// predicate descriptors

type eventPredicate struct {
	start, end  time.Time
	calendarIDs []string
	all         bool
}

type reminderScope int

const (
	reminderScopeAll reminderScope = iota
	reminderScopeIncomplete
	reminderScopeCompleted
)

type reminderPredicate struct {
	scope       reminderScope
	start, end  *time.Time
	calendarIDs []string
	all         bool
}

func calendarScope(calendars []eventkit.NativeCalendar) (ids []string, all bool) {
	if calendars == nil {
		return nil, true
	}
	ids = make([]string, 0, len(calendars))
	for _, cal := range calendars {
		ids = append(ids, cal.ID)
	}
	return ids, false
}

// EventPredicate implements eventkit.Backend.
func (s *Store) EventPredicate(start, end time.Time, calendars []eventkit.NativeCalendar) eventkit.NativePredicate {
	ids, all := calendarScope(calendars)
	return &eventPredicate{start: start, end: end, calendarIDs: ids, all: all}
}

// ReminderPredicate implements eventkit.Backend.
func (s *Store) ReminderPredicate(calendars []eventkit.NativeCalendar) eventkit.NativePredicate {
	ids, all := calendarScope(calendars)
	return &reminderPredicate{scope: reminderScopeAll, calendarIDs: ids, all: all}
}

// IncompleteReminderPredicate implements eventkit.Backend.
func (s *Store) IncompleteReminderPredicate(start, end *time.Time, calendars []eventkit.NativeCalendar) eventkit.NativePredicate {
	ids, all := calendarScope(calendars)
	return &reminderPredicate{scope: reminderScopeIncomplete, start: start, end: end, calendarIDs: ids, all: all}
}

// CompletedReminderPredicate implements eventkit.Backend.
func (s *Store) CompletedReminderPredicate(start, end *time.Time, calendars []eventkit.NativeCalendar) eventkit.NativePredicate {
	ids, all := calendarScope(calendars)
	return &reminderPredicate{scope: reminderScopeCompleted, start: start, end: end, calendarIDs: ids, all: all}
}

// EventsMatching implements eventkit.Backend. Matches are events overlapping
// the predicate range, ordered by start date.
func (s *Store) EventsMatching(p eventkit.NativePredicate) ([]eventkit.NativeEvent, error) {
	pred, ok := p.(*eventPredicate)
	if !ok {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []eventkit.NativeEvent
	for _, ev := range s.events {
		if !pred.all && !containsString(pred.calendarIDs, ev.CalendarID) {
			continue
		}
		if ev.StartDate.Before(pred.end) && ev.EndDate.After(pred.start) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// RemindersMatching implements eventkit.Backend. The snapshot is taken under
// lock and delivered from a separate goroutine, mimicking the platform's
// background fetch.
func (s *Store) RemindersMatching(p eventkit.NativePredicate, deliver func(items []eventkit.NativeReminder, err error)) {
	pred, ok := p.(*reminderPredicate)
	if !ok {
		go deliver(nil, nil)
		return
	}
	s.mu.Lock()
	var out []eventkit.NativeReminder
	for _, rem := range s.reminders {
		if !pred.all && !containsString(pred.calendarIDs, rem.CalendarID) {
			continue
		}
		if matchesScope(rem, pred) {
			out = append(out, rem)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	go deliver(out, nil)
}

func matchesScope(rem eventkit.NativeReminder, pred *reminderPredicate) bool {
	switch pred.scope {
	case reminderScopeIncomplete:
		if rem.Completed {
			return false
		}
		return inComponentRange(rem.DueDate, pred.start, pred.end)
	case reminderScopeCompleted:
		if !rem.Completed {
			return false
		}
		return inTimeRange(rem.CompletionDate, pred.start, pred.end)
	default:
		return true
	}
}

func inComponentRange(dc *eventkit.DateComponents, start, end *time.Time) bool {
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
	return inTimeRange(&due, start, end)
}

func inTimeRange(t *time.Time, start, end *time.Time) bool {
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

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
