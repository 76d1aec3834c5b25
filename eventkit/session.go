package eventkit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Session owns the single logical connection to the backing store. It
// mediates authorization, validates writes before they reach the backend, and
// tracks whether uncommitted changes are buffered.
//
// A Session is constructed explicitly with Open and released with Close;
// there is no implicit process-wide instance. Buffered state is shared per
// session, so concurrent independent transactions against one session should
// be batched with commit=false plus a single Commit instead.
type Session struct {
	backend Backend
	log     zerolog.Logger
	loc     *time.Location

	closeOnce sync.Once
	closed    chan struct{}

	mu                sync.Mutex
	eventsFullGrant   bool
	eventsWriteGrant  bool
	remindersGrant    bool
	bufferedMutations int
}

// Option configures a Session.
type Option func(*Session)

// WithLogger attaches a structured logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithLocation sets the calendar system location used to resolve partial
// reminder date components. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) { s.loc = loc }
}

// Open starts a session over the given backend.
func Open(backend Backend, opts ...Option) *Session {
	s := &Session{
		backend: backend,
		log:     zerolog.Nop(),
		loc:     time.Local,
		closed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close marks the session closed. Pending asynchronous operations are not
// interrupted; their completion callbacks check session liveness and drop
// their results instead of resolving.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *Session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// RequestFullAccessToEvents asks for read/write access to events. Requests
// are idempotent and may be re-asked after denial.
func (s *Session) RequestFullAccessToEvents(ctx context.Context) (bool, error) {
	return s.requestAccess(ctx, EntityTypeEvent, AccessLevelFull)
}

// RequestWriteOnlyAccessToEvents asks for the weaker create/update-only grant
// on events. The grant is tracked separately from full access since it does
// not permit reading event content back.
func (s *Session) RequestWriteOnlyAccessToEvents(ctx context.Context) (bool, error) {
	return s.requestAccess(ctx, EntityTypeEvent, AccessLevelWriteOnly)
}

// RequestFullAccessToReminders asks for read/write access to reminders.
func (s *Session) RequestFullAccessToReminders(ctx context.Context) (bool, error) {
	return s.requestAccess(ctx, EntityTypeReminder, AccessLevelFull)
}

func (s *Session) requestAccess(ctx context.Context, entity EntityType, level AccessLevel) (bool, error) {
	if s.isClosed() {
		return false, ErrSessionClosed
	}

	type outcome struct {
		granted bool
		err     error
	}
	ch := make(chan outcome, 1)
	var once sync.Once
	s.backend.RequestAccess(entity, level, func(granted bool, err error) {
		once.Do(func() {
			if s.isClosed() {
				return
			}
			ch <- outcome{granted: granted, err: err}
		})
	})

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-s.closed:
		return false, ErrSessionClosed
	case out := <-ch:
		if out.err != nil {
			return false, backendErr(out.err)
		}
		s.recordGrant(entity, level, out.granted)
		s.log.Debug().
			Str("entity", string(entity)).
			Str("level", string(level)).
			Bool("granted", out.granted).
			Msg("access request resolved")
		return out.granted, nil
	}
}

func (s *Session) recordGrant(entity EntityType, level AccessLevel, granted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case entity == EntityTypeReminder:
		s.remindersGrant = granted
	case level == AccessLevelWriteOnly:
		s.eventsWriteGrant = granted
	default:
		s.eventsFullGrant = granted
	}
}

// AuthorizationStatus reports the current grant for the entity type,
// normalized across backends with and without granular access statuses.
func (s *Session) AuthorizationStatus(entity EntityType) AuthorizationStatus {
	raw := s.backend.AuthorizationStatus(entity)
	return authorizationTag(raw, s.backend.Capabilities().GranularAccessStatus)
}

// SaveCalendar creates or updates a calendar and returns its identifier. An
// empty data.ID creates; a populated one updates. With commit=false the
// change is buffered until Commit.
func (s *Session) SaveCalendar(data CalendarData, commit bool) (string, error) {
	if s.isClosed() {
		return "", ErrSessionClosed
	}
	if !validEntityType(data.EntityType) {
		return "", validationErr("invalid entity type %q, must be %q or %q", data.EntityType, EntityTypeEvent, EntityTypeReminder)
	}

	draft := CalendarDraft{
		ID:     data.ID,
		Title:  data.Title,
		Entity: data.EntityType,
	}

	if data.ID == "" {
		// Create. An explicit source must resolve; otherwise the backend
		// attaches the calendar to its default source.
		if data.SourceID != "" {
			if _, ok := s.backend.Source(data.SourceID); !ok {
				return "", validationErr("source %q not found", data.SourceID)
			}
			draft.SourceID = data.SourceID
		}
	} else {
		existing, ok := s.backend.Calendar(data.ID)
		if !ok {
			return "", &Error{Code: ErrorCodeNotFound, Message: "calendar " + data.ID + " not found"}
		}
		if !existing.AllowedEntities.Has(entityMaskOf(data.EntityType)) {
			return "", validationErr("calendar %q does not allow %s entities", data.ID, data.EntityType)
		}
		if data.Title == "" {
			draft.Title = existing.Title
		}
		draft.SourceID = existing.SourceID
	}

	if data.Color != nil {
		native, err := parseColorHex(data.Color.Hex)
		if err != nil {
			return "", err
		}
		draft.Color = &native
	}

	id, err := s.backend.SaveCalendar(draft, commit)
	if err != nil {
		return "", backendErr(err)
	}
	s.noteMutation(commit, "calendar", id)
	return id, nil
}

// RemoveCalendar removes a calendar by id, including its contained items.
// A missing id reports (false, nil) rather than an error.
func (s *Session) RemoveCalendar(id string, commit bool) (bool, error) {
	if s.isClosed() {
		return false, ErrSessionClosed
	}
	if id == "" {
		return false, validationErr("calendar id is required")
	}
	if err := s.backend.RemoveCalendar(id, commit); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, backendErr(err)
	}
	s.noteMutation(commit, "calendar", id)
	return true, nil
}

// SaveEvent creates or updates an event and returns its identifier. span
// selects how recurring occurrences are affected; an empty span means
// SpanThisEvent. With commit=false the change is buffered until Commit.
func (s *Session) SaveEvent(data EventData, span Span, commit bool) (string, error) {
	if s.isClosed() {
		return "", ErrSessionClosed
	}
	if span == "" {
		span = SpanThisEvent
	}
	if !validSpan(span) {
		return "", validationErr("invalid span %q, must be %q or %q", span, SpanThisEvent, SpanFutureEvents)
	}

	var draft EventDraft
	if data.ID == "" {
		if data.CalendarID == "" {
			return "", validationErr("calendar id is required to create an event")
		}
		if data.StartDate == nil || data.EndDate == nil {
			return "", validationErr("start and end dates are required to create an event")
		}
		draft = EventDraft{
			Title:        data.Title,
			StartDate:    *data.StartDate,
			EndDate:      *data.EndDate,
			CalendarID:   data.CalendarID,
			Availability: RawAvailabilityNotSupported,
		}
	} else {
		existing, ok := s.backend.Event(data.ID)
		if !ok {
			return "", &Error{Code: ErrorCodeNotFound, Message: "event " + data.ID + " not found"}
		}
		draft = EventDraft{
			ID:           existing.ID,
			Title:        stringOr(existing.Title, ""),
			Notes:        existing.Notes,
			StartDate:    existing.StartDate,
			EndDate:      existing.EndDate,
			IsAllDay:     existing.IsAllDay,
			CalendarID:   existing.CalendarID,
			Location:     existing.Location,
			URL:          existing.URL,
			Availability: existing.Availability,
		}
		if data.Title != "" {
			draft.Title = data.Title
		}
		if data.StartDate != nil {
			draft.StartDate = *data.StartDate
		}
		if data.EndDate != nil {
			draft.EndDate = *data.EndDate
		}
		if data.CalendarID != "" {
			draft.CalendarID = data.CalendarID
		}
	}
	if data.Notes != nil {
		draft.Notes = data.Notes
	}
	if data.Location != nil {
		draft.Location = data.Location
	}
	if data.URL != nil {
		draft.URL = data.URL
	}
	if data.IsAllDay != nil {
		draft.IsAllDay = *data.IsAllDay
	}
	if data.Availability != "" {
		raw, ok := rawAvailability(data.Availability)
		if !ok {
			return "", validationErr("invalid availability %q", data.Availability)
		}
		draft.Availability = raw
	}
	if draft.EndDate.Before(draft.StartDate) {
		return "", validationErr("event end date precedes start date")
	}
	if err := s.checkCalendarAllows(draft.CalendarID, EntityTypeEvent); err != nil {
		return "", err
	}

	id, err := s.backend.SaveEvent(draft, span, commit)
	if err != nil {
		return "", backendErr(err)
	}
	s.noteMutation(commit, "event", id)
	return id, nil
}

// RemoveEvent removes an event by id. span selects whether only this
// occurrence or this-and-future occurrences are removed; an empty span means
// SpanThisEvent. A missing id reports (false, nil).
func (s *Session) RemoveEvent(id string, span Span, commit bool) (bool, error) {
	if s.isClosed() {
		return false, ErrSessionClosed
	}
	if id == "" {
		return false, validationErr("event id is required")
	}
	if span == "" {
		span = SpanThisEvent
	}
	if !validSpan(span) {
		return false, validationErr("invalid span %q, must be %q or %q", span, SpanThisEvent, SpanFutureEvents)
	}
	if err := s.backend.RemoveEvent(id, span, commit); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, backendErr(err)
	}
	s.noteMutation(commit, "event", id)
	return true, nil
}

// SaveReminder creates or updates a reminder and returns its identifier.
// With commit=false the change is buffered until Commit.
func (s *Session) SaveReminder(data ReminderData, commit bool) (string, error) {
	if s.isClosed() {
		return "", ErrSessionClosed
	}
	if data.Priority != nil && (*data.Priority < 0 || *data.Priority > 9) {
		return "", validationErr("priority %d out of range 0-9", *data.Priority)
	}

	now := time.Now()
	var draft ReminderDraft
	if data.ID == "" {
		if data.CalendarID == "" {
			return "", validationErr("calendar id is required to create a reminder")
		}
		draft = ReminderDraft{
			Title:      data.Title,
			CalendarID: data.CalendarID,
		}
	} else {
		item, ok := s.backend.CalendarItem(data.ID)
		if !ok {
			return "", &Error{Code: ErrorCodeNotFound, Message: "reminder " + data.ID + " not found"}
		}
		existing, ok := item.(NativeReminder)
		if !ok {
			return "", validationErr("item %q is not a reminder", data.ID)
		}
		draft = ReminderDraft{
			ID:             existing.ID,
			Title:          stringOr(existing.Title, ""),
			Notes:          existing.Notes,
			CalendarID:     existing.CalendarID,
			Completed:      existing.Completed,
			CompletionDate: existing.CompletionDate,
			DueDate:        existing.DueDate,
			StartDate:      existing.StartDate,
			Priority:       existing.Priority,
		}
		if data.Title != "" {
			draft.Title = data.Title
		}
		if data.CalendarID != "" {
			draft.CalendarID = data.CalendarID
		}
	}
	if data.Notes != nil {
		draft.Notes = data.Notes
	}
	if data.Priority != nil {
		draft.Priority = *data.Priority
	}
	if data.DueDate != nil {
		dc := ComponentsOf(*data.DueDate, s.loc)
		draft.DueDate = &dc
	}
	if data.StartDate != nil {
		dc := ComponentsOf(*data.StartDate, s.loc)
		draft.StartDate = &dc
	}
	if data.Completed != nil {
		if *data.Completed {
			// Completing stamps "now" unless the reminder already carries a
			// completion date from an earlier completion.
			if !draft.Completed || draft.CompletionDate == nil {
				draft.CompletionDate = &now
			}
			draft.Completed = true
		} else {
			draft.Completed = false
			draft.CompletionDate = nil
		}
	}
	if err := s.checkCalendarAllows(draft.CalendarID, EntityTypeReminder); err != nil {
		return "", err
	}

	id, err := s.backend.SaveReminder(draft, commit)
	if err != nil {
		return "", backendErr(err)
	}
	s.noteMutation(commit, "reminder", id)
	return id, nil
}

// RemoveReminder removes a reminder by id. A missing id reports (false, nil).
func (s *Session) RemoveReminder(id string, commit bool) (bool, error) {
	if s.isClosed() {
		return false, ErrSessionClosed
	}
	if id == "" {
		return false, validationErr("reminder id is required")
	}
	if err := s.backend.RemoveReminder(id, commit); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, backendErr(err)
	}
	s.noteMutation(commit, "reminder", id)
	return true, nil
}

// Commit flushes all buffered changes. On failure the backend's descriptive
// error is returned and buffered state is left as the backend defines it; no
// automatic retry is attempted.
func (s *Session) Commit() error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	if err := s.backend.Commit(); err != nil {
		s.log.Error().Err(err).Msg("commit failed")
		return backendErr(err)
	}
	s.mu.Lock()
	flushed := s.bufferedMutations
	s.bufferedMutations = 0
	s.mu.Unlock()
	s.log.Debug().Int("flushed", flushed).Msg("commit applied")
	return nil
}

// Reset discards all buffered, uncommitted changes.
func (s *Session) Reset() {
	if s.isClosed() {
		return
	}
	s.backend.Reset()
	s.mu.Lock()
	discarded := s.bufferedMutations
	s.bufferedMutations = 0
	s.mu.Unlock()
	s.log.Debug().Int("discarded", discarded).Msg("session reset")
}

// RefreshSourcesIfNecessary asks the backend to resync its source list with
// external reality. Best-effort, fire-and-forget.
func (s *Session) RefreshSourcesIfNecessary() {
	if s.isClosed() {
		return
	}
	s.backend.RefreshSources()
}

func (s *Session) checkCalendarAllows(calendarID string, entity EntityType) error {
	cal, ok := s.backend.Calendar(calendarID)
	if !ok {
		return &Error{Code: ErrorCodeNotFound, Message: "calendar " + calendarID + " not found"}
	}
	if !cal.AllowedEntities.Has(entityMaskOf(entity)) {
		return validationErr("calendar %q does not allow %s entities", calendarID, entity)
	}
	return nil
}

func (s *Session) noteMutation(committed bool, kind, id string) {
	if committed {
		s.log.Debug().Str("kind", kind).Str("id", id).Msg("mutation committed")
		return
	}
	s.mu.Lock()
	s.bufferedMutations++
	pending := s.bufferedMutations
	s.mu.Unlock()
	s.log.Debug().Str("kind", kind).Str("id", id).Int("pending", pending).Msg("mutation buffered")
}

func entityMaskOf(entity EntityType) EntityMask {
	if entity == EntityTypeReminder {
		return EntityMaskReminder
	}
	return EntityMaskEvent
}

func backendErr(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Code: ErrorCodeStore, Message: err.Error()}
}
