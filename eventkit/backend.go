package eventkit

import "time"

// Raw backend enumerations. Values mirror the native store's raw enum codes
// so a platform bridge can pass them through unchanged; the normalizers in
// enums.go translate them into the stable string sets, mapping unrecognized
// codes to the respective unknown tag.

// RawCalendarType is the backend's calendar type code.
type RawCalendarType int

const (
	RawCalendarTypeLocal RawCalendarType = iota
	RawCalendarTypeCalDAV
	RawCalendarTypeExchange
	RawCalendarTypeSubscription
	RawCalendarTypeBirthday
)

// RawSourceType is the backend's source type code.
type RawSourceType int

const (
	RawSourceTypeLocal RawSourceType = iota
	RawSourceTypeExchange
	RawSourceTypeCalDAV
	RawSourceTypeMobileMe
	RawSourceTypeSubscribed
	RawSourceTypeBirthdays
)

// RawAuthorization is the backend's authorization status code. The code for
// a full grant reads as "authorized" on backends without granular access
// statuses and as "fullAccess" on backends with them; see
// Capabilities.GranularAccessStatus.
type RawAuthorization int

const (
	RawAuthorizationNotDetermined RawAuthorization = iota
	RawAuthorizationRestricted
	RawAuthorizationDenied
	RawAuthorizationFullAccess
	RawAuthorizationWriteOnly
)

// RawAvailability is the backend's event availability code.
type RawAvailability int

const (
	RawAvailabilityNotSupported RawAvailability = iota - 1
	RawAvailabilityBusy
	RawAvailabilityFree
	RawAvailabilityTentative
	RawAvailabilityUnavailable
)

// RawColorSpace is the backend's color space model code.
type RawColorSpace int

const (
	RawColorSpaceUnknown RawColorSpace = iota - 1
	RawColorSpaceMonochrome
	RawColorSpaceRGB
	RawColorSpaceCMYK
	RawColorSpaceLab
	RawColorSpaceDeviceN
	RawColorSpaceIndexed
	RawColorSpacePattern
)

// EntityMask is the set of entity types a calendar accepts.
type EntityMask uint8

const (
	EntityMaskEvent EntityMask = 1 << iota
	EntityMaskReminder
)

// Has reports whether the mask contains m.
func (em EntityMask) Has(m EntityMask) bool { return em&m != 0 }

// AccessLevel selects the strength of an authorization request.
type AccessLevel string

const (
	// AccessLevelFull requests read/write access.
	AccessLevelFull AccessLevel = "full"
	// AccessLevelWriteOnly requests create/update access without read-back.
	// Only meaningful for events.
	AccessLevelWriteOnly AccessLevel = "writeOnly"
)

// Capabilities advertises optional backend features the session adapts to.
type Capabilities struct {
	// GranularAccessStatus is true when the backend distinguishes fullAccess
	// and writeOnly grants; false when it only reports authorized.
	GranularAccessStatus bool
	// DelegateSources is true when the backend can enumerate sources shared
	// by other accounts.
	DelegateSources bool
}

// NativeColor is a backend color: ordered channel values plus the color
// space they are expressed in.
type NativeColor struct {
	Components []float64
	Space      RawColorSpace
}

// NativeSource is a backend source snapshot.
type NativeSource struct {
	ID    string
	Title string
	Type  RawSourceType
}

// NativeCalendar is a backend calendar snapshot.
type NativeCalendar struct {
	ID                  string
	Title               string
	AllowsModifications bool
	Type                RawCalendarType
	Color               NativeColor
	SourceID            string
	SourceTitle         string
	AllowedEntities     EntityMask
}

// NativeEvent is a backend event snapshot. Pointer fields are nil when the
// backend has no value.
type NativeEvent struct {
	ID            string
	Title         *string
	Notes         *string
	StartDate     time.Time
	EndDate       time.Time
	IsAllDay      bool
	CalendarID    string
	CalendarTitle string
	Location      *string
	URL           *string
	HasAlarms     bool
	Availability  RawAvailability
	ExternalID    *string
}

// DateComponents is a partial wall-clock date as stored by the backend for
// reminder due/start dates. Zero Year means the component set is empty.
type DateComponents struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
	// HasTime is false for date-only components.
	HasTime bool
}

// Resolve materializes the components into an instant in loc, or reports
// false when the components do not name a real date.
func (dc DateComponents) Resolve(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	if dc.Year == 0 || dc.Month < 1 || dc.Month > 12 || dc.Day < 1 || dc.Day > 31 {
		return time.Time{}, false
	}
	t := time.Date(dc.Year, time.Month(dc.Month), dc.Day, dc.Hour, dc.Minute, dc.Second, 0, loc)
	// time.Date normalizes out-of-range days (Feb 30 -> Mar 2); treat that
	// drift as a failed resolution rather than inventing an instant.
	if t.Day() != dc.Day || int(t.Month()) != dc.Month || t.Year() != dc.Year {
		return time.Time{}, false
	}
	return t, true
}

// ComponentsOf decomposes an instant into date components in loc.
func ComponentsOf(t time.Time, loc *time.Location) DateComponents {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return DateComponents{
		Year:    t.Year(),
		Month:   int(t.Month()),
		Day:     t.Day(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
		HasTime: true,
	}
}

// NativeReminder is a backend reminder snapshot.
type NativeReminder struct {
	ID             string
	Title          *string
	Notes          *string
	CalendarID     string
	CalendarTitle  string
	Completed      bool
	CompletionDate *time.Time
	DueDate        *DateComponents
	StartDate      *DateComponents
	Priority       int
	HasAlarms      bool
	ExternalID     *string
}

// NativePredicate is an opaque compiled filter. Backends may represent it as
// a descriptor struct, a closure, or a handle into native state; it only
// travels back into the same backend that built it.
type NativePredicate any

// CalendarDraft is the validated calendar write passed down to the backend.
// Empty ID means create. Empty SourceID means the backend default source.
type CalendarDraft struct {
	ID       string
	Title    string
	Entity   EntityType
	SourceID string
	Color    *NativeColor
}

// EventDraft is the validated, fully merged event write passed down to the
// backend.
type EventDraft struct {
	ID           string
	Title        string
	Notes        *string
	StartDate    time.Time
	EndDate      time.Time
	IsAllDay     bool
	CalendarID   string
	Location     *string
	URL          *string
	Availability RawAvailability
}

// ReminderDraft is the validated, fully merged reminder write passed down to
// the backend.
type ReminderDraft struct {
	ID             string
	Title          string
	Notes          *string
	CalendarID     string
	Completed      bool
	CompletionDate *time.Time
	DueDate        *DateComponents
	StartDate      *DateComponents
	Priority       int
}

// Backend is the capability interface to the underlying calendar/reminder
// store. Implementations own persistence and the commit buffer; the Session
// owns validation, authorization bookkeeping, and mapping into the stable
// model.
//
// Reads return zero values plus false for missing entities instead of
// errors. Writes return the backend's descriptive error on failure; a write
// addressing a missing entity returns an *Error with ErrorCodeNotFound.
// Saves issued with commit=false, and removes likewise, must stay invisible
// to reads until Commit; Reset discards them. The one carve-out is Calendar:
// a calendar created with commit=false must resolve by direct id lookup so
// buffered item writes can target it before the batch commits.
type Backend interface {
	Capabilities() Capabilities

	// RequestAccess asks the platform for access and reports the outcome
	// through grant exactly once, possibly on another goroutine.
	RequestAccess(entity EntityType, level AccessLevel, grant func(granted bool, err error))
	AuthorizationStatus(entity EntityType) RawAuthorization

	Sources() []NativeSource
	DelegateSources() []NativeSource
	Source(id string) (NativeSource, bool)
	// RefreshSources resynchronizes the source list with backend reality.
	// Best-effort; no result.
	RefreshSources()

	Calendars(entity EntityType) []NativeCalendar
	Calendar(id string) (NativeCalendar, bool)
	DefaultCalendar(entity EntityType) (NativeCalendar, bool)

	Event(id string) (NativeEvent, bool)
	// CalendarItem returns a NativeEvent or NativeReminder for the id. The
	// caller resolves the concrete kind by type switch.
	CalendarItem(id string) (any, bool)
	// CalendarItems returns every item sharing the external identifier,
	// events and reminders mixed.
	CalendarItems(externalID string) []any

	EventPredicate(start, end time.Time, calendars []NativeCalendar) NativePredicate
	ReminderPredicate(calendars []NativeCalendar) NativePredicate
	IncompleteReminderPredicate(start, end *time.Time, calendars []NativeCalendar) NativePredicate
	CompletedReminderPredicate(start, end *time.Time, calendars []NativeCalendar) NativePredicate

	EventsMatching(p NativePredicate) ([]NativeEvent, error)
	// RemindersMatching fetches in the background and reports the outcome
	// through deliver exactly once, possibly on another goroutine.
	RemindersMatching(p NativePredicate, deliver func(items []NativeReminder, err error))

	SaveCalendar(draft CalendarDraft, commit bool) (string, error)
	RemoveCalendar(id string, commit bool) error
	SaveEvent(draft EventDraft, span Span, commit bool) (string, error)
	RemoveEvent(id string, span Span, commit bool) error
	SaveReminder(draft ReminderDraft, commit bool) (string, error)
	RemoveReminder(id string, commit bool) error

	Commit() error
	Reset()
}
